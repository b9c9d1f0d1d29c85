package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/clientcli"
)

// apiClient drives the photo API as one user.
type apiClient struct {
	t       *testing.T
	baseURL string
	auth    func(*http.Request)
	http    *http.Client
}

func asUser(t *testing.T, baseURL, userID string) *apiClient {
	return &apiClient{
		t:       t,
		baseURL: baseURL,
		auth: func(r *http.Request) {
			if userID != "" {
				r.Header.Set("X-User-Id", userID)
			}
		},
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func withToken(t *testing.T, baseURL, token string) *apiClient {
	c := asUser(t, baseURL, "")
	c.auth = func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
	return c
}

// call sends a JSON API request and decodes the response into out when the
// status is 200. It returns the status code.
func (c *apiClient) call(method, path string, in, out any) int {
	c.t.Helper()

	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		require.NoError(c.t, err)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	assert.Equal(c.t, "application/json", resp.Header.Get("Content-Type"))

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// putObject sends content to a presigned upload URL.
func (c *apiClient) putObject(uploadURL, contentType string, content []byte) int {
	c.t.Helper()

	req, err := http.NewRequest(http.MethodPut, uploadURL, bytes.NewReader(content))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

// getObject fetches a presigned download URL.
func (c *apiClient) getObject(downloadURL string) (int, []byte) {
	c.t.Helper()

	resp, err := c.http.Get(downloadURL)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

type uploadTicket struct {
	PhotoID         string    `json:"photo_id"`
	UploadURL       string    `json:"upload_url"`
	UploadMethod    string    `json:"upload_method"`
	ExpiresIn       int       `json:"expires_in"`
	ExpiresAt       time.Time `json:"expires_at"`
	S3Key           string    `json:"s3_key"`
	Message         string    `json:"message"`
	Note            string    `json:"note"`
	PreviousVersion string    `json:"previous_version"`
}

type downloadTicket struct {
	PhotoID     string `json:"photo_id"`
	VersionType string `json:"version_type"`
	DownloadURL string `json:"download_url"`
	ExpiresIn   int    `json:"expires_in"`
	Metadata    struct {
		Filename string `json:"filename"`
		FileSize int64  `json:"file_size"`
	} `json:"metadata"`
}

type listPage struct {
	Photos []struct {
		PhotoID          string   `json:"photo_id"`
		Filename         string   `json:"filename"`
		VersionType      string   `json:"version_type"`
		HasEditedVersion bool     `json:"has_edited_version"`
		Tags             []string `json:"tags"`
	} `json:"photos"`
	Count            int    `json:"count"`
	ScannedCount     int    `json:"scanned_count"`
	LastEvaluatedKey string `json:"last_evaluated_key"`
	HasMore          bool   `json:"has_more"`
}

type deleteResponse struct {
	PhotoID      string `json:"photo_id"`
	Message      string `json:"message"`
	DeletedItems []struct {
		Type   string `json:"type"`
		Bucket string `json:"bucket"`
		Key    string `json:"key"`
	} `json:"deleted_items"`
}

// photoBytes returns content of the smallest accepted photo size, filled
// with b so versions can be told apart.
func photoBytes(b byte) []byte {
	return bytes.Repeat([]byte{b}, int(snapvault.MinFileSize))
}

func uploadRequest(filename string, content []byte, extra map[string]any) map[string]any {
	req := map[string]any{
		"filename":     filename,
		"content_type": "image/jpeg",
		"file_size":    len(content),
	}
	for k, v := range extra {
		req[k] = v
	}
	return req
}

// uploadPhoto registers a photo and sends its content.
func (c *apiClient) uploadPhoto(filename string, content []byte, extra map[string]any) uploadTicket {
	c.t.Helper()

	var ticket uploadTicket
	require.Equal(c.t, http.StatusOK, c.call(http.MethodPost, "/photos", uploadRequest(filename, content, extra), &ticket))
	require.Equal(c.t, http.StatusOK, c.putObject(ticket.UploadURL, "image/jpeg", content))
	return ticket
}

func startSQLiteServer(t *testing.T, jwtSecret string) (string, func()) {
	t.Helper()
	return startServer(t, ServerConfig{
		DBType:      "sqlite",
		DBDSN:       filepath.Join(t.TempDir(), "snapvault.db"),
		StoragePath: t.TempDir(),
		JWTSecret:   jwtSecret,
	})
}

// TestE2E_PhotoLifecycle_SQLite runs the full photo lifecycle using SQLite.
func TestE2E_PhotoLifecycle_SQLite(t *testing.T) {
	baseURL, cleanup := startSQLiteServer(t, "")
	defer cleanup()

	runPhotoLifecycleTests(t, baseURL)
}

// TestE2E_PhotoLifecycle_Postgres runs the full photo lifecycle using PostgreSQL.
func TestE2E_PhotoLifecycle_Postgres(t *testing.T) {
	dsn := getSharedPostgresDatabase(t)

	baseURL, cleanup := startServer(t, ServerConfig{
		DBType:      "postgres",
		DBDSN:       dsn,
		Table:       fmt.Sprintf("photos_%d", time.Now().UnixNano()),
		StoragePath: t.TempDir(),
	})
	defer cleanup()

	runPhotoLifecycleTests(t, baseURL)
}

// runPhotoLifecycleTests contains the shared lifecycle test logic.
func runPhotoLifecycleTests(t *testing.T, baseURL string) {
	t.Helper()
	alice := asUser(t, baseURL, "alice")

	original := photoBytes('o')
	edited := photoBytes('e')
	var ticket uploadTicket

	t.Run("POST /photos returns a presigned upload", func(t *testing.T) {
		status := alice.call(http.MethodPost, "/photos", uploadRequest("beach.jpg", original, map[string]any{
			"tags":        []string{"beach", "summer"},
			"description": "sunset",
		}), &ticket)
		require.Equal(t, http.StatusOK, status)

		assert.NotEmpty(t, ticket.PhotoID)
		assert.Equal(t, http.MethodPut, ticket.UploadMethod)
		assert.Equal(t, 300, ticket.ExpiresIn)
		assert.Equal(t, "alice/originals/"+ticket.PhotoID+"/beach.jpg", ticket.S3Key)
		assert.True(t, strings.HasPrefix(ticket.UploadURL, baseURL+"/objects/e2e-originals/"))
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), ticket.ExpiresAt, time.Minute)
	})

	t.Run("upload URL accepts the file", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, alice.putObject(ticket.UploadURL, "image/jpeg", original))
	})

	t.Run("upload URL rejects another content type", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, alice.putObject(ticket.UploadURL, "image/png", original))
	})

	t.Run("GET /photos/{id} returns the original", func(t *testing.T) {
		var d downloadTicket
		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/photos/"+ticket.PhotoID, nil, &d))
		assert.Equal(t, "original", d.VersionType)
		assert.Equal(t, "beach.jpg", d.Metadata.Filename)
		assert.Equal(t, int64(len(original)), d.Metadata.FileSize)

		status, data := alice.getObject(d.DownloadURL)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, bytes.Equal(original, data))
	})

	t.Run("edited version is missing before an edit", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, alice.call(http.MethodGet, "/photos/"+ticket.PhotoID+"?version=edited", nil, nil))
	})

	var firstEdit uploadTicket
	t.Run("PUT /photos/{id} registers an edit", func(t *testing.T) {
		require.Equal(t, http.StatusOK, alice.call(http.MethodPut, "/photos/"+ticket.PhotoID,
			uploadRequest("beach-v1.jpg", edited, nil), &firstEdit))
		assert.Equal(t, ticket.PhotoID, firstEdit.PhotoID)
		assert.Empty(t, firstEdit.PreviousVersion)
		assert.True(t, strings.HasPrefix(firstEdit.UploadURL, baseURL+"/objects/e2e-edited/"))

		require.Equal(t, http.StatusOK, alice.putObject(firstEdit.UploadURL, "image/jpeg", edited))
	})

	t.Run("second edit reports the replaced version", func(t *testing.T) {
		var second uploadTicket
		require.Equal(t, http.StatusOK, alice.call(http.MethodPut, "/photos/"+ticket.PhotoID,
			uploadRequest("beach-v2.jpg", edited, nil), &second))
		assert.Equal(t, firstEdit.S3Key, second.PreviousVersion)
		assert.Equal(t, "This will replace the previous edited version", second.Note)

		require.Equal(t, http.StatusOK, alice.putObject(second.UploadURL, "image/jpeg", edited))
	})

	t.Run("GET /photos/{id}?version=edited returns the edit", func(t *testing.T) {
		var d downloadTicket
		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/photos/"+ticket.PhotoID+"?version=edited", nil, &d))
		assert.Equal(t, "edited", d.VersionType)

		status, data := alice.getObject(d.DownloadURL)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, bytes.Equal(edited, data))
	})

	t.Run("GET /photos/{id}/metadata", func(t *testing.T) {
		var meta map[string]any
		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/photos/"+ticket.PhotoID+"/metadata", nil, &meta))

		assert.Equal(t, ticket.PhotoID, meta["photo_id"])
		assert.Equal(t, "alice", meta["user_id"])
		assert.Equal(t, "pending_upload", meta["status"])
		assert.Equal(t, "sunset", meta["description"])
		assert.Equal(t, []any{"beach", "summer"}, meta["tags"])

		editedMeta, ok := meta["edited"].(map[string]any)
		require.True(t, ok, "edited should be an object")
		assert.Equal(t, "beach-v2.jpg", editedMeta["filename"])
		assert.InDelta(t, 2, editedMeta["edit_count"], 0)
	})

	t.Run("GET /photos lists the photo", func(t *testing.T) {
		var page listPage
		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/photos", nil, &page))
		require.Equal(t, 1, page.Count)
		assert.Equal(t, ticket.PhotoID, page.Photos[0].PhotoID)
		assert.Equal(t, "edited", page.Photos[0].VersionType)
		assert.True(t, page.Photos[0].HasEditedVersion)
		assert.False(t, page.HasMore)
	})

	t.Run("DELETE /photos/{id} removes every version", func(t *testing.T) {
		var resp deleteResponse
		require.Equal(t, http.StatusOK, alice.call(http.MethodDelete, "/photos/"+ticket.PhotoID, nil, &resp))
		assert.Equal(t, "Photo and all versions deleted successfully", resp.Message)
		require.Len(t, resp.DeletedItems, 2)
		assert.Equal(t, "original", resp.DeletedItems[0].Type)
		assert.Equal(t, "edited", resp.DeletedItems[1].Type)
	})

	t.Run("photo is gone after delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, alice.call(http.MethodGet, "/photos/"+ticket.PhotoID, nil, nil))
		assert.Equal(t, http.StatusNotFound, alice.call(http.MethodGet, "/photos/"+ticket.PhotoID+"/metadata", nil, nil))
		assert.Equal(t, http.StatusNotFound, alice.call(http.MethodDelete, "/photos/"+ticket.PhotoID, nil, nil))

		var page listPage
		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/photos", nil, &page))
		assert.Zero(t, page.Count)
	})
}

// TestE2E_OwnerIsolation_SQLite checks that photos are invisible to other users.
func TestE2E_OwnerIsolation_SQLite(t *testing.T) {
	baseURL, cleanup := startSQLiteServer(t, "")
	defer cleanup()

	alice := asUser(t, baseURL, "alice")
	bob := asUser(t, baseURL, "bob")

	ticket := alice.uploadPhoto("private.jpg", photoBytes('p'), nil)

	t.Run("other user is denied", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, bob.call(http.MethodGet, "/photos/"+ticket.PhotoID, nil, nil))
		assert.Equal(t, http.StatusForbidden, bob.call(http.MethodGet, "/photos/"+ticket.PhotoID+"/metadata", nil, nil))
		assert.Equal(t, http.StatusForbidden, bob.call(http.MethodPut, "/photos/"+ticket.PhotoID,
			uploadRequest("x.jpg", photoBytes('x'), nil), nil))
		assert.Equal(t, http.StatusForbidden, bob.call(http.MethodDelete, "/photos/"+ticket.PhotoID, nil, nil))
	})

	t.Run("other user lists nothing", func(t *testing.T) {
		var page listPage
		require.Equal(t, http.StatusOK, bob.call(http.MethodGet, "/photos", nil, &page))
		assert.Zero(t, page.Count)
		assert.NotNil(t, page.Photos)
	})

	t.Run("owner still has the photo", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/photos/"+ticket.PhotoID+"/metadata", nil, nil))
	})

	t.Run("missing identity is rejected", func(t *testing.T) {
		anon := asUser(t, baseURL, "")
		assert.Equal(t, http.StatusUnauthorized, anon.call(http.MethodGet, "/photos", nil, nil))
		assert.Equal(t, http.StatusUnauthorized, anon.call(http.MethodPost, "/photos", uploadRequest("a.jpg", photoBytes('a'), nil), nil))
	})
}

// TestE2E_Validation_SQLite checks input validation and presigned URL checks.
func TestE2E_Validation_SQLite(t *testing.T) {
	baseURL, cleanup := startSQLiteServer(t, "")
	defer cleanup()

	alice := asUser(t, baseURL, "alice")

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing filename", body: map[string]any{"file_size": snapvault.MinFileSize}},
		{name: "too small", body: map[string]any{"filename": "a.jpg", "file_size": snapvault.MinFileSize - 1}},
		{name: "too large", body: map[string]any{"filename": "a.jpg", "file_size": snapvault.MaxFileSize + 1}},
		{name: "not a jpeg", body: map[string]any{"filename": "a.png", "content_type": "image/png", "file_size": snapvault.MinFileSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, alice.call(http.MethodPost, "/photos", tt.body, nil))
		})
	}

	t.Run("size bounds are inclusive", func(t *testing.T) {
		for _, size := range []int64{snapvault.MinFileSize, snapvault.MaxFileSize} {
			body := map[string]any{"filename": "edge.jpg", "file_size": size}
			assert.Equal(t, http.StatusOK, alice.call(http.MethodPost, "/photos", body, nil), "size %d", size)
		}
	})

	t.Run("invalid list limit", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, alice.call(http.MethodGet, "/photos?limit=0", nil, nil))
	})

	t.Run("invalid version", func(t *testing.T) {
		ticket := alice.uploadPhoto("v.jpg", photoBytes('v'), nil)
		assert.Equal(t, http.StatusBadRequest, alice.call(http.MethodGet, "/photos/"+ticket.PhotoID+"?version=thumbnail", nil, nil))
	})

	t.Run("tampered upload URL is rejected", func(t *testing.T) {
		var ticket uploadTicket
		require.Equal(t, http.StatusOK, alice.call(http.MethodPost, "/photos", uploadRequest("t.jpg", photoBytes('t'), nil), &ticket))

		u, err := url.Parse(ticket.UploadURL)
		require.NoError(t, err)
		u.Path = strings.Replace(u.Path, "/alice/", "/mallory/", 1)

		assert.Equal(t, http.StatusUnauthorized, alice.putObject(u.String(), "image/jpeg", photoBytes('t')))
	})

	t.Run("unsigned object access is rejected", func(t *testing.T) {
		status, _ := alice.getObject(baseURL + "/objects/e2e-originals/alice/originals/x/t.jpg")
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

// TestE2E_ListPagination_SQLite pages through a user's photos newest first.
func TestE2E_ListPagination_SQLite(t *testing.T) {
	baseURL, cleanup := startSQLiteServer(t, "")
	defer cleanup()

	alice := asUser(t, baseURL, "alice")

	var ids []string
	for i := range 3 {
		ticket := alice.uploadPhoto(fmt.Sprintf("p%d.jpg", i), photoBytes(byte('a'+i)), nil)
		ids = append(ids, ticket.PhotoID)
		time.Sleep(5 * time.Millisecond)
	}

	var first listPage
	require.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/photos?limit=2", nil, &first))
	require.Equal(t, 2, first.Count)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.LastEvaluatedKey)
	assert.Equal(t, ids[2], first.Photos[0].PhotoID)
	assert.Equal(t, ids[1], first.Photos[1].PhotoID)

	var second listPage
	require.Equal(t, http.StatusOK, alice.call(http.MethodGet,
		"/photos?limit=2&last_evaluated_key="+url.QueryEscape(first.LastEvaluatedKey), nil, &second))
	require.Equal(t, 1, second.Count)
	assert.Equal(t, ids[0], second.Photos[0].PhotoID)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.LastEvaluatedKey)

	t.Run("version filter", func(t *testing.T) {
		var page listPage
		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/photos?version_type=edited", nil, &page))
		assert.Zero(t, page.Count)
	})
}

// TestE2E_JWTIdentity_SQLite resolves the caller from a bearer token.
func TestE2E_JWTIdentity_SQLite(t *testing.T) {
	const secret = "e2e-jwt-secret-with-enough-length"

	baseURL, cleanup := startSQLiteServer(t, secret)
	defer cleanup()

	sign := func(subject, issuer string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}

	carol := withToken(t, baseURL, sign("carol", "snapvault-e2e"))

	t.Run("valid token", func(t *testing.T) {
		ticket := carol.uploadPhoto("jwt.jpg", photoBytes('j'), nil)

		var meta map[string]any
		require.Equal(t, http.StatusOK, carol.call(http.MethodGet, "/photos/"+ticket.PhotoID+"/metadata", nil, &meta))
		assert.Equal(t, "carol", meta["user_id"])
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := withToken(t, baseURL, sign("carol", "someone-else"))
		assert.Equal(t, http.StatusUnauthorized, other.call(http.MethodGet, "/photos", nil, nil))
	})

	t.Run("header is ignored", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, asUser(t, baseURL, "carol").call(http.MethodGet, "/photos", nil, nil))
	})
}

// TestE2E_Client_SQLite drives the server through the client library.
func TestE2E_Client_SQLite(t *testing.T) {
	baseURL, cleanup := startSQLiteServer(t, "")
	defer cleanup()

	ctx := context.Background()
	client, err := clientcli.New(&clientcli.Config{Server: baseURL, UserID: "dave"})
	require.NoError(t, err)

	dir := t.TempDir()
	originalPath := filepath.Join(dir, "mountain.jpg")
	require.NoError(t, os.WriteFile(originalPath, photoBytes('m'), 0o600))
	editedPath := filepath.Join(dir, "mountain-edit.jpg")
	require.NoError(t, os.WriteFile(editedPath, photoBytes('n'), 0o600))

	results, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: originalPath, Tags: []string{"alps"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	photoID := results[0].PhotoID

	edit, err := client.Edit(ctx, photoID, clientcli.UploadOptions{LocalPath: editedPath})
	require.NoError(t, err)
	assert.Empty(t, edit.PreviousVersion)

	target := filepath.Join(t.TempDir(), "out.jpg")
	download, _, err := client.Download(ctx, clientcli.DownloadOptions{PhotoID: photoID, Version: "edited", LocalPath: target})
	require.NoError(t, err)
	assert.Equal(t, "edited", download.VersionType)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(photoBytes('n'), data))

	meta, err := client.Info(ctx, photoID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alps"}, meta.Tags)
	require.NotNil(t, meta.Edited)
	assert.Equal(t, 1, meta.Edited.EditCount)

	list, err := client.List(ctx, clientcli.ListOptions{All: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list.Photos, 1)
	assert.Equal(t, photoID, list.Photos[0].PhotoID)

	deleted, err := client.Delete(ctx, clientcli.DeleteOptions{PhotoIDs: []string{photoID, photoID}})
	require.NoError(t, err)
	assert.True(t, deleted[0].Deleted)
	assert.ErrorIs(t, deleted[1].Err, clientcli.ErrNotFound)
}
