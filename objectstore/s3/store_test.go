package s3_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sagarc03/snapvault/objectstore/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
}

// fakeS3 answers path-style requests and records them.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	buckets  map[string]bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path})
	bucket := strings.Trim(r.URL.Path, "/")

	switch {
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodHead && !strings.Contains(bucket, "/"):
		if f.buckets[bucket] {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && !strings.Contains(bucket, "/"):
		f.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func newTestStore(t *testing.T, endpoint string) *s3.Store {
	t.Helper()

	store, err := s3.New(context.Background(), s3.Options{
		Region:       "us-east-1",
		Endpoint:     endpoint,
		AccessKey:    "AKIATEST",
		SecretKey:    "testsecret",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	return store
}

func TestStore_PresignPut(t *testing.T) {
	store := newTestStore(t, "http://127.0.0.1:9000")

	req, err := store.PresignPut(context.Background(), "photos-originals", "u1/originals/p1/a.jpg", "image/jpeg", 15*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, req.Method)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), req.ExpiresAt, 5*time.Second)

	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/photos-originals/u1/originals/p1/a.jpg", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "content-type")
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), "AKIATEST/")
}

func TestStore_PresignGet(t *testing.T) {
	store := newTestStore(t, "http://127.0.0.1:9000")

	req, err := store.PresignGet(context.Background(), "photos-edited", "u1/edited/p1/a.jpg", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)

	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "/photos-edited/u1/edited/p1/a.jpg", u.Path)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestStore_Delete(t *testing.T) {
	fake := &fakeS3{buckets: map[string]bool{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	store := newTestStore(t, server.URL)

	require.NoError(t, store.Delete(context.Background(), "photos-originals", "u1/originals/p1/a.jpg"))

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].Method)
	assert.Equal(t, "/photos-originals/u1/originals/p1/a.jpg", fake.requests[0].Path)
}

func TestStore_EnsureBuckets(t *testing.T) {
	fake := &fakeS3{buckets: map[string]bool{"photos-originals": true}}
	server := httptest.NewServer(fake)
	defer server.Close()

	store := newTestStore(t, server.URL)

	require.NoError(t, store.EnsureBuckets(context.Background(), "photos-originals", "photos-edited"))

	assert.True(t, fake.buckets["photos-edited"])

	var creates int
	for _, r := range fake.requests {
		if r.Method == http.MethodPut {
			creates++
			assert.Equal(t, "/photos-edited", strings.TrimSuffix(r.Path, "/"))
		}
	}
	assert.Equal(t, 1, creates, "existing bucket is left alone")
}
