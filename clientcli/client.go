package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs operations against a snapvault server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	cfg.Server = strings.TrimSuffix(cfg.Server, "/")

	c := &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload registers one photo, or every image under a directory when
// opts.Recursive is set, and sends the file content to the presigned URL
// returned by the server.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}

	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	if !info.IsDir() {
		result, uploadErr := c.sendPhoto(ctx, http.MethodPost, "/photos", opts)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	if !opts.Recursive {
		return nil, fmt.Errorf("%s is a directory, use --recursive", opts.LocalPath)
	}

	return c.uploadDirectory(ctx, opts)
}

func (c *Client) uploadDirectory(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	var results []UploadResult

	walkErr := filepath.WalkDir(opts.LocalPath, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() || !strings.HasPrefix(detectContentType(path), "image/") {
			return nil
		}

		fileOpts := opts
		fileOpts.LocalPath = path
		fileOpts.ContentType = ""

		result, uploadErr := c.sendPhoto(ctx, http.MethodPost, "/photos", fileOpts)
		if uploadErr != nil {
			result = UploadResult{LocalPath: path, Err: uploadErr}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// Edit registers a new edited version of an existing photo and sends the
// file content to the presigned URL. A previous edited version is replaced.
func (c *Client) Edit(ctx context.Context, photoID string, opts UploadOptions) (*UploadResult, error) {
	if photoID == "" {
		return nil, fmt.Errorf("edit: %w", ErrEmptyPhotoID)
	}
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("edit: %w", ErrEmptyPath)
	}

	result, err := c.sendPhoto(ctx, http.MethodPut, "/photos/"+url.PathEscape(photoID), opts)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// sendPhoto asks the server for a presigned upload URL and then streams the
// local file to it.
func (c *Client) sendPhoto(ctx context.Context, method, path string, opts UploadOptions) (UploadResult, error) {
	file, err := os.Open(opts.LocalPath) //#nosec G304 -- LocalPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return UploadResult{}, fmt.Errorf("%s: %w", opts.LocalPath, ErrNotRegularFile)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(opts.LocalPath)
	}

	body := uploadBody{
		Filename:    filepath.Base(opts.LocalPath),
		ContentType: contentType,
		FileSize:    info.Size(),
		Description: opts.Description,
		Tags:        opts.Tags,
		Geolocation: opts.Geolocation,
		CameraInfo:  opts.CameraInfo,
	}

	var ticket serverUpload
	if err := c.doJSON(ctx, method, path, nil, body, &ticket); err != nil {
		return UploadResult{}, err
	}

	uploadMethod := ticket.UploadMethod
	if uploadMethod == "" {
		uploadMethod = http.MethodPut
	}

	req, err := http.NewRequestWithContext(ctx, uploadMethod, ticket.UploadURL, file)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = info.Size()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return UploadResult{}, parseServerError(resp.StatusCode, respBody)
	}

	return UploadResult{
		LocalPath:       opts.LocalPath,
		PhotoID:         ticket.PhotoID,
		Key:             ticket.S3Key,
		ContentType:     contentType,
		Size:            info.Size(),
		ETag:            strings.Trim(resp.Header.Get("ETag"), `"`),
		ExpiresAt:       ticket.ExpiresAt,
		PreviousVersion: ticket.PreviousVersion,
	}, nil
}

// Download fetches a presigned download URL for a photo and reads the
// content from it.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.PhotoID == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPhotoID)
	}

	query := url.Values{}
	if opts.Version != "" {
		query.Set("version", opts.Version)
	}

	var ticket serverDownload
	if err := c.doJSON(ctx, http.MethodGet, "/photos/"+url.PathEscape(opts.PhotoID), query, nil, &ticket); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ticket.DownloadURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = ticket.Metadata.ContentType
	}

	result := &DownloadResult{
		PhotoID:     ticket.PhotoID,
		VersionType: ticket.VersionType,
		Filename:    ticket.Metadata.Filename,
		ContentType: contentType,
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = filepath.Base(ticket.Metadata.Filename)
	}
	if localPath == "" || localPath == "." || localPath == string(filepath.Separator) {
		localPath = ticket.PhotoID
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// Info returns the full metadata record of a photo.
func (c *Client) Info(ctx context.Context, photoID string) (*PhotoMetadata, error) {
	if photoID == "" {
		return nil, fmt.Errorf("info: %w", ErrEmptyPhotoID)
	}

	var meta PhotoMetadata
	if err := c.doJSON(ctx, http.MethodGet, "/photos/"+url.PathEscape(photoID)+"/metadata", nil, nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Delete deletes one or more photos from the server.
// Continues on error, collecting results for all ids.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.PhotoIDs) == 0 {
		return nil, ErrNoPhotoIDs
	}

	results := make([]DeleteResult, 0, len(opts.PhotoIDs))

	for _, id := range opts.PhotoIDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, c.deleteSingle(ctx, id))
	}

	return results, nil
}

func (c *Client) deleteSingle(ctx context.Context, photoID string) DeleteResult {
	if photoID == "" {
		return DeleteResult{PhotoID: photoID, Err: ErrEmptyPhotoID}
	}

	var resp serverDelete
	if err := c.doJSON(ctx, http.MethodDelete, "/photos/"+url.PathEscape(photoID), nil, nil, &resp); err != nil {
		return DeleteResult{PhotoID: photoID, Err: err}
	}

	return DeleteResult{
		PhotoID:      photoID,
		Deleted:      true,
		DeletedItems: resp.DeletedItems,
	}
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// List lists the caller's photos, newest first.
// If opts.All is true, paginates through all results.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.All {
		return c.listAll(ctx, opts)
	}
	return c.listPage(ctx, opts)
}

func (c *Client) listPage(ctx context.Context, opts ListOptions) (*ListResult, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.VersionType != "" {
		query.Set("version_type", opts.VersionType)
	}
	if opts.Cursor != "" {
		query.Set("last_evaluated_key", opts.Cursor)
	}

	var page serverList
	if err := c.doJSON(ctx, http.MethodGet, "/photos", query, nil, &page); err != nil {
		return nil, err
	}

	result := &ListResult{Photos: page.Photos}
	if page.HasMore {
		result.NextCursor = page.LastEvaluatedKey
	}
	return result, nil
}

func (c *Client) listAll(ctx context.Context, opts ListOptions) (*ListResult, error) {
	var all []PhotoInfo
	cursor := opts.Cursor

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.listPage(ctx, ListOptions{
			VersionType: opts.VersionType,
			Limit:       opts.Limit,
			Cursor:      cursor,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, page.Photos...)

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return &ListResult{Photos: all}, nil
}

// doJSON sends an API request carrying the configured identity and decodes
// the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.config.Server + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
		return
	}
	if c.config.UserID != "" {
		req.Header.Set(c.config.UserHeader, c.config.UserID)
	}
}

// detectContentType returns MIME type based on file extension.
func detectContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "application/octet-stream"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}

	return mimeType
}

// parseServerError extracts error message from server response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var e serverError
	if json.Unmarshal(body, &e) == nil {
		apiErr.Message = e.Error
	}
	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the photo or version does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when no identity was accepted (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrForbidden is returned when the photo belongs to another user (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrBadRequest is returned when the server rejected the input (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}
)
