// Package filesystem provides a local object store for snapvault.
// Each bucket is a directory under a sandboxed root. Clients reach objects
// through presigned URLs served by the HTTP package; writes are atomic using
// temp files and SHA256-based etags.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/snapvault"
)

// WriteResult describes a stored object.
type WriteResult struct {
	BytesWritten int64
	ETag         string
}

// Store provides object storage on the local file system.
type Store struct {
	root      *os.Root
	presigner *snapvault.Presigner
	buckets   map[string]bool
	now       func() time.Time
}

// NewStore creates a Store rooted at root. Only the listed buckets are
// accepted; their directories are created when missing. URLs handed out by
// PresignPut and PresignGet are signed by presigner.
func NewStore(root *os.Root, presigner *snapvault.Presigner, buckets ...string) (*Store, error) {
	if presigner == nil {
		return nil, fmt.Errorf("new store: %w: presigner is required", snapvault.ErrInvalidInput)
	}

	allowed := make(map[string]bool, len(buckets))
	for _, b := range buckets {
		if !isValidBucket(b) {
			return nil, fmt.Errorf("new store: %w: invalid bucket name %q", snapvault.ErrInvalidInput, b)
		}
		if err := root.MkdirAll(b, 0o755); err != nil {
			return nil, fmt.Errorf("new store: create bucket %s: %w", b, err)
		}
		allowed[b] = true
	}

	return &Store{
		root:      root,
		presigner: presigner,
		buckets:   allowed,
		now:       time.Now,
	}, nil
}

func isValidBucket(name string) bool {
	return name != "" && name != "." && name != ".." && snapvault.IsValidFilename(name)
}

// objectPath maps bucket and key to a path inside the root.
func (s *Store) objectPath(bucket, key string) (string, error) {
	if !s.buckets[bucket] {
		return "", fmt.Errorf("%w: unknown bucket %q", snapvault.ErrNotFound, bucket)
	}
	if key == "" || !snapvault.IsValidPath(key) || path.Clean(key) != key {
		return "", fmt.Errorf("%w: invalid object key", snapvault.ErrInvalidInput)
	}
	return filepath.Join(bucket, filepath.FromSlash(key)), nil
}

// PresignPut returns a URL accepting a single PUT of key with contentType.
func (s *Store) PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (snapvault.PresignedRequest, error) {
	headers := http.Header{}
	headers.Set("Content-Type", contentType)
	return s.presign(ctx, http.MethodPut, bucket, key, headers, ttl)
}

// PresignGet returns a URL allowing GET of key.
func (s *Store) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (snapvault.PresignedRequest, error) {
	return s.presign(ctx, http.MethodGet, bucket, key, nil, ttl)
}

func (s *Store) presign(ctx context.Context, method, bucket, key string, headers http.Header, ttl time.Duration) (snapvault.PresignedRequest, error) {
	if err := ctx.Err(); err != nil {
		return snapvault.PresignedRequest{}, err
	}

	if _, err := s.objectPath(bucket, key); err != nil {
		return snapvault.PresignedRequest{}, fmt.Errorf("presign %s: %w", method, err)
	}

	now := s.now()
	u, err := s.presigner.Presign(method, bucket+"/"+key, headers, ttl, now)
	if err != nil {
		return snapvault.PresignedRequest{}, fmt.Errorf("presign %s: %w", method, err)
	}

	return snapvault.PresignedRequest{URL: u, Method: method, ExpiresAt: now.Add(ttl).UTC()}, nil
}

// Open opens an object for reading. Returns snapvault.ErrNotFound if it
// does not exist.
func (s *Store) Open(ctx context.Context, bucket, key string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}

	f, err := s.root.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, snapvault.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically stores content as key in bucket using a temp file and
// rename. Intermediate directories are created as needed. The operation
// respects context cancellation; a failed write leaves no partial object.
func (s *Store) Write(ctx context.Context, bucket, key string, content io.Reader) (WriteResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return WriteResult{}, ctxErr
	}

	dest, err := s.objectPath(bucket, key)
	if err != nil {
		return WriteResult{}, err
	}

	tmpFile := filepath.Join(bucket, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return WriteResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	size, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return WriteResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return WriteResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if err := s.root.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, dest); renameErr != nil {
		return WriteResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true

	return WriteResult{BytesWritten: size, ETag: hex.EncodeToString(h.Sum(nil))}, nil
}

// Delete removes key from bucket. Removing a missing object is not an
// error, matching S3 semantics.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := s.objectPath(bucket, key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if err := s.root.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete file: %w", err)
	}

	return nil
}

// ContentType guesses the content type of key from its extension.
func ContentType(key string) string {
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
