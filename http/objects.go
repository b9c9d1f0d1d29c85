package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/filesystem"
)

// ObjectStore is the local byte store behind the object endpoint.
// *filesystem.Store implements it.
type ObjectStore interface {
	Open(ctx context.Context, bucket, key string) (*os.File, error)
	Write(ctx context.Context, bucket, key string, content io.Reader) (filesystem.WriteResult, error)
}

type ObjectConfig struct {
	Store    ObjectStore
	Verifier RequestVerifier
	// MaxUploadSize caps PUT bodies in bytes. Zero selects snapvault.MaxFileSize.
	MaxUploadSize int64
}

type objectHandler struct {
	store   ObjectStore
	maxSize int64
}

func newObjectHandler(cfg ObjectConfig) *objectHandler {
	maxSize := cfg.MaxUploadSize
	if maxSize <= 0 {
		maxSize = snapvault.MaxFileSize
	}
	return &objectHandler{store: cfg.Store, maxSize: maxSize}
}

var errInvalidObjectPath = &snapvault.Error{Err: snapvault.ErrInvalidInput, Message: "Invalid object path"}

// objectAddress splits /objects/{bucket}/{key...}.
func objectAddress(r *http.Request) (string, string, error) {
	rest := strings.TrimPrefix(r.URL.Path, "/objects/")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", errInvalidObjectPath
	}
	return bucket, key, nil
}

func (o *objectHandler) handlePut(w http.ResponseWriter, r *http.Request) {
	bucket, key, err := objectAddress(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	if r.ContentLength > o.maxSize {
		WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	body := http.MaxBytesReader(w, r.Body, o.maxSize)

	result, err := o.store.Write(r.Context(), bucket, key, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		HandleError(w, fmt.Errorf("put object %s/%s: %w", bucket, key, err))
		return
	}

	w.Header().Set("ETag", `"`+result.ETag+`"`)
	w.WriteHeader(http.StatusOK)
}

func (o *objectHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	bucket, key, err := objectAddress(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	f, err := o.store.Open(r.Context(), bucket, key)
	if err != nil {
		HandleError(w, fmt.Errorf("get object %s/%s: %w", bucket, key, err))
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		HandleError(w, fmt.Errorf("get object %s/%s: %w", bucket, key, err))
		return
	}

	w.Header().Set("Content-Type", filesystem.ContentType(key))

	http.ServeContent(w, r, key, info.ModTime(), f)
}
