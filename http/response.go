package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sagarc03/snapvault"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, snapvault.ErrUnauthorized):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusUnauthorized, snapvault.Message(err, "Authentication required"))
	case errors.Is(err, snapvault.ErrForbidden):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusForbidden, snapvault.Message(err, "Access denied"))
	case errors.Is(err, snapvault.ErrNotFound):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusNotFound, snapvault.Message(err, "Not found"))
	case errors.Is(err, snapvault.ErrInvalidInput):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusBadRequest, snapvault.Message(err, "Invalid request"))
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

type UploadResponse struct {
	PhotoID         string    `json:"photo_id"`
	UploadURL       string    `json:"upload_url"`
	UploadMethod    string    `json:"upload_method"`
	ExpiresIn       int       `json:"expires_in"`
	ExpiresAt       time.Time `json:"expires_at"`
	S3Key           string    `json:"s3_key"`
	Message         string    `json:"message"`
	Note            string    `json:"note,omitempty"`
	PreviousVersion string    `json:"previous_version,omitempty"`
}

func newUploadResponse(t snapvault.UploadTicket, message string) UploadResponse {
	return UploadResponse{
		PhotoID:      t.PhotoID,
		UploadURL:    t.Request.URL,
		UploadMethod: t.Request.Method,
		ExpiresIn:    int(t.ExpiresIn.Seconds()),
		ExpiresAt:    t.Request.ExpiresAt,
		S3Key:        t.Key,
		Message:      message,
	}
}

type DownloadMetadata struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type DownloadResponse struct {
	PhotoID     string           `json:"photo_id"`
	VersionType string           `json:"version_type"`
	DownloadURL string           `json:"download_url"`
	ExpiresIn   int              `json:"expires_in"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Metadata    DownloadMetadata `json:"metadata"`
}

// newDownloadResponse reports the original descriptor in Metadata whichever
// version was requested.
func newDownloadResponse(d snapvault.Download) DownloadResponse {
	return DownloadResponse{
		PhotoID:     d.PhotoID,
		VersionType: string(d.VersionType),
		DownloadURL: d.Request.URL,
		ExpiresIn:   int(d.ExpiresIn.Seconds()),
		ExpiresAt:   d.Request.ExpiresAt,
		Metadata: DownloadMetadata{
			Filename:    d.Photo.Original.Filename,
			ContentType: d.Photo.Original.ContentType,
			FileSize:    d.Photo.Original.FileSize,
			CreatedAt:   d.Photo.CreatedAt,
			UpdatedAt:   d.Photo.UpdatedAt,
		},
	}
}

type AssetResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
	S3Key       string `json:"s3_key"`
	Bucket      string `json:"bucket"`
	EditCount   *int   `json:"edit_count,omitempty"`
}

func newAssetResponse(a snapvault.Asset) AssetResponse {
	return AssetResponse{
		Filename:    a.Filename,
		ContentType: a.ContentType,
		FileSize:    a.FileSize,
		S3Key:       a.Key,
		Bucket:      a.Bucket,
	}
}

// newMetadataResponse flattens the optional attributes next to the fixed
// fields. Edited is always present, as null when no edit exists.
func newMetadataResponse(p snapvault.Photo) map[string]any {
	out := make(map[string]any, 7+len(p.Attributes))
	for _, name := range snapvault.OptionalAttributes {
		if v, ok := p.Attributes[name]; ok {
			out[name] = v
		}
	}

	out["photo_id"] = p.ID
	out["user_id"] = p.UserID
	out["created_at"] = p.CreatedAt
	out["updated_at"] = p.UpdatedAt
	out["status"] = p.Status
	out["original"] = newAssetResponse(p.Original)
	out["edited"] = nil

	if p.HasEditedVersion && p.Edited != nil {
		edited := newAssetResponse(*p.Edited)
		count := max(p.EditCount, 1)
		edited.EditCount = &count
		out["edited"] = edited
	}

	return out
}

type ListItem struct {
	PhotoID          string    `json:"photo_id"`
	Filename         string    `json:"filename"`
	VersionType      string    `json:"version_type"`
	ContentType      string    `json:"content_type"`
	FileSize         int64     `json:"file_size"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	HasEditedVersion bool      `json:"has_edited_version"`
	Status           string    `json:"status"`
	Geolocation      any       `json:"geolocation,omitempty"`
	Tags             any       `json:"tags,omitempty"`
}

// nonEmpty maps empty strings, slices and maps to nil so omitempty drops them.
func nonEmpty(v any) any {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
	case []any:
		if len(t) == 0 {
			return nil
		}
	case []string:
		if len(t) == 0 {
			return nil
		}
	case map[string]any:
		if len(t) == 0 {
			return nil
		}
	}
	return v
}

type ListResponse struct {
	Photos           []ListItem `json:"photos"`
	Count            int        `json:"count"`
	ScannedCount     int        `json:"scanned_count"`
	LastEvaluatedKey string     `json:"last_evaluated_key,omitempty"`
	HasMore          bool       `json:"has_more"`
}

func newListResponse(result snapvault.ListResult) ListResponse {
	photos := make([]ListItem, 0, len(result.Items))
	for _, p := range result.Items {
		photos = append(photos, ListItem{
			PhotoID:          p.ID,
			Filename:         p.Original.Filename,
			VersionType:      string(p.VersionType),
			ContentType:      p.Original.ContentType,
			FileSize:         p.Original.FileSize,
			CreatedAt:        p.CreatedAt,
			UpdatedAt:        p.UpdatedAt,
			HasEditedVersion: p.HasEditedVersion,
			Status:           string(p.Status),
			Geolocation:      nonEmpty(p.Attributes[snapvault.AttrGeolocation]),
			Tags:             nonEmpty(p.Attributes[snapvault.AttrTags]),
		})
	}

	return ListResponse{
		Photos:           photos,
		Count:            len(photos),
		ScannedCount:     result.ScannedCount,
		LastEvaluatedKey: result.NextCursor,
		HasMore:          result.NextCursor != "",
	}
}

type DeletedItemResponse struct {
	Type   string `json:"type"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type DeleteResponse struct {
	PhotoID      string                `json:"photo_id"`
	Message      string                `json:"message"`
	DeletedItems []DeletedItemResponse `json:"deleted_items"`
}

func newDeleteResponse(result snapvault.DeleteResult) DeleteResponse {
	items := make([]DeletedItemResponse, 0, len(result.Deleted))
	for _, d := range result.Deleted {
		items = append(items, DeletedItemResponse{Type: string(d.Type), Bucket: d.Bucket, Key: d.Key})
	}

	return DeleteResponse{
		PhotoID:      result.PhotoID,
		Message:      "Photo and all versions deleted successfully",
		DeletedItems: items,
	}
}
