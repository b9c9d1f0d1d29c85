package snapvault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// MetaDataRepo defines the interface for photo record persistence.
// Implementations must handle concurrent access safely.
//
// All methods accept a context for cancellation and timeout control.
// Implementations should respect context cancellation and return appropriate errors.
type MetaDataRepo interface {
	// Get retrieves a photo record by its identifier.
	//
	// Returns:
	//   - Photo: The record if found
	//   - error: ErrNotFound if no record exists, or other store errors
	Get(ctx context.Context, id string) (Photo, error)

	// Create stores a new photo record. The caller supplies the identifier
	// and both timestamps.
	Create(ctx context.Context, p Photo) error

	// UpdateEdited records a new edited version in a single atomic update.
	// It sets the edited descriptor, the edited flag, version type "edited"
	// and updatedAt. The edit counter becomes 1 when the stored record had no
	// edited key, otherwise the stored counter (absent counts as 0) plus one.
	//
	// Returns:
	//   - Photo: The record after the update
	//   - error: ErrNotFound if the record disappeared, or other store errors
	UpdateEdited(ctx context.Context, id string, edited Asset, updatedAt time.Time) (Photo, error)

	// Delete removes a photo record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the records owned by q.UserID, newest first, optionally
	// restricted to one version type. A malformed q.Cursor yields an error
	// wrapping ErrInvalidInput.
	List(ctx context.Context, q ListQuery) (ListResult, error)
}

// ObjectStore defines the interface for the object store holding photo bytes.
// Implementations can use the local filesystem, S3, MinIO, or any other backend
// that can issue presigned URLs.
type ObjectStore interface {
	// PresignPut returns a URL that accepts a single PUT of key in bucket.
	// The upload must carry contentType as its Content-Type header.
	PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (PresignedRequest, error)

	// PresignGet returns a URL that allows GET of key in bucket.
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (PresignedRequest, error)

	// Delete removes key from bucket.
	Delete(ctx context.Context, bucket, key string) error
}

type PhotoService struct {
	repo    MetaDataRepo
	store   ObjectStore
	buckets Buckets
	ttl     time.Duration
}

// ServiceConfig holds configuration options for PhotoService.
type ServiceConfig struct {
	Buckets       Buckets
	CredentialTTL time.Duration // Lifetime of presigned URLs (default: 900s)
}

func NewPhotoService(repo MetaDataRepo, store ObjectStore, cfg ServiceConfig) (*PhotoService, error) {
	if cfg.Buckets.Originals == "" || cfg.Buckets.Edited == "" {
		return nil, fmt.Errorf("new photo service: %w: both buckets must be set", ErrInvalidInput)
	}
	ttl := cfg.CredentialTTL
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	return &PhotoService{
		repo:    repo,
		store:   store,
		buckets: cfg.Buckets,
		ttl:     ttl,
	}, nil
}

// Upload registers a new photo owned by userID and returns a presigned PUT
// for its original version.
//
// The request is validated before anything is written:
//   - Filename is required and must be a single key segment
//   - FileSize must lie in [MinFileSize, MaxFileSize]
//   - ContentType defaults to image/jpeg and must name a JPEG
//
// The record is created with status pending_upload and no edited version.
// Unknown attribute names in req.Attributes are dropped.
func (s *PhotoService) Upload(ctx context.Context, userID string, req UploadRequest) (UploadTicket, error) {
	if err := ctx.Err(); err != nil {
		return UploadTicket{}, fmt.Errorf("upload photo: %w", err)
	}

	if userID == "" {
		return UploadTicket{}, fmt.Errorf("upload photo: %w", errAuthRequired)
	}

	contentType, err := validateUpload(req)
	if err != nil {
		return UploadTicket{}, fmt.Errorf("upload photo: %w", err)
	}

	id := uuid.NewString()
	key := ObjectKey(userID, VersionOriginal, id, req.Filename)
	bucket := s.buckets.For(VersionOriginal)

	presigned, err := s.store.PresignPut(ctx, bucket, key, contentType, s.ttl)
	if err != nil {
		return UploadTicket{}, fmt.Errorf("upload photo %s: presign: %w", id, err)
	}

	now := timestamp()
	photo := Photo{
		ID:          id,
		UserID:      userID,
		Status:      StatusPendingUpload,
		VersionType: VersionOriginal,
		CreatedAt:   now,
		UpdatedAt:   now,
		Original: Asset{
			Filename:    req.Filename,
			ContentType: contentType,
			FileSize:    req.FileSize,
			Key:         key,
			Bucket:      bucket,
		},
		Attributes: pickAttributes(req.Attributes),
	}

	if err := s.repo.Create(ctx, photo); err != nil {
		return UploadTicket{}, fmt.Errorf("upload photo %s: %w", id, err)
	}

	return UploadTicket{
		PhotoID:   id,
		Key:       key,
		Request:   presigned,
		ExpiresIn: s.ttl,
	}, nil
}

// Edit issues a presigned PUT for a new edited version of a photo owned by
// userID and records it. Validation happens before the record lookup.
// A previously edited object is not deleted; its key is reported in
// UploadTicket.PreviousKey.
func (s *PhotoService) Edit(ctx context.Context, userID, photoID string, req UploadRequest) (UploadTicket, error) {
	if err := ctx.Err(); err != nil {
		return UploadTicket{}, fmt.Errorf("edit photo: %w", err)
	}

	if userID == "" {
		return UploadTicket{}, fmt.Errorf("edit photo: %w", errAuthRequired)
	}

	contentType, err := validateUpload(req)
	if err != nil {
		return UploadTicket{}, fmt.Errorf("edit photo: %w", err)
	}

	photo, err := s.ownedPhoto(ctx, userID, photoID)
	if err != nil {
		return UploadTicket{}, fmt.Errorf("edit photo %s: %w", photoID, err)
	}

	key := ObjectKey(userID, VersionEdited, photo.ID, req.Filename)
	bucket := s.buckets.For(VersionEdited)

	presigned, err := s.store.PresignPut(ctx, bucket, key, contentType, s.ttl)
	if err != nil {
		return UploadTicket{}, fmt.Errorf("edit photo %s: presign: %w", photoID, err)
	}

	var previousKey string
	if photo.Edited != nil {
		previousKey = photo.Edited.Key
	}

	edited := Asset{
		Filename:    req.Filename,
		ContentType: contentType,
		FileSize:    req.FileSize,
		Key:         key,
		Bucket:      bucket,
	}

	if _, err := s.repo.UpdateEdited(ctx, photo.ID, edited, timestamp()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return UploadTicket{}, fmt.Errorf("edit photo %s: %w", photoID, errPhotoNotFound)
		}
		return UploadTicket{}, fmt.Errorf("edit photo %s: %w", photoID, err)
	}

	return UploadTicket{
		PhotoID:     photo.ID,
		Key:         key,
		Request:     presigned,
		ExpiresIn:   s.ttl,
		PreviousKey: previousKey,
	}, nil
}

// Retrieve returns a presigned GET for one version of a photo owned by userID.
// An empty version selects the original.
func (s *PhotoService) Retrieve(ctx context.Context, userID, photoID, version string) (Download, error) {
	if err := ctx.Err(); err != nil {
		return Download{}, fmt.Errorf("retrieve photo: %w", err)
	}

	if userID == "" {
		return Download{}, fmt.Errorf("retrieve photo: %w", errAuthRequired)
	}

	v := VersionOriginal
	if version != "" {
		parsed, err := ParseVersionType(version)
		if err != nil {
			return Download{}, fmt.Errorf("retrieve photo: %w",
				newError(ErrInvalidInput, `version must be either "original" or "edited"`))
		}
		v = parsed
	}

	photo, err := s.ownedPhoto(ctx, userID, photoID)
	if err != nil {
		return Download{}, fmt.Errorf("retrieve photo %s: %w", photoID, err)
	}

	asset := photo.Original
	label := "Original"
	if v == VersionEdited {
		if !photo.HasEditedVersion || photo.Edited == nil {
			return Download{}, fmt.Errorf("retrieve photo %s: %w", photoID,
				newError(ErrNotFound, "No edited version available"))
		}
		asset = *photo.Edited
		label = "Edited"
	}

	if asset.Key == "" || asset.Bucket == "" {
		return Download{}, fmt.Errorf("retrieve photo %s: %w", photoID,
			newError(ErrNotFound, label+" version not found"))
	}

	presigned, err := s.store.PresignGet(ctx, asset.Bucket, asset.Key, s.ttl)
	if err != nil {
		return Download{}, fmt.Errorf("retrieve photo %s: presign: %w", photoID, err)
	}

	return Download{
		PhotoID:     photo.ID,
		VersionType: v,
		Request:     presigned,
		ExpiresIn:   s.ttl,
		Photo:       photo,
	}, nil
}

// Metadata returns the full record of a photo owned by userID.
func (s *PhotoService) Metadata(ctx context.Context, userID, photoID string) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, fmt.Errorf("photo metadata: %w", err)
	}

	if userID == "" {
		return Photo{}, fmt.Errorf("photo metadata: %w", errAuthRequired)
	}

	photo, err := s.ownedPhoto(ctx, userID, photoID)
	if err != nil {
		return Photo{}, fmt.Errorf("photo metadata %s: %w", photoID, err)
	}

	return withDefaults(photo), nil
}

// List returns one page of photos owned by q.UserID, newest first.
// A zero q.Limit selects DefaultListLimit and larger limits are capped at
// MaxListLimit.
func (s *PhotoService) List(ctx context.Context, q ListQuery) (ListResult, error) {
	if err := ctx.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list photos: %w", err)
	}

	if q.UserID == "" {
		return ListResult{}, fmt.Errorf("list photos: %w", errAuthRequired)
	}

	if q.VersionType != "" && !q.VersionType.IsValid() {
		return ListResult{}, fmt.Errorf("list photos: %w",
			newError(ErrInvalidInput, `version_type must be either "original" or "edited"`))
	}

	switch {
	case q.Limit == 0:
		q.Limit = DefaultListLimit
	case q.Limit < 0:
		return ListResult{}, fmt.Errorf("list photos: %w", newError(ErrInvalidInput, "Invalid parameter: limit"))
	case q.Limit > MaxListLimit:
		q.Limit = MaxListLimit
	}

	result, err := s.repo.List(ctx, q)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return ListResult{}, fmt.Errorf("list photos: %w", newError(ErrInvalidInput, "Invalid pagination token"))
		}
		return ListResult{}, fmt.Errorf("list photos: %w", err)
	}

	for i := range result.Items {
		result.Items[i] = withDefaults(result.Items[i])
	}

	return result, nil
}

// Delete removes every stored version of a photo owned by userID and then
// its record. Object deletion is best effort: failures are logged and left
// out of DeleteResult.Deleted, and the record is removed regardless.
func (s *PhotoService) Delete(ctx context.Context, userID, photoID string) (DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return DeleteResult{}, fmt.Errorf("delete photo: %w", err)
	}

	if userID == "" {
		return DeleteResult{}, fmt.Errorf("delete photo: %w", errAuthRequired)
	}

	photo, err := s.ownedPhoto(ctx, userID, photoID)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete photo %s: %w", photoID, err)
	}

	deleted := make([]DeletedItem, 0, 2)

	targets := []DeletedItem{{Type: VersionOriginal, Bucket: photo.Original.Bucket, Key: photo.Original.Key}}
	if photo.HasEditedVersion && photo.Edited != nil {
		targets = append(targets, DeletedItem{Type: VersionEdited, Bucket: photo.Edited.Bucket, Key: photo.Edited.Key})
	}

	for _, item := range targets {
		if item.Bucket == "" || item.Key == "" {
			continue
		}
		if err := s.store.Delete(ctx, item.Bucket, item.Key); err != nil {
			slog.WarnContext(ctx, "delete photo object failed",
				"photo_id", photo.ID, "type", item.Type, "bucket", item.Bucket, "key", item.Key, "error", err)
			continue
		}
		deleted = append(deleted, item)
	}

	if err := s.repo.Delete(ctx, photo.ID); err != nil {
		return DeleteResult{}, fmt.Errorf("delete photo %s: %w", photoID, err)
	}

	return DeleteResult{PhotoID: photo.ID, Deleted: deleted}, nil
}

var (
	errAuthRequired  = newError(ErrUnauthorized, "Authentication required")
	errPhotoNotFound = newError(ErrNotFound, "Photo not found")
	errAccessDenied  = newError(ErrForbidden, "Access denied")
)

func (s *PhotoService) ownedPhoto(ctx context.Context, userID, photoID string) (Photo, error) {
	if photoID == "" {
		return Photo{}, errPhotoNotFound
	}

	photo, err := s.repo.Get(ctx, photoID)
	if errors.Is(err, ErrNotFound) {
		return Photo{}, errPhotoNotFound
	}
	if err != nil {
		return Photo{}, err
	}

	if photo.UserID != userID {
		return Photo{}, errAccessDenied
	}

	return photo, nil
}

func validateUpload(req UploadRequest) (string, error) {
	if req.Filename == "" {
		return "", newError(ErrInvalidInput, "filename is required")
	}
	if !IsValidFilename(req.Filename) {
		return "", newError(ErrInvalidInput, "Invalid filename")
	}
	if req.FileSize < MinFileSize || req.FileSize > MaxFileSize {
		return "", newError(ErrInvalidInput, "File size must be between 5MB and 20MB")
	}
	contentType := NormalizeContentType(req.ContentType)
	if !IsJPEG(contentType) {
		return "", newError(ErrInvalidInput, "Only JPEG files are supported")
	}
	return contentType, nil
}

func pickAttributes(in map[string]any) map[string]any {
	out := make(map[string]any)
	for _, name := range OptionalAttributes {
		if v, ok := in[name]; ok && v != nil {
			out[name] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func withDefaults(p Photo) Photo {
	if p.Status == "" {
		p.Status = StatusUnknown
	}
	if p.VersionType == "" {
		p.VersionType = VersionOriginal
	}
	return p
}

// timestamp returns the current UTC time at the precision every backend keeps.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
