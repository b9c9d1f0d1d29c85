package snapvault

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinFileSize and MaxFileSize bound the declared photo size in bytes, both inclusive.
	MinFileSize int64 = 5 * 1024 * 1024
	MaxFileSize int64 = 20 * 1024 * 1024

	DefaultContentType   = "image/jpeg"
	DefaultCredentialTTL = 900 * time.Second
	DefaultListLimit     = 50
	MaxListLimit         = 100
)

type VersionType string

const (
	VersionOriginal VersionType = "original"
	VersionEdited   VersionType = "edited"
)

func (v VersionType) IsValid() bool {
	switch v {
	case VersionOriginal, VersionEdited:
		return true
	default:
		return false
	}
}

func ParseVersionType(s string) (VersionType, error) {
	v := VersionType(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid version type: %s (valid types: original, edited)", s)
	}
	return v, nil
}

type Status string

const (
	StatusPendingUpload Status = "pending_upload"
	// StatusUnknown is reported for records stored without a status.
	StatusUnknown Status = "unknown"
)

// Optional photo attributes accepted on upload and echoed back verbatim.
const (
	AttrGeolocation = "geolocation"
	AttrTags        = "tags"
	AttrDescription = "description"
	AttrCameraInfo  = "camera_info"
)

// OptionalAttributes lists every free-form attribute a photo may carry.
var OptionalAttributes = []string{AttrGeolocation, AttrTags, AttrDescription, AttrCameraInfo}

// Asset describes one stored version of a photo.
type Asset struct {
	Filename    string
	ContentType string
	FileSize    int64
	Key         string
	Bucket      string
}

// Photo is the metadata record of a single photo. Edited is non-nil exactly
// when HasEditedVersion is true.
type Photo struct {
	ID               string
	UserID           string
	Status           Status
	VersionType      VersionType
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Original         Asset
	HasEditedVersion bool
	Edited           *Asset
	EditCount        int
	Attributes       map[string]any
}

type ListQuery struct {
	UserID      string
	VersionType VersionType // empty lists every version type
	Limit       int
	Cursor      string
}

type ListResult struct {
	Items        []Photo
	ScannedCount int
	NextCursor   string
}

// Buckets names the object store buckets for each version type.
type Buckets struct {
	Originals string `mapstructure:"originals" validate:"required"`
	Edited    string `mapstructure:"edited" validate:"required"`
}

// For returns the bucket holding version v.
func (b Buckets) For(v VersionType) string {
	if v == VersionEdited {
		return b.Edited
	}
	return b.Originals
}

// UploadRequest is the caller input for Upload and Edit.
type UploadRequest struct {
	Filename    string
	ContentType string
	FileSize    int64
	Attributes  map[string]any
}

// PresignedRequest is a time-limited URL granting one HTTP method on one object.
type PresignedRequest struct {
	URL       string
	Method    string
	ExpiresAt time.Time
}

// UploadTicket is returned by Upload and Edit.
type UploadTicket struct {
	PhotoID     string
	Key         string
	Request     PresignedRequest
	ExpiresIn   time.Duration
	PreviousKey string // set by Edit when an edited version was replaced
}

// Download is returned by Retrieve.
type Download struct {
	PhotoID     string
	VersionType VersionType
	Request     PresignedRequest
	ExpiresIn   time.Duration
	Photo       Photo
}

type DeletedItem struct {
	Type   VersionType
	Bucket string
	Key    string
}

type DeleteResult struct {
	PhotoID string
	Deleted []DeletedItem
}

// NormalizeContentType trims ct and applies the default for empty input.
func NormalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return DefaultContentType
	}
	return ct
}

// IsJPEG reports whether ct names a JPEG image.
func IsJPEG(ct string) bool {
	switch strings.ToLower(NormalizeContentType(ct)) {
	case "image/jpeg", "image/jpg":
		return true
	default:
		return false
	}
}
