package clientcli

import "time"

// UploadOptions configures an upload or edit operation.
type UploadOptions struct {
	LocalPath   string
	ContentType string // optional, auto-detect if empty
	Description string
	Tags        []string
	Geolocation map[string]any
	CameraInfo  map[string]any
	Recursive   bool // upload every image under LocalPath
}

// UploadResult represents the result of uploading one file.
type UploadResult struct {
	LocalPath       string    `json:"local_path"`
	PhotoID         string    `json:"photo_id"`
	Key             string    `json:"s3_key"`
	ContentType     string    `json:"content_type"`
	Size            int64     `json:"size_bytes"`
	ETag            string    `json:"etag,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
	PreviousVersion string    `json:"previous_version,omitempty"`
	Err             error     `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	PhotoID   string
	Version   string // "original" or "edited", empty lets the server pick
	LocalPath string // empty = server filename, "-" = stdout
}

// DownloadResult represents the result of downloading a photo.
type DownloadResult struct {
	PhotoID     string `json:"photo_id"`
	VersionType string `json:"version_type"`
	Filename    string `json:"filename"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	PhotoIDs []string
}

// DeleteResult represents the result of deleting a single photo.
type DeleteResult struct {
	PhotoID      string        `json:"photo_id"`
	Deleted      bool          `json:"deleted"`
	DeletedItems []DeletedItem `json:"deleted_items,omitempty"`
	Err          error         `json:"-"` // nil on success
}

// DeletedItem is one stored object removed by a delete.
type DeletedItem struct {
	Type   string `json:"type"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ListOptions configures a list operation.
type ListOptions struct {
	VersionType string
	Limit       int
	Cursor      string
	All         bool // auto-paginate through all results
}

// ListResult contains paginated list results.
type ListResult struct {
	Photos     []PhotoInfo `json:"photos"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// PhotoInfo is the summary of a photo returned by list.
type PhotoInfo struct {
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

// AssetInfo describes one stored version of a photo.
type AssetInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
	Key         string `json:"s3_key"`
	Bucket      string `json:"bucket"`
	EditCount   int    `json:"edit_count,omitempty"`
}

// PhotoMetadata is the full metadata record of a photo.
type PhotoMetadata struct {
	PhotoID     string         `json:"photo_id"`
	UserID      string         `json:"user_id"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Original    AssetInfo      `json:"original"`
	Edited      *AssetInfo     `json:"edited"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Geolocation map[string]any `json:"geolocation,omitempty"`
	CameraInfo  map[string]any `json:"camera_info,omitempty"`
}

// TotalSize calculates the total original size of all photos in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for i := range r.Photos {
		total += r.Photos[i].FileSize
	}
	return total
}

// uploadBody is the JSON body of POST /photos and PUT /photos/{id}.
type uploadBody struct {
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	FileSize    int64          `json:"file_size"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Geolocation map[string]any `json:"geolocation,omitempty"`
	CameraInfo  map[string]any `json:"camera_info,omitempty"`
}

// serverUpload mirrors the server's presigned upload response.
type serverUpload struct {
	PhotoID         string    `json:"photo_id"`
	UploadURL       string    `json:"upload_url"`
	UploadMethod    string    `json:"upload_method"`
	ExpiresAt       time.Time `json:"expires_at"`
	S3Key           string    `json:"s3_key"`
	PreviousVersion string    `json:"previous_version,omitempty"`
}

// serverDownload mirrors the server's presigned download response.
type serverDownload struct {
	PhotoID     string `json:"photo_id"`
	VersionType string `json:"version_type"`
	DownloadURL string `json:"download_url"`
	Metadata    struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
	} `json:"metadata"`
}

// serverList mirrors the server's list response.
type serverList struct {
	Photos           []PhotoInfo `json:"photos"`
	LastEvaluatedKey string      `json:"last_evaluated_key,omitempty"`
	HasMore          bool        `json:"has_more"`
}

// serverDelete mirrors the server's delete response.
type serverDelete struct {
	PhotoID      string        `json:"photo_id"`
	DeletedItems []DeletedItem `json:"deleted_items"`
}

// serverError mirrors the server's error body.
type serverError struct {
	Error string `json:"error"`
}
