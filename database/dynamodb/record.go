package dynamodb

import (
	"fmt"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/internal"
)

// record is the item layout of the photos table.
type record struct {
	PhotoID           string         `dynamodbav:"photo_id"`
	UserID            string         `dynamodbav:"user_id"`
	UserVersion       string         `dynamodbav:"user_version"`
	CreatedKey        string         `dynamodbav:"created_key"`
	Status            string         `dynamodbav:"status"`
	VersionType       string         `dynamodbav:"version_type"`
	Filename          string         `dynamodbav:"filename"`
	ContentType       string         `dynamodbav:"content_type"`
	FileSize          int64          `dynamodbav:"file_size"`
	S3Key             string         `dynamodbav:"s3_key"`
	Bucket            string         `dynamodbav:"bucket"`
	HasEditedVersion  bool           `dynamodbav:"has_edited_version"`
	EditedFilename    string         `dynamodbav:"edited_filename,omitempty"`
	EditedContentType string         `dynamodbav:"edited_content_type,omitempty"`
	EditedFileSize    int64          `dynamodbav:"edited_file_size,omitempty"`
	EditedS3Key       string         `dynamodbav:"edited_s3_key,omitempty"`
	EditedBucket      string         `dynamodbav:"edited_bucket,omitempty"`
	EditCount         int            `dynamodbav:"edit_count,omitempty"`
	Attributes        map[string]any `dynamodbav:"attributes,omitempty"`
	CreatedAt         string         `dynamodbav:"created_at"`
	UpdatedAt         string         `dynamodbav:"updated_at"`
}

// userVersion is the partition key of the owner+version index.
func userVersion(userID string, v snapvault.VersionType) string {
	return userID + "#" + string(v)
}

// createdKey sorts newest-first listings by creation time, then photo ID.
func createdKey(p snapvault.Photo) string {
	return internal.FormatTime(p.CreatedAt) + "#" + p.ID
}

func toRecord(p snapvault.Photo) record {
	rec := record{
		PhotoID:          p.ID,
		UserID:           p.UserID,
		UserVersion:      userVersion(p.UserID, p.VersionType),
		CreatedKey:       createdKey(p),
		Status:           string(p.Status),
		VersionType:      string(p.VersionType),
		Filename:         p.Original.Filename,
		ContentType:      p.Original.ContentType,
		FileSize:         p.Original.FileSize,
		S3Key:            p.Original.Key,
		Bucket:           p.Original.Bucket,
		HasEditedVersion: p.HasEditedVersion,
		EditCount:        p.EditCount,
		Attributes:       p.Attributes,
		CreatedAt:        internal.FormatTime(p.CreatedAt),
		UpdatedAt:        internal.FormatTime(p.UpdatedAt),
	}

	if p.Edited != nil {
		rec.EditedFilename = p.Edited.Filename
		rec.EditedContentType = p.Edited.ContentType
		rec.EditedFileSize = p.Edited.FileSize
		rec.EditedS3Key = p.Edited.Key
		rec.EditedBucket = p.Edited.Bucket
	}

	return rec
}

func (rec record) photo() (snapvault.Photo, error) {
	p := snapvault.Photo{
		ID:               rec.PhotoID,
		UserID:           rec.UserID,
		Status:           snapvault.Status(rec.Status),
		VersionType:      snapvault.VersionType(rec.VersionType),
		HasEditedVersion: rec.HasEditedVersion,
		EditCount:        rec.EditCount,
		Attributes:       rec.Attributes,
		Original: snapvault.Asset{
			Filename:    rec.Filename,
			ContentType: rec.ContentType,
			FileSize:    rec.FileSize,
			Key:         rec.S3Key,
			Bucket:      rec.Bucket,
		},
	}

	if rec.HasEditedVersion {
		p.Edited = &snapvault.Asset{
			Filename:    rec.EditedFilename,
			ContentType: rec.EditedContentType,
			FileSize:    rec.EditedFileSize,
			Key:         rec.EditedS3Key,
			Bucket:      rec.EditedBucket,
		}
	}

	var err error
	if p.CreatedAt, err = internal.ParseTime(rec.CreatedAt); err != nil {
		return snapvault.Photo{}, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = internal.ParseTime(rec.UpdatedAt); err != nil {
		return snapvault.Photo{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return p, nil
}
