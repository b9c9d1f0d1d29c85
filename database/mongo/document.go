package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sagarc03/snapvault"
)

type document struct {
	ID                string    `bson:"_id"`
	UserID            string    `bson:"user_id"`
	Status            string    `bson:"status"`
	VersionType       string    `bson:"version_type"`
	Filename          string    `bson:"filename"`
	ContentType       string    `bson:"content_type"`
	FileSize          int64     `bson:"file_size"`
	S3Key             string    `bson:"s3_key"`
	Bucket            string    `bson:"bucket"`
	HasEditedVersion  bool      `bson:"has_edited_version"`
	EditedFilename    string    `bson:"edited_filename,omitempty"`
	EditedContentType string    `bson:"edited_content_type,omitempty"`
	EditedFileSize    int64     `bson:"edited_file_size,omitempty"`
	EditedS3Key       string    `bson:"edited_s3_key,omitempty"`
	EditedBucket      string    `bson:"edited_bucket,omitempty"`
	EditCount         int       `bson:"edit_count,omitempty"`
	Attributes        bson.M    `bson:"attributes,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func toDocument(p snapvault.Photo) document {
	doc := document{
		ID:               p.ID,
		UserID:           p.UserID,
		Status:           string(p.Status),
		VersionType:      string(p.VersionType),
		Filename:         p.Original.Filename,
		ContentType:      p.Original.ContentType,
		FileSize:         p.Original.FileSize,
		S3Key:            p.Original.Key,
		Bucket:           p.Original.Bucket,
		HasEditedVersion: p.HasEditedVersion,
		EditCount:        p.EditCount,
		CreatedAt:        p.CreatedAt.UTC(),
		UpdatedAt:        p.UpdatedAt.UTC(),
	}

	if len(p.Attributes) > 0 {
		doc.Attributes = bson.M(p.Attributes)
	}

	if p.Edited != nil {
		doc.EditedFilename = p.Edited.Filename
		doc.EditedContentType = p.Edited.ContentType
		doc.EditedFileSize = p.Edited.FileSize
		doc.EditedS3Key = p.Edited.Key
		doc.EditedBucket = p.Edited.Bucket
	}

	return doc
}

func (doc document) photo() snapvault.Photo {
	p := snapvault.Photo{
		ID:               doc.ID,
		UserID:           doc.UserID,
		Status:           snapvault.Status(doc.Status),
		VersionType:      snapvault.VersionType(doc.VersionType),
		CreatedAt:        doc.CreatedAt.UTC(),
		UpdatedAt:        doc.UpdatedAt.UTC(),
		HasEditedVersion: doc.HasEditedVersion,
		EditCount:        doc.EditCount,
		Original: snapvault.Asset{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			FileSize:    doc.FileSize,
			Key:         doc.S3Key,
			Bucket:      doc.Bucket,
		},
	}

	if doc.HasEditedVersion {
		p.Edited = &snapvault.Asset{
			Filename:    doc.EditedFilename,
			ContentType: doc.EditedContentType,
			FileSize:    doc.EditedFileSize,
			Key:         doc.EditedS3Key,
			Bucket:      doc.EditedBucket,
		}
	}

	if len(doc.Attributes) > 0 {
		p.Attributes = make(map[string]any, len(doc.Attributes))
		for k, v := range doc.Attributes {
			p.Attributes[k] = normalize(v)
		}
	}

	return p
}

// normalize converts decoded BSON values into plain Go values so they
// encode to JSON the same way values from the other backends do.
func normalize(v any) any {
	switch val := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(val))
		for k, e := range val {
			m[k] = normalize(e)
		}
		return m
	case primitive.A:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalize(e)
		}
		return out
	case int32:
		return int64(val)
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Decimal128:
		return val.String()
	case primitive.ObjectID:
		return val.Hex()
	default:
		return v
	}
}
