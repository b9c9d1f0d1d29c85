package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/internal"
)

type repo struct {
	col *driver.Collection
}

func (r *repo) Get(ctx context.Context, id string) (snapvault.Photo, error) {
	var doc document
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return snapvault.Photo{}, snapvault.ErrNotFound
		}
		return snapvault.Photo{}, fmt.Errorf("get: %w", err)
	}

	return doc.photo(), nil
}

func (r *repo) Create(ctx context.Context, p snapvault.Photo) error {
	if _, err := r.col.InsertOne(ctx, toDocument(p)); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

// UpdateEdited uses an aggregation pipeline update so the counter reads the
// pre-update edited key within the same single-document write.
func (r *repo) UpdateEdited(ctx context.Context, id string, edited snapvault.Asset, updatedAt time.Time) (snapvault.Photo, error) {
	update := driver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "edit_count", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$ne", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$edited_s3_key", ""}}}, ""}}},
				bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$edit_count", 0}}}, 1}}},
				1,
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "edited_filename", Value: edited.Filename},
			{Key: "edited_content_type", Value: edited.ContentType},
			{Key: "edited_file_size", Value: edited.FileSize},
			{Key: "edited_s3_key", Value: edited.Key},
			{Key: "edited_bucket", Value: edited.Bucket},
			{Key: "has_edited_version", Value: true},
			{Key: "version_type", Value: string(snapvault.VersionEdited)},
			{Key: "updated_at", Value: updatedAt.UTC()},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc document
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return snapvault.Photo{}, snapvault.ErrNotFound
		}
		return snapvault.Photo{}, fmt.Errorf("update edited: %w", err)
	}

	return doc.photo(), nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (r *repo) List(ctx context.Context, q snapvault.ListQuery) (snapvault.ListResult, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return snapvault.ListResult{}, fmt.Errorf("list: %w", err)
	}

	if q.Limit <= 0 {
		q.Limit = snapvault.DefaultListLimit
	}

	filter := bson.D{{Key: "user_id", Value: q.UserID}}
	if q.VersionType != "" {
		filter = append(filter, bson.E{Key: "version_type", Value: string(q.VersionType)})
	}
	if q.Cursor != "" {
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: cursor.CreatedAt}}}},
			bson.D{{Key: "created_at", Value: cursor.CreatedAt}, {Key: "_id", Value: bson.D{{Key: "$lt", Value: cursor.ID}}}},
		}})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(q.Limit + 1))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return snapvault.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	items := make([]snapvault.Photo, 0, q.Limit)
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return snapvault.ListResult{}, fmt.Errorf("list: decode: %w", err)
		}
		items = append(items, doc.photo())
	}

	if err := cur.Err(); err != nil {
		return snapvault.ListResult{}, fmt.Errorf("list: cursor: %w", err)
	}

	var nextCursor string
	if len(items) > q.Limit {
		lastItem := items[q.Limit-1]
		nextCursor = internal.EncodeCursor(lastItem.CreatedAt, lastItem.ID)
		items = items[:q.Limit]
	}

	return snapvault.ListResult{Items: items, ScannedCount: len(items), NextCursor: nextCursor}, nil
}
