package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/internal"
)

type repo struct {
	client    API
	tableName string
}

func photoKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"photo_id": &types.AttributeValueMemberS{Value: id},
	}
}

func decodePhoto(item map[string]types.AttributeValue) (snapvault.Photo, error) {
	var rec record
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return snapvault.Photo{}, fmt.Errorf("unmarshal item: %w", err)
	}
	return rec.photo()
}

func (r *repo) Get(ctx context.Context, id string) (snapvault.Photo, error) {
	out, err := r.client.GetItem(ctx, &ddb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            photoKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return snapvault.Photo{}, fmt.Errorf("get: %w", err)
	}

	if len(out.Item) == 0 {
		return snapvault.Photo{}, snapvault.ErrNotFound
	}

	p, err := decodePhoto(out.Item)
	if err != nil {
		return snapvault.Photo{}, fmt.Errorf("get: %w", err)
	}

	return p, nil
}

func (r *repo) Create(ctx context.Context, p snapvault.Photo) error {
	item, err := attributevalue.MarshalMap(toRecord(p))
	if err != nil {
		return fmt.Errorf("create: marshal item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &ddb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(photo_id)"),
	})
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	return nil
}

// UpdateEdited writes the edited version in one UpdateItem. The only read
// beforehand fetches the owner, which never changes, to rebuild the
// owner+version index key. Concurrent edits are last write wins.
func (r *repo) UpdateEdited(ctx context.Context, id string, edited snapvault.Asset, updatedAt time.Time) (snapvault.Photo, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, snapvault.ErrNotFound) {
			return snapvault.Photo{}, err
		}
		return snapvault.Photo{}, fmt.Errorf("update edited: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &ddb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       photoKey(id),
		UpdateExpression: aws.String("SET edited_filename = :filename, edited_content_type = :content_type, " +
			"edited_file_size = :file_size, edited_s3_key = :key, edited_bucket = :bucket, " +
			"has_edited_version = :true, version_type = :version, user_version = :user_version, " +
			"updated_at = :updated_at, edit_count = if_not_exists(edit_count, :zero) + :one"),
		ConditionExpression: aws.String("attribute_exists(photo_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":filename":     &types.AttributeValueMemberS{Value: edited.Filename},
			":content_type": &types.AttributeValueMemberS{Value: edited.ContentType},
			":file_size":    &types.AttributeValueMemberN{Value: strconv.FormatInt(edited.FileSize, 10)},
			":key":          &types.AttributeValueMemberS{Value: edited.Key},
			":bucket":       &types.AttributeValueMemberS{Value: edited.Bucket},
			":version":      &types.AttributeValueMemberS{Value: string(snapvault.VersionEdited)},
			":user_version": &types.AttributeValueMemberS{Value: userVersion(current.UserID, snapvault.VersionEdited)},
			":updated_at":   &types.AttributeValueMemberS{Value: internal.FormatTime(updatedAt)},
			":true":         &types.AttributeValueMemberBOOL{Value: true},
			":zero":         &types.AttributeValueMemberN{Value: "0"},
			":one":          &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return snapvault.Photo{}, snapvault.ErrNotFound
		}
		return snapvault.Photo{}, fmt.Errorf("update edited: %w", err)
	}

	p, err := decodePhoto(out.Attributes)
	if err != nil {
		return snapvault.Photo{}, fmt.Errorf("update edited: %w", err)
	}

	return p, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &ddb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       photoKey(id),
	})
	if err != nil {
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

	indexName, hashName, hashValue := UserIDIndex, "user_id", q.UserID
	if q.VersionType != "" {
		indexName, hashName, hashValue = UserVersionIndex, "user_version", userVersion(q.UserID, q.VersionType)
	}

	input := &ddb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#hash = :hash"),
		ExpressionAttributeNames: map[string]string{
			"#hash": hashName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":hash": &types.AttributeValueMemberS{Value: hashValue},
		},
		ScanIndexForward: aws.Bool(false),
	}

	if q.Cursor != "" {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"photo_id":    &types.AttributeValueMemberS{Value: cursor.ID},
			hashName:      &types.AttributeValueMemberS{Value: hashValue},
			"created_key": &types.AttributeValueMemberS{Value: internal.FormatTime(cursor.CreatedAt) + "#" + cursor.ID},
		}
	}

	// One extra item tells whether another page exists.
	want := q.Limit + 1
	items := make([]snapvault.Photo, 0, want)
	scanned := 0

	for len(items) < want {
		input.Limit = aws.Int32(int32(want - len(items))) //nolint:gosec // bounded by MaxListLimit

		out, err := r.client.Query(ctx, input)
		if err != nil {
			return snapvault.ListResult{}, fmt.Errorf("list: %w", err)
		}

		scanned += int(out.ScannedCount)

		for _, item := range out.Items {
			p, err := decodePhoto(item)
			if err != nil {
				return snapvault.ListResult{}, fmt.Errorf("list: %w", err)
			}
			items = append(items, p)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	var nextCursor string
	if len(items) > q.Limit {
		lastItem := items[q.Limit-1]
		nextCursor = internal.EncodeCursor(lastItem.CreatedAt, lastItem.ID)
		items = items[:q.Limit]
		scanned--
	}

	return snapvault.ListResult{Items: items, ScannedCount: scanned, NextCursor: nextCursor}, nil
}
