// Package postgres implements the photo metadata repo using PostgreSQL
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/internal"
)

const photoColumns = `id, user_id, status, version_type, filename, content_type, file_size, s3_key, bucket,
	has_edited_version, edited_filename, edited_content_type, edited_file_size, edited_s3_key, edited_bucket,
	edit_count, attributes, created_at, updated_at`

type repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func scanPhoto(row pgx.Row) (snapvault.Photo, error) {
	var (
		p                 snapvault.Photo
		status            string
		versionType       string
		editedFilename    *string
		editedContentType *string
		editedFileSize    *int64
		editedKey         *string
		editedBucket      *string
		editCount         *int32
		attributes        []byte
	)

	err := row.Scan(
		&p.ID, &p.UserID, &status, &versionType,
		&p.Original.Filename, &p.Original.ContentType, &p.Original.FileSize, &p.Original.Key, &p.Original.Bucket,
		&p.HasEditedVersion, &editedFilename, &editedContentType, &editedFileSize, &editedKey, &editedBucket,
		&editCount, &attributes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return snapvault.Photo{}, err
	}

	p.Status = snapvault.Status(status)
	p.VersionType = snapvault.VersionType(versionType)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	if editCount != nil {
		p.EditCount = int(*editCount)
	}

	if p.HasEditedVersion {
		p.Edited = &snapvault.Asset{
			Filename:    deref(editedFilename),
			ContentType: deref(editedContentType),
			Key:         deref(editedKey),
			Bucket:      deref(editedBucket),
		}
		if editedFileSize != nil {
			p.Edited.FileSize = *editedFileSize
		}
	}

	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &p.Attributes); err != nil {
			return snapvault.Photo{}, fmt.Errorf("parse attributes: %w", err)
		}
	}

	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *repo) Get(ctx context.Context, id string) (snapvault.Photo, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE id = $1`, photoColumns, pgx.Identifier{r.tableName}.Sanitize())

	p, err := scanPhoto(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snapvault.Photo{}, snapvault.ErrNotFound
		}
		return snapvault.Photo{}, fmt.Errorf("get: %w", err)
	}

	return p, nil
}

func (r *repo) Create(ctx context.Context, p snapvault.Photo) error {
	attributes, err := encodeAttributes(p.Attributes)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, user_id, status, version_type, filename, content_type, file_size, s3_key, bucket,
			has_edited_version, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10::jsonb, $11, $12)`,
		pgx.Identifier{r.tableName}.Sanitize())

	_, err = r.pool.Exec(ctx, query,
		p.ID, p.UserID, string(p.Status), string(p.VersionType),
		p.Original.Filename, p.Original.ContentType, p.Original.FileSize, p.Original.Key, p.Original.Bucket,
		attributes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	return nil
}

func (r *repo) UpdateEdited(ctx context.Context, id string, edited snapvault.Asset, updatedAt time.Time) (snapvault.Photo, error) {
	// Right-hand sides read the pre-update row, which keeps the counter
	// decision and the write in one statement.
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET edited_filename = $1, edited_content_type = $2, edited_file_size = $3, edited_s3_key = $4, edited_bucket = $5,
			edit_count = CASE
				WHEN edited_s3_key IS NULL OR edited_s3_key = '' THEN 1
				ELSE COALESCE(edit_count, 0) + 1
			END,
			has_edited_version = TRUE,
			version_type = $6,
			updated_at = $7
		WHERE id = $8
		RETURNING %s`, pgx.Identifier{r.tableName}.Sanitize(), photoColumns)

	p, err := scanPhoto(r.pool.QueryRow(ctx, query,
		edited.Filename, edited.ContentType, edited.FileSize, edited.Key, edited.Bucket,
		string(snapvault.VersionEdited), updatedAt, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snapvault.Photo{}, snapvault.ErrNotFound
		}
		return snapvault.Photo{}, fmt.Errorf("update edited: %w", err)
	}

	return p, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pgx.Identifier{r.tableName}.Sanitize()) //nolint:gosec // table name is validated

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
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

	conditions := []string{"user_id = $1"}
	args := []any{q.UserID}

	if q.VersionType != "" {
		args = append(args, string(q.VersionType))
		conditions = append(conditions, fmt.Sprintf("version_type = $%d", len(args)))
	}

	if q.Cursor != "" {
		args = append(args, cursor.CreatedAt, cursor.ID)
		conditions = append(conditions, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, q.Limit+1)

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, photoColumns, pgx.Identifier{r.tableName}.Sanitize(), strings.Join(conditions, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return snapvault.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]snapvault.Photo, 0, q.Limit)
	for rows.Next() {
		p, scanErr := scanPhoto(rows)
		if scanErr != nil {
			return snapvault.ListResult{}, fmt.Errorf("list: scan: %w", scanErr)
		}
		items = append(items, p)
	}

	if err := rows.Err(); err != nil {
		return snapvault.ListResult{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > q.Limit {
		lastItem := items[q.Limit-1]
		nextCursor = internal.EncodeCursor(lastItem.CreatedAt, lastItem.ID)
		items = items[:q.Limit]
	}

	return snapvault.ListResult{Items: items, ScannedCount: len(items), NextCursor: nextCursor}, nil
}

func encodeAttributes(attrs map[string]any) (any, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	return string(data), nil
}
