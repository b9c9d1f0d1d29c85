// Package sqlite implements the photo metadata repo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/internal"
)

const photoColumns = `id, user_id, status, version_type, filename, content_type, file_size, s3_key, bucket,
	has_edited_version, edited_filename, edited_content_type, edited_file_size, edited_s3_key, edited_bucket,
	edit_count, attributes, created_at, updated_at`

type repo struct {
	db        *sql.DB
	tableName string
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (snapvault.Photo, error) {
	var (
		p                    snapvault.Photo
		status, versionType  string
		hasEdited            bool
		editedFilename       sql.NullString
		editedContentType    sql.NullString
		editedFileSize       sql.NullInt64
		editedKey            sql.NullString
		editedBucket         sql.NullString
		editCount            sql.NullInt64
		attributes           sql.NullString
		createdAt, updatedAt string
	)

	err := row.Scan(
		&p.ID, &p.UserID, &status, &versionType,
		&p.Original.Filename, &p.Original.ContentType, &p.Original.FileSize, &p.Original.Key, &p.Original.Bucket,
		&hasEdited, &editedFilename, &editedContentType, &editedFileSize, &editedKey, &editedBucket,
		&editCount, &attributes, &createdAt, &updatedAt,
	)
	if err != nil {
		return snapvault.Photo{}, err
	}

	p.Status = snapvault.Status(status)
	p.VersionType = snapvault.VersionType(versionType)
	p.HasEditedVersion = hasEdited
	p.EditCount = int(editCount.Int64)

	if hasEdited {
		p.Edited = &snapvault.Asset{
			Filename:    editedFilename.String,
			ContentType: editedContentType.String,
			FileSize:    editedFileSize.Int64,
			Key:         editedKey.String,
			Bucket:      editedBucket.String,
		}
	}

	if attributes.Valid && attributes.String != "" {
		if err := json.Unmarshal([]byte(attributes.String), &p.Attributes); err != nil {
			return snapvault.Photo{}, fmt.Errorf("parse attributes: %w", err)
		}
	}

	if p.CreatedAt, err = internal.ParseTime(createdAt); err != nil {
		return snapvault.Photo{}, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = internal.ParseTime(updatedAt); err != nil {
		return snapvault.Photo{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return p, nil
}

func (r *repo) Get(ctx context.Context, id string) (snapvault.Photo, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE id = ?`, photoColumns, quoteIdentifier(r.tableName))

	p, err := scanPhoto(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`, quoteIdentifier(r.tableName))

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.UserID, string(p.Status), string(p.VersionType),
		p.Original.Filename, p.Original.ContentType, p.Original.FileSize, p.Original.Key, p.Original.Bucket,
		attributes, internal.FormatTime(p.CreatedAt), internal.FormatTime(p.UpdatedAt),
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
		SET edited_filename = ?, edited_content_type = ?, edited_file_size = ?, edited_s3_key = ?, edited_bucket = ?,
			edit_count = CASE
				WHEN edited_s3_key IS NULL OR edited_s3_key = '' THEN 1
				ELSE COALESCE(edit_count, 0) + 1
			END,
			has_edited_version = 1,
			version_type = ?,
			updated_at = ?
		WHERE id = ?
		RETURNING %s`, quoteIdentifier(r.tableName), photoColumns)

	p, err := scanPhoto(r.db.QueryRowContext(ctx, query,
		edited.Filename, edited.ContentType, edited.FileSize, edited.Key, edited.Bucket,
		string(snapvault.VersionEdited), internal.FormatTime(updatedAt), id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapvault.Photo{}, snapvault.ErrNotFound
		}
		return snapvault.Photo{}, fmt.Errorf("update edited: %w", err)
	}

	return p, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
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

	conditions := []string{"user_id = ?"}
	args := []any{q.UserID}

	if q.VersionType != "" {
		conditions = append(conditions, "version_type = ?")
		args = append(args, string(q.VersionType))
	}

	if q.Cursor != "" {
		conditions = append(conditions, "(created_at, id) < (?, ?)")
		args = append(args, internal.FormatTime(cursor.CreatedAt), cursor.ID)
	}

	args = append(args, q.Limit+1)

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, photoColumns, quoteIdentifier(r.tableName), strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return snapvault.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
		// Cursor points to the last item of the current page
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
