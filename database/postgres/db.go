package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/snapvault"
)

type column struct {
	dataType string
	nullable bool
}

var photoColumnTypes = map[string]column{
	"id":                  {"text", false},
	"user_id":             {"text", false},
	"status":              {"text", false},
	"version_type":        {"text", false},
	"filename":            {"text", false},
	"content_type":        {"text", false},
	"file_size":           {"bigint", false},
	"s3_key":              {"text", false},
	"bucket":              {"text", false},
	"has_edited_version":  {"boolean", false},
	"edited_filename":     {"text", true},
	"edited_content_type": {"text", true},
	"edited_file_size":    {"bigint", true},
	"edited_s3_key":       {"text", true},
	"edited_bucket":       {"text", true},
	"edit_count":          {"integer", true},
	"attributes":          {"jsonb", true},
	"created_at":          {"timestamp with time zone", false},
	"updated_at":          {"timestamp with time zone", false},
}

// ValidateSchema checks that the photos table exists with the expected
// columns and that both owner indexes are in place.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables snapvault.Tables) error {
	table := tables.Photos
	if !snapvault.IsValidTableName(table) {
		return fmt.Errorf("validate schema: invalid table name: %s", table)
	}

	columns, err := readColumns(ctx, pool, table)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
	}
	if len(columns) == 0 {
		return fmt.Errorf("validate schema: table %s does not exist", table)
	}

	indexes, err := readIndexes(ctx, pool, table)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
	}

	var missing, mismatched, missingIndexes []string
	for name, want := range photoColumnTypes {
		got, ok := columns[name]
		switch {
		case !ok:
			missing = append(missing, name)
		case got.dataType != want.dataType:
			mismatched = append(mismatched, fmt.Sprintf("%s: expected %s, got %s", name, want.dataType, got.dataType))
		case got.nullable != want.nullable:
			mismatched = append(mismatched, fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", name, want.nullable, got.nullable))
		}
	}
	for _, idx := range ownerIndexes(tables) {
		if !indexes[idx] {
			missingIndexes = append(missingIndexes, idx)
		}
	}

	if len(missing)+len(mismatched)+len(missingIndexes) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "validate schema: table %s does not match:", table)
	writeProblems(&b, "missing columns", missing)
	writeProblems(&b, "mismatched columns", mismatched)
	writeProblems(&b, "missing indexes", missingIndexes)
	return errors.New(b.String())
}

func ownerIndexes(tables snapvault.Tables) []string {
	return []string{tables.IndexName("user_idx"), tables.IndexName("user_version_idx")}
}

func writeProblems(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sort.Strings(items)
	fmt.Fprintf(b, "\n  %s: %s", label, strings.Join(items, "; "))
}

// readColumns returns nothing for a table that does not exist.
func readColumns(ctx context.Context, pool *pgxpool.Pool, table string) (map[string]column, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, lower(data_type), is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]column)
	for rows.Next() {
		var (
			name string
			c    column
		)
		if err := rows.Scan(&name, &c.dataType, &c.nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = c
	}

	return columns, rows.Err()
}

func readIndexes(ctx context.Context, pool *pgxpool.Pool, table string) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `
		SELECT indexname
		FROM pg_indexes
		WHERE schemaname = current_schema() AND tablename = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	indexes := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		indexes[name] = true
	}

	return indexes, rows.Err()
}
