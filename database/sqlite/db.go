package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

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
	"file_size":           {"integer", false},
	"s3_key":              {"text", false},
	"bucket":              {"text", false},
	"has_edited_version":  {"integer", false},
	"edited_filename":     {"text", true},
	"edited_content_type": {"text", true},
	"edited_file_size":    {"integer", true},
	"edited_s3_key":       {"text", true},
	"edited_bucket":       {"text", true},
	"edit_count":          {"integer", true},
	"attributes":          {"text", true},
	"created_at":          {"text", false},
	"updated_at":          {"text", false},
}

// ValidateSchema checks the photos table columns and owner indexes.
func ValidateSchema(ctx context.Context, db *sql.DB, tables snapvault.Tables) error {
	table := tables.Photos
	if !snapvault.IsValidTableName(table) {
		return fmt.Errorf("validate schema: invalid table name: %s", table)
	}

	columns, err := readColumns(ctx, db, table)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
	}
	if len(columns) == 0 {
		return fmt.Errorf("validate schema: table %s does not exist", table)
	}

	indexes, err := readIndexes(ctx, db, table)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
	}

	var problems []string
	var missing []string
	for name, want := range photoColumnTypes {
		got, ok := columns[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if got != want {
			problems = append(problems, fmt.Sprintf("%s: expected %s nullable=%v, got %s nullable=%v",
				name, want.dataType, want.nullable, got.dataType, got.nullable))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		problems = append(problems, "missing columns: "+strings.Join(missing, ", "))
	}
	for _, idx := range []string{tables.IndexName("user_idx"), tables.IndexName("user_version_idx")} {
		if !indexes[idx] {
			problems = append(problems, "missing index: "+idx)
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("validate schema: table %s does not match:\n  %s", table, strings.Join(problems, "\n  "))
	}

	return nil
}

func readColumns(ctx context.Context, db *sql.DB, table string) (map[string]column, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, lower(type), "notnull" = 0 FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

func readIndexes(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ?`, table)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
