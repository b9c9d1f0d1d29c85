package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/snapvault"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, db *sql.DB) error
	Down      func(ctx context.Context, db *sql.DB) error
}

// getTableMigrations returns all table migrations for the app
func getTableMigrations(tables snapvault.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Photos,
			Up:        createPhotosTable(tables),
			Down:      dropTable(tables.Photos),
		},
	}
}

func Migrate(ctx context.Context, db *sql.DB, tables snapvault.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, db); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}
	return nil
}

func DropTables(ctx context.Context, db *sql.DB, tables snapvault.Tables) error {
	migrations := getTableMigrations(tables)
	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, db); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}
	return nil
}

func createPhotosTable(tables snapvault.Tables) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tables.Photos)
		indexUser := quoteIdentifier(tables.IndexName("user_idx"))
		indexUserVersion := quoteIdentifier(tables.IndexName("user_version_idx"))

		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT NOT NULL PRIMARY KEY,
				user_id TEXT NOT NULL,
				status TEXT NOT NULL,
				version_type TEXT NOT NULL,
				filename TEXT NOT NULL,
				content_type TEXT NOT NULL,
				file_size INTEGER NOT NULL,
				s3_key TEXT NOT NULL,
				bucket TEXT NOT NULL,
				has_edited_version INTEGER NOT NULL DEFAULT 0,
				edited_filename TEXT,
				edited_content_type TEXT,
				edited_file_size INTEGER,
				edited_s3_key TEXT,
				edited_bucket TEXT,
				edit_count INTEGER,
				attributes TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)
		`, quotedTable)

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		indexSQL := fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s ON %s (user_id, created_at DESC, id DESC)
		`, indexUser, quotedTable)
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index user: %w", err)
		}

		indexSQL = fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s ON %s (user_id, version_type, created_at DESC, id DESC)
		`, indexUserVersion, quotedTable)
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index user_version: %w", err)
		}

		return nil
	}
}

func dropTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tableName))
		_, err := db.ExecContext(ctx, dropSQL)
		return err
	}
}
