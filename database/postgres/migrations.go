package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/snapvault"
)

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, pool *pgxpool.Pool) error
	Down      func(ctx context.Context, pool *pgxpool.Pool) error
}

func getTableMigrations(tables snapvault.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Photos,
			Up:        createPhotosTable(tables),
			Down:      dropTable(tables.Photos),
		},
	}
}

func Migrate(ctx context.Context, pool *pgxpool.Pool, tables snapvault.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, pool); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}
	return nil
}

func DropTables(ctx context.Context, pool *pgxpool.Pool, tables snapvault.Tables) error {
	migrations := getTableMigrations(tables)
	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, pool); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}
	return nil
}

func createPhotosTable(tables snapvault.Tables) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		quotedTable := pgx.Identifier{tables.Photos}.Sanitize()
		indexUser := pgx.Identifier{tables.IndexName("user_idx")}.Sanitize()
		indexUserVersion := pgx.Identifier{tables.IndexName("user_version_idx")}.Sanitize()

		sql := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				status TEXT NOT NULL,
				version_type TEXT NOT NULL,
				filename TEXT NOT NULL,
				content_type TEXT NOT NULL,
				file_size BIGINT NOT NULL,
				s3_key TEXT NOT NULL,
				bucket TEXT NOT NULL,
				has_edited_version BOOLEAN NOT NULL DEFAULT FALSE,
				edited_filename TEXT,
				edited_content_type TEXT,
				edited_file_size BIGINT,
				edited_s3_key TEXT,
				edited_bucket TEXT,
				edit_count INTEGER,
				attributes JSONB,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (user_id, created_at DESC, id DESC);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (user_id, version_type, created_at DESC, id DESC);
		`,
			quotedTable,
			indexUser, quotedTable,
			indexUserVersion, quotedTable,
		)

		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("create photos table: %w", err)
		}
		return nil
	}
}

func dropTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{tableName}.Sanitize())
		_, err := pool.Exec(ctx, sql)
		return err
	}
}
