package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/snapvault"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables snapvault.Tables
}

// Connect establishes a connection to SQLite.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables snapvault.Tables) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// An in-memory database lives only as long as its single connection.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate creates the photos table and its owner indexes.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the MetaDataRepo for database operations.
func (d *database) GetRepo() snapvault.MetaDataRepo {
	return &repo{db: d.db, tableName: d.tables.Photos}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
