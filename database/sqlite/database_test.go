package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestDatabase_MigrateValidate(t *testing.T) {
	ctx := context.Background()
	tables := snapvault.Tables{Photos: "photos"}

	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Ping(ctx))

	assert.Error(t, db.Validate(ctx), "validate before migrate")

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate is idempotent")
	assert.NoError(t, db.Validate(ctx))
}

func TestValidateSchema(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "meta.db")

	raw, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer func() { _ = raw.Close() }()

	t.Run("missing columns", func(t *testing.T) {
		tables := snapvault.Tables{Photos: "partial"}
		_, err := raw.ExecContext(ctx, `CREATE TABLE "partial" (id TEXT NOT NULL PRIMARY KEY, user_id TEXT NOT NULL)`)
		require.NoError(t, err)

		err = sqlite.ValidateSchema(ctx, raw, tables)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing columns")
	})

	t.Run("drop tables", func(t *testing.T) {
		tables := snapvault.Tables{Photos: "dropped"}
		require.NoError(t, sqlite.Migrate(ctx, raw, tables))
		require.NoError(t, sqlite.ValidateSchema(ctx, raw, tables))

		require.NoError(t, sqlite.DropTables(ctx, raw, tables))
		err := sqlite.ValidateSchema(ctx, raw, tables)
		require.Error(t, err)
		assert.Contains(t, err.Error(), fmt.Sprintf("table %s does not exist", tables.Photos))
	})

	t.Run("missing owner index", func(t *testing.T) {
		tables := snapvault.Tables{Photos: "unindexed"}
		require.NoError(t, sqlite.Migrate(ctx, raw, tables))
		_, err := raw.ExecContext(ctx, `DROP INDEX "unindexed_user_version_idx"`)
		require.NoError(t, err)

		err = sqlite.ValidateSchema(ctx, raw, tables)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing index: unindexed_user_version_idx")
		assert.NotContains(t, err.Error(), "unindexed_user_idx")
	})

	t.Run("invalid table name", func(t *testing.T) {
		err := sqlite.ValidateSchema(ctx, raw, snapvault.Tables{Photos: "bad;name"})
		assert.Error(t, err)
	})
}
