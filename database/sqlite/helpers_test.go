package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a repo with a unique table name for test isolation
func setupTestRepo(t *testing.T) snapvault.MetaDataRepo {
	t.Helper()
	ctx := context.Background()

	tables := snapvault.Tables{Photos: fmt.Sprintf("photos_%s", getRandomString(t))}

	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	return db.GetRepo()
}

func newPhoto(id, owner string, createdAt time.Time) snapvault.Photo {
	return snapvault.Photo{
		ID:          id,
		UserID:      owner,
		Status:      snapvault.StatusPendingUpload,
		VersionType: snapvault.VersionOriginal,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		Original: snapvault.Asset{
			Filename:    id + ".jpg",
			ContentType: "image/jpeg",
			FileSize:    6 << 20,
			Key:         owner + "/originals/" + id + "/" + id + ".jpg",
			Bucket:      "originals",
		},
	}
}
