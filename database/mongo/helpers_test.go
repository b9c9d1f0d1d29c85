package mongo_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/mongo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testURI     string
	testURIOnce sync.Once
)

// getSharedURI starts one MongoDB container for the package.
func getSharedURI(t *testing.T) string {
	t.Helper()

	testURIOnce.Do(func() {
		ctx := context.Background()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo:7",
				ExposedPorts: []string{"27017/tcp"},
				WaitingFor:   wait.ForLog("Waiting for connections"),
			},
			Started: true,
		})
		if err != nil {
			t.Fatalf("failed to start mongo container: %v", err)
		}

		endpoint, err := container.PortEndpoint(ctx, "27017/tcp", "mongodb")
		if err != nil {
			_ = testcontainers.TerminateContainer(container)
			t.Fatalf("failed to get endpoint: %v", err)
		}

		testURI = endpoint
	})

	if testURI == "" {
		t.Fatal("shared mongo container is not available")
	}

	return testURI
}

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a repo over a uniquely named collection.
func setupTestRepo(t *testing.T) snapvault.MetaDataRepo {
	t.Helper()
	ctx := context.Background()

	tables := snapvault.Tables{Photos: "photos_" + getRandomString(t)}

	db, err := mongo.Connect(ctx, getSharedURI(t), "snapvault_test", tables)
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
