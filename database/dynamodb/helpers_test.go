package dynamodb_test

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
	"github.com/sagarc03/snapvault/database/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testEndpoint     string
	testEndpointOnce sync.Once
)

// getSharedEndpoint starts one DynamoDB Local container for the package.
func getSharedEndpoint(t *testing.T) string {
	t.Helper()

	testEndpointOnce.Do(func() {
		ctx := context.Background()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "amazon/dynamodb-local:2.5.2",
				ExposedPorts: []string{"8000/tcp"},
				Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
				WaitingFor:   wait.ForListeningPort("8000/tcp"),
			},
			Started: true,
		})
		if err != nil {
			t.Fatalf("failed to start dynamodb container: %v", err)
		}

		endpoint, err := container.PortEndpoint(ctx, "8000/tcp", "http")
		if err != nil {
			_ = testcontainers.TerminateContainer(container)
			t.Fatalf("failed to get endpoint: %v", err)
		}

		testEndpoint = endpoint
	})

	if testEndpoint == "" {
		t.Fatal("shared dynamodb container is not available")
	}

	return testEndpoint
}

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

func testOptions(t *testing.T) dynamodb.Options {
	t.Helper()
	return dynamodb.Options{
		Region:    "us-east-1",
		Endpoint:  getSharedEndpoint(t),
		AccessKey: "local",
		SecretKey: "local",
	}
}

// setupTestRepo creates a table with a unique name for test isolation.
func setupTestRepo(t *testing.T) snapvault.MetaDataRepo {
	t.Helper()
	ctx := context.Background()

	tables := snapvault.Tables{Photos: "photos_" + getRandomString(t)}

	db, err := dynamodb.Connect(ctx, testOptions(t), tables)
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
