// +build integration

package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitechdev/specgateway/pkg/audit"
	"github.com/bitechdev/specgateway/pkg/authz"
	"github.com/bitechdev/specgateway/pkg/entity"
	"github.com/bitechdev/specgateway/pkg/specdoc"
)

func setupTestMongo(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+host+":"+port.Port()))
	require.NoError(t, err)

	return client.Database("gateway_test"), func() {
		_ = client.Disconnect(ctx)
		_ = container.Terminate(ctx)
	}
}

func TestAdapter_PostGetPutRoundTrip(t *testing.T) {
	db, teardown := setupTestMongo(t)
	defer teardown()

	adapter := New(db, audit.NoopWriter{})
	ctx := context.Background()

	dbKeys := specdoc.ProjectionTree{
		"name": {IsLeaf: true, Target: []string{"name"}, Type: "string"},
	}
	resKeys := specdoc.ProjectionTree{
		"id":   {IsLeaf: true, Target: []string{"id"}},
		"name": {IsLeaf: true, Target: []string{"name"}, Type: "string"},
	}

	created, err := adapter.PostSingle(ctx, "users", []byte(`{"name":"alice"}`), dbKeys, resKeys, "id")
	require.NoError(t, err)
	require.NotNil(t, created)
	id, ok := created["id"].(string)
	require.True(t, ok)

	fetched, err := adapter.GetSingle(ctx, "users", entity.KeyFromString(id), dbKeys, resKeys, "id", nil, authz.Principal{})
	require.NoError(t, err)
	assert.Equal(t, "alice", fetched["name"])

	updated, err := adapter.PutSingle(ctx, "users", entity.KeyFromString(id), []byte(`{"name":"bob"}`), dbKeys, resKeys, "id", nil, authz.Principal{})
	require.NoError(t, err)
	assert.Equal(t, "bob", updated["name"])
}
