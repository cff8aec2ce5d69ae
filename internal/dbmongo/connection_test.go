package dbmongo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instafeed/internal/config"
)

// Integration tests run against a live MongoDB, e.g. from docker-compose.
// They are skipped unless MONGO_INTEGRATION is set.
func integrationConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("MONGO_INTEGRATION") == "" {
		t.Skip("set MONGO_INTEGRATION=1 with a running MongoDB to enable")
	}

	return &config.Config{
		MongoDB: config.MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: getEnvOrDefault("MONGO_USERNAME", ""),
			Password: getEnvOrDefault("MONGO_PASSWORD", ""),
			Database: getEnvOrDefault("MONGO_DATABASE", "instafeed_test"),
		},
	}
}

func TestMongoConnection_Integration(t *testing.T) {
	cfg := integrationConfig(t)
	ctx := context.Background()

	client, err := NewMongoConnection(cfg)
	require.NoError(t, err, "failed to connect - ensure MongoDB is running")
	defer client.Close(ctx)

	assert.NoError(t, client.Client.Ping(ctx, nil))
	assert.NotNil(t, client.Database)
}

func TestEnsureIndexes_Integration(t *testing.T) {
	cfg := integrationConfig(t)
	ctx := context.Background()

	client, err := NewMongoConnection(cfg)
	require.NoError(t, err)
	defer client.Close(ctx)

	require.NoError(t, client.EnsureIndexes(ctx))

	// Creating indexes twice must be a no-op, not an error.
	assert.NoError(t, client.EnsureIndexes(ctx))
}

func TestVisibilityValid(t *testing.T) {
	assert.True(t, VisibilityPublic.Valid())
	assert.True(t, VisibilityPrivate.Valid())
	assert.True(t, VisibilityFollowers.Valid())
	assert.False(t, Visibility("Everyone").Valid())
	assert.False(t, Visibility("").Valid())
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
