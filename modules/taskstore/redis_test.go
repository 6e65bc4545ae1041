package taskstore

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// setupRedisStore connects to a local Redis and skips the test when none is
// reachable. It uses database 15 and flushes it around the test.
func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	require.NoError(t, client.FlushDB(ctx).Err())

	store := NewRedisStore(client)
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = store.Close(context.Background())
	})
	return store
}

func TestRedisStore_Contract(t *testing.T) {
	runBackendSuite(t, setupRedisStore(t))
}
