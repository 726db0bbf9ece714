//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests against a local Redis
// Run with: go test -v -tags=integration ./internal/cache/...

func setupTestCache(t *testing.T) *RedisCache {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	c, err := NewRedisCache(Config{Host: host, Port: "6379", DB: 15})
	require.NoError(t, err, "Failed to connect to test Redis")
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache_GetSet(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	key := "team:api:player:test-" + time.Now().Format("150405.000")

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "Missing key is reported as not found")

	require.NoError(t, c.Set(ctx, key, "ATL", time.Minute))

	team, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ATL", team)
}

func TestRedisCache_Expiry(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	key := "team:api:player:expiring"

	require.NoError(t, c.Set(ctx, key, "SEA", 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
