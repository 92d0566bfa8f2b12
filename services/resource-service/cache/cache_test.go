package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requires Redis on localhost:6379, skipped otherwise
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T, prefix string) *RedisCache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	c := NewRedisCache(client, prefix, time.Minute)
	require.NoError(t, c.Invalidate(ctx))
	t.Cleanup(func() {
		_ = c.Invalidate(context.Background())
		_ = client.Close()
	})
	return c
}

type listing struct {
	Titles []string `json:"titles"`
}

func TestRedisCache_GetSet(t *testing.T) {
	c := setupTestCache(t, "edumarket-test:getset:")
	ctx := context.Background()

	var got listing
	found, err := c.Get(ctx, "all", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "all", listing{Titles: []string{"Physics Notes"}}))

	found, err = c.Get(ctx, "all", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"Physics Notes"}, got.Titles)

	stats := c.GetStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Sets)
}

func TestRedisCache_Invalidate(t *testing.T) {
	c := setupTestCache(t, "edumarket-test:invalidate:")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", listing{}))
	require.NoError(t, c.Set(ctx, "b", listing{}))
	require.NoError(t, c.Invalidate(ctx))

	var got listing
	found, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.GreaterOrEqual(t, c.GetStats().Deletes, uint64(2))
}

func TestRedisCache_GenerationSurvivesInvalidate(t *testing.T) {
	c := setupTestCache(t, "edumarket-test:gen:")
	ctx := context.Background()

	before, err := c.Generation(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Invalidate(ctx))

	after, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+2, after)
}

func TestNop(t *testing.T) {
	var c ListingCache = Nop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))
	var out string
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Invalidate(ctx))
	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)
}
