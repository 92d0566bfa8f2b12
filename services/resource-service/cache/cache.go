// Package cache keeps the browse listing in Redis using cache-aside.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RigelNana/edumarket/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// ListingCache is what the resource service needs from a cache.
type ListingCache interface {
	// Get reports whether key was found and decoded into dest.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Generation changes on every Invalidate. Callers read it before loading
	// from the database and key their Set by it, so a load that raced an
	// invalidation is written under a generation nobody reads any more.
	Generation(ctx context.Context) (int64, error)
	// Invalidate bumps the generation and drops every cached listing.
	Invalidate(ctx context.Context) error
}

// genKey holds the generation counter, relative to the cache prefix.
const genKey = "gen"


// Stats tracks cache statistics.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Errors  uint64 `json:"errors"`
}

type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  Stats
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddUint64(&c.stats.Misses, 1)
			metrics.ListingCacheTotal.WithLabelValues("miss").Inc()
			return false, nil
		}
		c.fail()
		return false, fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.fail()
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	atomic.AddUint64(&c.stats.Hits, 1)
	metrics.ListingCacheTotal.WithLabelValues("hit").Inc()
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.fail()
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.fail()
		return fmt.Errorf("cache set error: %w", err)
	}

	atomic.AddUint64(&c.stats.Sets, 1)
	return nil
}

func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.prefix+genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.fail()
		return 0, fmt.Errorf("cache generation error: %w", err)
	}
	return gen, nil
}

// Invalidate increments the generation, then scans the prefix and deletes
// the listings it finds. The counter itself is never deleted.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	gk := c.prefix + genKey
	if err := c.client.Incr(ctx, gk).Err(); err != nil {
		c.fail()
		return fmt.Errorf("cache generation error: %w", err)
	}

	var cursor uint64
	var deleted int

	for {
		found, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			c.fail()
			return fmt.Errorf("cache scan error: %w", err)
		}

		keys := found[:0]
		for _, k := range found {
			if k != gk {
				keys = append(keys, k)
			}
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.fail()
				return fmt.Errorf("cache delete error: %w", err)
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	atomic.AddUint64(&c.stats.Deletes, uint64(deleted))
	return nil
}

// GetStats returns a snapshot of the counters.
func (c *RedisCache) GetStats() Stats {
	return Stats{
		Hits:    atomic.LoadUint64(&c.stats.Hits),
		Misses:  atomic.LoadUint64(&c.stats.Misses),
		Sets:    atomic.LoadUint64(&c.stats.Sets),
		Deletes: atomic.LoadUint64(&c.stats.Deletes),
		Errors:  atomic.LoadUint64(&c.stats.Errors),
	}
}

func (c *RedisCache) fail() {
	atomic.AddUint64(&c.stats.Errors, 1)
	metrics.ListingCacheTotal.WithLabelValues("error").Inc()
}

// Nop never hits. Used when no Redis is configured.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any) error         { return nil }
func (Nop) Generation(context.Context) (int64, error)      { return 0, nil }
func (Nop) Invalidate(context.Context) error               { return nil }
