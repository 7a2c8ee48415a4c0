// Package redis provides a Redis-backed answer cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.Cache = (*Cache)(nil)

// Config holds connection settings for the Redis cache.
type Config struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password is the optional AUTH password.
	Password string

	// DB is the Redis database number.
	DB int

	// Now overrides the time source. Defaults to time.Now; useful for
	// testing expiry.
	Now func() time.Time
}

// envelope is the stored entry. The absolute expiry travels with the
// value and is enforced lazily on read, so expiry semantics do not depend
// on the backing store's eviction timing. Nanosecond precision keeps
// sub-second TTLs meaningful.
type envelope struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// Cache is a Redis-backed cache with lazy expiry. A Redis-side TTL is set
// as well so stale entries do not accumulate, but the stored expiry stays
// authoritative.
type Cache struct {
	client *redis.Client
	now    func() time.Time
}

// NewCache creates a new Redis cache.
func NewCache(cfg Config) *Cache {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		now: now,
	}
}

// Get returns the value for key. Absent, expired and undecodable entries
// report ok=false; backing-store failures wrap domain.ErrCacheUnavailable.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %q: %v", domain.ErrCacheUnavailable, key, err)
	}

	var e envelope
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return "", false, fmt.Errorf("%w: decode %q: %v", domain.ErrCacheUnavailable, key, err)
	}
	if e.ExpiresAt <= c.now().UnixNano() {
		return "", false, nil
	}
	return e.Value, true, nil
}

// Set stores value with an absolute expiry of now+ttl.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	data, err := json.Marshal(envelope{
		Value:     value,
		ExpiresAt: c.now().Add(ttl).UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("%w: encode %q: %v", domain.ErrCacheUnavailable, key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %q: %v", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

// Ping verifies connectivity at startup.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Close releases the client's connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
