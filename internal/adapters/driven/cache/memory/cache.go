// Package memory provides an in-memory answer cache for tests and local
// runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.Cache = (*Cache)(nil)

type entry struct {
	value     string
	expiresAt time.Time
}

// Cache is an in-memory cache with lazy expiry: entries carry an absolute
// expiry checked on read, and expired entries are reported as absent.
// Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source. Useful for testing expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a new in-memory cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key. Absent and expired entries both report
// ok=false.
func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.After(c.now()) {
		// Lazy expiry: the entry stays in the map but is invisible.
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value with an absolute expiry of now+ttl.
func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}
