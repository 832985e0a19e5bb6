// Package memory implements an in-process TTL cache for tests and
// single-node deployments without redis.
package memory

import (
	"context"
	"sync"
	"time"
)

// Cache is a mutex-guarded map with per-entry expiry. Expired entries are
// dropped lazily on read.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	value     string
	expiresAt time.Time
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewWithNow returns a Cache on an injected clock, for TTL tests.
func NewWithNow(now func() time.Time) *Cache {
	c := New()
	c.now = now
	return c
}

// Get returns the cached value if present and unexpired.
func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value under key for ttl.
func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}
