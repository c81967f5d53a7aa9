// Package cache holds last-known-good copies of read views so they can be
// served when the record store is unavailable.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

type Cache interface {
	// Read decodes the cached value into dest and reports whether it was present.
	Read(ctx context.Context, key string, dest any) (bool, error)
	Write(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is a process-local Cache. Values are msgpack encoded so callers
// never share mutable state with the cache.
type MemoryCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Read(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := msgpack.Unmarshal(entry.data, dest); err != nil {
		return false, errors.Wrapf(err, "decode cache entry %s", key)
	}
	return true, nil
}

func (c *MemoryCache) Write(_ context.Context, key string, value any) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode cache entry %s", key)
	}
	entry := memoryEntry{data: data}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}
