package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.Cache = (*Cache)(nil)

// Cache is an in-memory implementation of driven.Cache.
// Values are copied on the way in and out.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewCache creates a new in-memory cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string][]byte),
	}
}

// Get returns the value stored under key.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores value under key.
func (c *Cache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Keys returns the stored keys in no particular order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}
