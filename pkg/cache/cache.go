package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Cache is an in-process key-value store. It satisfies the durable
// key-value contract for a single process lifetime and backs the
// "memory" storage backend and tests.
type Cache struct {
	mu    sync.RWMutex
	items map[string]string
}

// New creates an empty cache
func New() *Cache {
	return &Cache{items: map[string]string{}}
}

// Read retrieves a value; ok is false if the key is absent
func (c *Cache) Read(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.items[key]
	return value, ok, nil
}

// Write stores a value, replacing any previous one
func (c *Cache) Write(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

// Remove deletes a key. Removing an absent key is not an error.
func (c *Cache) Remove(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// Keys returns the sorted keys matching a prefix
func (c *Cache) Keys(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Ping always succeeds
func (c *Cache) Ping(context.Context) error { return nil }

// Close is a no-op
func (c *Cache) Close() error { return nil }
