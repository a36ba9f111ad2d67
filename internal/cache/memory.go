package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds serialized completions in process memory, the first
// layer of the layered cache. Repeat prompts within one review session
// (the same contract validated against several checklists, or a batch
// run touching near-identical documents) hit here without touching disk.
type MemoryCache struct {
	entries *gocache.Cache
}

// NewMemoryCache creates an in-memory completion cache. defaultTTL
// bounds how long an entry answers for when Set is called with ttl=0;
// cleanupInterval is how often expired entries are swept.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{entries: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns the cached completion bytes for a request key.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.entries.Get(key)
	if !found {
		return nil, false
	}
	return val.([]byte), true
}

// Set stores completion bytes under a request key. ttl=0 uses the
// cache's default TTL.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.entries.Set(key, value, ttl)
	return nil
}

// Delete evicts one entry.
func (c *MemoryCache) Delete(key string) error {
	c.entries.Delete(key)
	return nil
}

// Clear evicts everything.
func (c *MemoryCache) Clear() error {
	c.entries.Flush()
	return nil
}
