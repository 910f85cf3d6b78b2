package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps vector sets in process memory with a TTL. It fronts
// the disk cache so repeated queries over the same documents skip file
// reads within a run.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates an in-memory vector cache.
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves the vectors stored under the key.
func (c *MemoryCache) Get(key Key) ([][]float32, bool) {
	if val, found := c.cache.Get(key.String()); found {
		return val.([][]float32), true
	}
	return nil, false
}

// Set stores vectors under the key with the default TTL.
func (c *MemoryCache) Set(key Key, vectors [][]float32) error {
	c.cache.Set(key.String(), vectors, gocache.DefaultExpiration)
	return nil
}

// Delete removes the entry for the key.
func (c *MemoryCache) Delete(key Key) error {
	c.cache.Delete(key.String())
	return nil
}
