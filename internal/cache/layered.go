package cache

import "time"

// LayeredCache combines a memory front with a disk back. Reads check
// memory first and promote disk hits; writes go to both layers.
type LayeredCache struct {
	memory VectorCache
	disk   VectorCache
}

// NewLayeredCache creates a layered vector cache rooted at diskDir.
func NewLayeredCache(memoryTTL time.Duration, diskDir string) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir),
	}
}

// Get retrieves vectors for the key, checking memory then disk.
func (c *LayeredCache) Get(key Key) ([][]float32, bool) {
	if vectors, found := c.memory.Get(key); found {
		return vectors, true
	}

	if vectors, found := c.disk.Get(key); found {
		// Promote to the memory layer.
		_ = c.memory.Set(key, vectors)
		return vectors, true
	}

	return nil, false
}

// Set stores vectors in both layers.
func (c *LayeredCache) Set(key Key, vectors [][]float32) error {
	if err := c.memory.Set(key, vectors); err != nil {
		return err
	}
	return c.disk.Set(key, vectors)
}

// Delete removes the entry from both layers.
func (c *LayeredCache) Delete(key Key) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}
