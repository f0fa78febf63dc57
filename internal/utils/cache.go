package utils

import (
	"os"
	"sync"
	"time"
)

// CacheItem is a cached value with the file metadata it was read under
type CacheItem[T any] struct {
	Value   T
	ModTime time.Time
	Size    int64
}

// FileCache caches values derived from files and drops an entry once its
// file changes on disk
type FileCache[V any] struct {
	mu    sync.RWMutex
	items map[string]*CacheItem[V]
}

// NewFileCache creates an empty cache
func NewFileCache[V any]() *FileCache[V] {
	return &FileCache[V]{items: make(map[string]*CacheItem[V])}
}

// Get returns the value cached for path when the file is unchanged
func (c *FileCache[V]) Get(path string) (V, bool) {
	c.mu.RLock()
	item, ok := c.items[path]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if stat, err := os.Stat(path); err == nil && stat.ModTime().Equal(item.ModTime) && stat.Size() == item.Size {
		return item.Value, true
	}

	c.Delete(path)
	return zero, false
}

// Set stores value for path along with the file's current metadata
func (c *FileCache[V]) Set(path string, value V) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[path] = &CacheItem[V]{Value: value, ModTime: stat.ModTime(), Size: stat.Size()}
	return nil
}

// Delete removes path from the cache
func (c *FileCache[V]) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, path)
}

// Clear removes every entry
func (c *FileCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*CacheItem[V])
}

// Size returns the number of cached entries
func (c *FileCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
