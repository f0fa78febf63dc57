// Package cache provides the cache pools that cachewire wires into a container
// together with the adapter factories that build them from service arguments.
package cache

// EvictCallback is called when an entry is evicted from a pool.
// Not all pools support eviction callbacks (Redis relies on server-side expiry).
type EvictCallback func(key string, value []byte)

// Pool defines the interface for key-value cache pools.
type Pool interface {
	// Get retrieves a value by key. Returns the value and true if found, or nil and false if not.
	Get(key string) ([]byte, bool)

	// Set stores a value with the given key. If the key already exists, it is overwritten.
	Set(key string, value []byte) error

	// Contains checks whether a key exists without affecting LRU ordering.
	Contains(key string) bool

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	// Clear removes every entry owned by the pool.
	Clear() error

	// Len returns the number of entries currently in the pool.
	Len() int

	// Close releases any resources held by the pool (e.g., network connections).
	Close() error
}

// Class names under which the built-in pools are registered in a container.
const (
	MemoryPoolClass = "cache.MemoryPool"
	RedisPoolClass  = "cache.RedisPool"
)
