package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryPool is an in-process LRU pool backed by hashicorp/golang-lru/v2/expirable.
type MemoryPool struct {
	inner     *lru.LRU[string, []byte]
	evictions atomic.Int64
}

// NewMemoryPool creates a memory pool holding at most opts.Size entries.
func NewMemoryPool(opts Options) *MemoryPool {
	opts = opts.withDefaults()
	p := &MemoryPool{}
	onEvict := func(key string, value []byte) {
		p.evictions.Add(1)
		if opts.OnEvict != nil {
			opts.OnEvict(key, value)
		}
	}
	p.inner = lru.NewLRU[string, []byte](opts.Size, onEvict, opts.TTL)
	return p
}

func (m *MemoryPool) Get(key string) ([]byte, bool) {
	return m.inner.Get(key)
}

func (m *MemoryPool) Set(key string, value []byte) error {
	m.inner.Add(key, value)
	return nil
}

func (m *MemoryPool) Contains(key string) bool {
	return m.inner.Contains(key)
}

func (m *MemoryPool) Delete(key string) error {
	m.inner.Remove(key)
	return nil
}

// Clear purges all entries. Purged entries are reported to the eviction callback.
func (m *MemoryPool) Clear() error {
	m.inner.Purge()
	return nil
}

func (m *MemoryPool) Len() int {
	return m.inner.Len()
}

// Evictions returns how many entries have left the pool through eviction or removal.
func (m *MemoryPool) Evictions() int64 {
	return m.evictions.Load()
}

func (m *MemoryPool) Close() error {
	return nil
}
