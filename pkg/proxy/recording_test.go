package proxy

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/cachewire/pkg/cache"
)

type failingPool struct {
	cache.Pool
}

func (failingPool) Set(string, []byte) error { return errors.New("backend down") }

func newTestPool(t *testing.T) *RecordingPool {
	t.Helper()
	p := NewRecordingPool(cache.NewMemoryPool(cache.Options{Size: 10}))
	tick := time.Unix(0, 0)
	p.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}
	return p
}

func TestRecordingPool_RecordsHitsAndMisses(t *testing.T) {
	p := newTestPool(t)

	_, ok := p.Get("k")
	assert.False(t, ok)
	require.NoError(t, p.Set("k", []byte("v")))
	val, ok := p.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", string(val))
	assert.True(t, p.Contains("k"))
	require.NoError(t, p.Delete("k"))

	stats := p.Stats()
	assert.Equal(t, int64(5), stats.Calls)
	assert.Equal(t, int64(3), stats.Reads)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Writes)
	assert.Equal(t, int64(1), stats.Deletes)
	assert.Equal(t, 5*time.Millisecond, stats.Time)
	assert.InDelta(t, 2.0/3.0, stats.HitRatio(), 0.0001)

	calls := p.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, "Get", calls[0].Method)
	assert.False(t, calls[0].Hit)
	assert.Equal(t, "Delete", calls[4].Method)
}

func TestRecordingPool_RecordsErrors(t *testing.T) {
	p := NewRecordingPool(failingPool{Pool: cache.NewMemoryPool(cache.Options{})})

	err := p.Set("k", []byte("v"))
	require.Error(t, err)

	assert.Equal(t, int64(1), p.Stats().Errors)
	assert.Equal(t, "backend down", p.Calls()[0].Error)
}

func TestRecordingPool_NameAndReset(t *testing.T) {
	p := newTestPool(t)
	p.SetName("cache.app")
	assert.Equal(t, "cache.app", p.Name())

	_, _ = p.Get("x")
	p.Reset()
	assert.Equal(t, Stats{}, p.Stats())
	assert.Empty(t, p.Calls())
	assert.Equal(t, "cache.app", p.Name(), "reset keeps the name")
}

func TestRecordingPool_CallLogIsBounded(t *testing.T) {
	p := newTestPool(t)
	p.SetMaxCalls(3)

	for _, k := range []string{"a", "b", "c", "d", "e"} {
		_, _ = p.Get(k)
	}

	calls := p.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "c", calls[0].Key)
	assert.Equal(t, "e", calls[2].Key)
	assert.Equal(t, int64(5), p.Stats().Calls)

	p.SetMaxCalls(0)
	_, _ = p.Get("f")
	assert.Empty(t, p.Calls())
}

func TestRecordingPool_ConcurrentUse(t *testing.T) {
	p := NewRecordingPool(cache.NewMemoryPool(cache.Options{Size: 100}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = p.Set("k", []byte("v"))
				_, _ = p.Get("k")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(800), p.Stats().Calls)
}

func TestStats_Add(t *testing.T) {
	a := Stats{Calls: 1, Hits: 1, Reads: 1, Time: time.Second}
	b := Stats{Calls: 2, Misses: 2, Reads: 2, Writes: 1, Time: time.Second}
	sum := a.Add(b)
	assert.Equal(t, Stats{Calls: 3, Hits: 1, Misses: 2, Reads: 3, Writes: 1, Time: 2 * time.Second}, sum)
}

func TestDecoratingFactory_Create(t *testing.T) {
	inner := cache.NewMemoryPool(cache.Options{})
	p := NewDecoratingFactory().Create(inner)
	require.NotNil(t, p)
	assert.Same(t, inner, p.Inner())
}
