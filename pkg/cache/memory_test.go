package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPool_GetSet(t *testing.T) {
	p := NewMemoryPool(Options{Size: 10, TTL: time.Hour})

	val, ok := p.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)

	require.NoError(t, p.Set("k", []byte("v")))
	val, ok = p.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", string(val))
	assert.True(t, p.Contains("k"))
	assert.Equal(t, 1, p.Len())
}

func TestMemoryPool_DeleteAndClear(t *testing.T) {
	p := NewMemoryPool(Options{Size: 10})

	require.NoError(t, p.Set("a", []byte("1")))
	require.NoError(t, p.Set("b", []byte("2")))

	require.NoError(t, p.Delete("a"))
	assert.False(t, p.Contains("a"))
	require.NoError(t, p.Delete("a"), "deleting a missing key is not an error")

	require.NoError(t, p.Clear())
	assert.Equal(t, 0, p.Len())
}

func TestMemoryPool_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	p := NewMemoryPool(Options{Size: 2, OnEvict: func(key string, _ []byte) {
		evicted = append(evicted, key)
	}})

	require.NoError(t, p.Set("a", []byte("1")))
	require.NoError(t, p.Set("b", []byte("2")))
	_, _ = p.Get("a")
	require.NoError(t, p.Set("c", []byte("3")))

	assert.Equal(t, []string{"b"}, evicted)
	assert.True(t, p.Contains("a"))
	assert.False(t, p.Contains("b"))
	assert.Equal(t, int64(1), p.Evictions())
}

func TestMemoryPool_DefaultSize(t *testing.T) {
	p := NewMemoryPool(Options{})
	for i := 0; i < defaultSize+5; i++ {
		require.NoError(t, p.Set(fmt.Sprintf("key-%d", i), []byte("x")))
	}
	assert.Equal(t, defaultSize, p.Len())
}
