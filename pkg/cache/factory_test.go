package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbstractAdapterFactory_ProducedClass(t *testing.T) {
	f := NewAbstractAdapterFactory(
		Dependency{RequiredClass: "first.Pool"},
		Dependency{RequiredClass: "second.Pool"},
	)
	assert.Equal(t, "first.Pool", f.ProducedClass())
	assert.Len(t, f.Dependencies(), 2)

	empty := NewAbstractAdapterFactory()
	assert.Equal(t, "", empty.ProducedClass())
}

func TestMemoryAdapterFactory(t *testing.T) {
	f := NewMemoryAdapterFactory()
	assert.Equal(t, MemoryPoolClass, f.ProducedClass())

	pool, err := f.CreateAdapter(map[string]any{"size": 3})
	require.NoError(t, err)
	require.IsType(t, &MemoryPool{}, pool)

	require.NoError(t, pool.Set("k", []byte("v")))
	assert.True(t, pool.Contains("k"))

	_, err = f.CreateAdapter(map[string]any{"nope": true})
	assert.Error(t, err)
}

func TestRedisAdapterFactory_RequiresAddress(t *testing.T) {
	f := NewRedisAdapterFactory()
	assert.Equal(t, RedisPoolClass, f.ProducedClass())

	_, err := f.CreateAdapter(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an address")
}
