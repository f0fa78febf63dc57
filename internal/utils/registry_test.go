package utils

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BasicOperations(t *testing.T) {
	registry := NewRegistry[string, int]("numbers")
	assert.Equal(t, 0, registry.Size())

	require.NoError(t, registry.Register("b", 2))
	require.NoError(t, registry.Register("a", 1))

	v, ok := registry.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, registry.Has("b"))
	assert.False(t, registry.Has("c"))
	assert.Equal(t, []string{"a", "b"}, registry.List())

	assert.True(t, registry.Delete("a"))
	assert.False(t, registry.Delete("a"))
	assert.Equal(t, 1, registry.Size())
}

func TestRegistry_Validators(t *testing.T) {
	registry := NewRegistry("class",
		NotEmptyKeyValidator[string, int]("class name"),
		NoDuplicateValidator[string, int]("class"),
	)

	err := registry.Register("", 1)
	require.Error(t, err)
	assert.Equal(t, "class registry: class name cannot be empty", err.Error())

	require.NoError(t, registry.Register("cache.MemoryPool", 1))
	err = registry.Register("cache.MemoryPool", 2)
	require.Error(t, err)
	assert.Equal(t, "class registry: class cache.MemoryPool is already registered", err.Error())

	v, _ := registry.Get("cache.MemoryPool")
	assert.Equal(t, 1, v)
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	registry := NewRegistry[string, int]("numbers")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = registry.Register(fmt.Sprintf("k%02d", i), i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, registry.Size())
	assert.Equal(t, "k00", registry.List()[0])
}
