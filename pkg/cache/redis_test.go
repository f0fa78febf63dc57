package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The Redis tests need a running Redis/Valkey server.
// Set REDIS_ADDRESS (e.g., "localhost:6379") to enable them.

func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}
	return addr
}

func newTestRedisPool(t *testing.T) *RedisPool {
	t.Helper()
	addr := skipIfNoRedis(t)

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.FlushDB(ctx).Err())
	_ = client.Close()

	p, err := NewRedisPool(Options{Address: addr, DB: 15, TTL: 10 * time.Second, Prefix: "cachewire-test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestRedisPool_GetSetDelete(t *testing.T) {
	p := newTestRedisPool(t)

	_, ok := p.Get("k")
	assert.False(t, ok)

	require.NoError(t, p.Set("k", []byte("hello")))
	val, ok := p.Get("k")
	require.True(t, ok)
	assert.Equal(t, "hello", string(val))
	assert.True(t, p.Contains("k"))

	require.NoError(t, p.Delete("k"))
	assert.False(t, p.Contains("k"))
}

func TestRedisPool_LenAndClear(t *testing.T) {
	p := newTestRedisPool(t)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, p.Set(k, []byte(k)))
	}
	assert.Equal(t, 3, p.Len())

	require.NoError(t, p.Clear())
	assert.Equal(t, 0, p.Len())
}

func TestNewRedisPool_UnreachableServer(t *testing.T) {
	_, err := NewRedisPool(Options{Address: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
