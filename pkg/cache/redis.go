package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisDialTimeout = 5 * time.Second
	redisOpTimeout   = 2 * time.Second
	redisScanCount   = 256
)

// RedisPool stores each entry under its own prefixed Redis key. Expiry is
// delegated to Redis through per-key TTLs, so Len and Clear scan the prefix.
type RedisPool struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewRedisPool connects to opts.Address and verifies the connection with PING.
func NewRedisPool(opts Options) (*RedisPool, error) {
	opts = opts.withDefaults()
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisPoolWithClient(client, opts), nil
}

// NewRedisPoolWithClient wraps an existing client. The pool owns the client and closes it.
func NewRedisPoolWithClient(client redis.UniversalClient, opts Options) *RedisPool {
	opts = opts.withDefaults()
	return &RedisPool{
		client: client,
		ttl:    opts.TTL,
		prefix: opts.Prefix,
	}
}

func (r *RedisPool) key(k string) string {
	return r.prefix + k
}

func (r *RedisPool) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		// redis.Nil is a normal miss; anything else is reported as a miss too.
		return nil, false
	}
	return val, true
}

func (r *RedisPool) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
}

func (r *RedisPool) Contains(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return err == nil && n > 0
}

func (r *RedisPool) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	err := r.client.Del(ctx, r.key(key)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r *RedisPool) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	return r.scan(ctx, func(keys []string) error {
		return r.client.Del(ctx, keys...).Err()
	})
}

func (r *RedisPool) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	total := 0
	err := r.scan(ctx, func(keys []string) error {
		total += len(keys)
		return nil
	})
	if err != nil {
		return 0
	}
	return total
}

func (r *RedisPool) Close() error {
	return r.client.Close()
}

func (r *RedisPool) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", redisScanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
