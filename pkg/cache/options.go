package cache

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

const (
	defaultSize      = 1000
	defaultKeyPrefix = "cachewire:"
)

// Options configures a pool. It is decoded from the map argument passed to an
// adapter factory, so durations may be given as strings like "30s".
type Options struct {
	// Size is the maximum number of entries for LRU pools.
	Size int `mapstructure:"size"`

	// TTL is the time-to-live for entries. Zero means no expiry.
	TTL time.Duration `mapstructure:"ttl"`

	// Address is the Redis/Valkey server address (e.g., "localhost:6379").
	Address string `mapstructure:"address"`

	// Password is the password for the Redis/Valkey server.
	Password string `mapstructure:"password"`

	// DB is the Redis/Valkey database number.
	DB int `mapstructure:"db"`

	// Prefix namespaces the keys of a Redis pool.
	Prefix string `mapstructure:"prefix"`

	// OnEvict is called when an entry is evicted. Only settable from Go code.
	OnEvict EvictCallback `mapstructure:"-"`
}

// DecodeOptions converts a raw options map into Options and applies defaults.
func DecodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	if raw == nil {
		return opts.withDefaults(), nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return opts, err
	}
	if err := decoder.Decode(raw); err != nil {
		return opts, fmt.Errorf("cache: invalid pool options: %w", err)
	}
	return opts.withDefaults(), nil
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = defaultSize
	}
	if o.Prefix == "" {
		o.Prefix = defaultKeyPrefix
	}
	return o
}
