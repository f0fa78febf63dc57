// Package bundle wires the built-in cache classes and services into a
// container builder.
package bundle

import (
	"github.com/toyz/cachewire/internal/compiler"
	"github.com/toyz/cachewire/internal/container"
	"github.com/toyz/cachewire/internal/generator"
	"github.com/toyz/cachewire/pkg/cache"
	"github.com/toyz/cachewire/pkg/collector"
	"github.com/toyz/cachewire/pkg/proxy"
)

// Built-in class names and service ids.
const (
	MemoryAdapterFactoryClass = "cache.MemoryAdapterFactory"
	RedisAdapterFactoryClass  = "cache.RedisAdapterFactory"

	MemoryFactoryID = "cache.factory.memory"
	RedisFactoryID  = "cache.factory.redis"
)

// Options configure Configure.
type Options struct {
	// ProxyDir receives generated proxy sources.
	ProxyDir string
	// Logger receives progress messages from the proxy pass.
	Logger compiler.Logger
	// DisableCollector leaves out the data collector, which turns proxying off.
	DisableCollector bool
}

// RegisterClasses adds the built-in classes to classes. Classes that are
// already registered are kept.
func RegisterClasses(classes *container.ClassRegistry) error {
	builtins := []struct {
		class string
		fn    any
	}{
		{cache.MemoryPoolClass, newMemoryPool},
		{cache.RedisPoolClass, newRedisPool},
		{MemoryAdapterFactoryClass, cache.NewMemoryAdapterFactory},
		{RedisAdapterFactoryClass, cache.NewRedisAdapterFactory},
		{collector.DataCollectorClass, collector.New},
		{proxy.DecoratingFactoryClass, proxy.NewDecoratingFactory},
	}

	for _, builtin := range builtins {
		if classes.Has(builtin.class) {
			continue
		}
		if err := classes.Provide(builtin.class, builtin.fn); err != nil {
			return err
		}
	}
	return nil
}

// Configure registers the built-in classes and well-known services on b and
// adds the provider proxy pass. It returns the proxy factory shared with the pass.
func Configure(b *container.Builder, opts Options) (*generator.ProxyFactory, error) {
	if err := RegisterClasses(b.Classes()); err != nil {
		return nil, err
	}

	proxyFactory := generator.NewProxyFactory(opts.ProxyDir, b.Classes())
	if err := b.Set(compiler.DefaultProxyFactoryID, proxyFactory); err != nil {
		return nil, err
	}

	services := map[string]string{
		compiler.DefaultDecoratingFactoryID: proxy.DecoratingFactoryClass,
		MemoryFactoryID:                     MemoryAdapterFactoryClass,
		RedisFactoryID:                      RedisAdapterFactoryClass,
	}
	if !opts.DisableCollector {
		services[compiler.DefaultCollectorID] = collector.DataCollectorClass
	}
	for id, class := range services {
		if b.HasDefinition(id) {
			continue
		}
		if _, err := b.Register(id, class); err != nil {
			return nil, err
		}
	}

	passOpts := []compiler.Option{compiler.WithProxyFactory(proxyFactory)}
	if opts.Logger != nil {
		passOpts = append(passOpts, compiler.WithLogger(opts.Logger))
	}
	if err := b.AddCompilerPass(compiler.NewProviderProxyPass(passOpts...)); err != nil {
		return nil, err
	}

	return proxyFactory, nil
}

func newMemoryPool(options ...map[string]any) (cache.Pool, error) {
	return cache.NewMemoryAdapterFactory().CreateAdapter(mergeOptions(options))
}

func newRedisPool(options ...map[string]any) (cache.Pool, error) {
	return cache.NewRedisAdapterFactory().CreateAdapter(mergeOptions(options))
}

func mergeOptions(options []map[string]any) map[string]any {
	if len(options) == 0 {
		return nil
	}
	merged := make(map[string]any)
	for _, o := range options {
		for k, v := range o {
			merged[k] = v
		}
	}
	return merged
}
