// Package compiler holds the compiler passes that rewire cache services.
package compiler

import (
	"fmt"

	"github.com/toyz/cachewire/internal/container"
	"github.com/toyz/cachewire/internal/errors"
	"github.com/toyz/cachewire/pkg/cache"
)

// Well-known service ids and tag used by the provider proxy pass.
const (
	DefaultCollectorID         = "cache.data_collector"
	DefaultProviderTag         = "cache.provider"
	DefaultDecoratingFactoryID = "cache.decorating_factory"
	DefaultProxyFactoryID      = "cache.proxy_factory"

	// InnerSuffix is appended to the id of a factory-built pool that gets wrapped.
	InnerSuffix = ".inner"
)

// Method names the pass schedules on rewritten definitions.
const (
	SetNameMethod     = "SetName"
	AddInstanceMethod = "AddInstance"
	CreateMethod      = "Create"
)

// ProxyFactory maps pool classes to generated proxy classes.
type ProxyFactory interface {
	ProxyClass(class string) string
	CreateProxy(class string) (string, error)
}

// Logger receives progress messages from the pass.
type Logger interface {
	Verbose(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Verbose(string, ...interface{}) {}

// Option configures a ProviderProxyPass.
type Option func(*ProviderProxyPass)

// WithCollectorID sets the id of the data collector definition.
func WithCollectorID(id string) Option {
	return func(p *ProviderProxyPass) { p.collectorID = id }
}

// WithProviderTag sets the tag marking cache provider services.
func WithProviderTag(tag string) Option {
	return func(p *ProviderProxyPass) { p.providerTag = tag }
}

// WithDecoratingFactoryID sets the id of the service whose Create method
// wraps factory-built pools.
func WithDecoratingFactoryID(id string) Option {
	return func(p *ProviderProxyPass) { p.decoratingFactoryID = id }
}

// WithProxyFactoryID sets the service id the proxy factory is resolved from.
func WithProxyFactoryID(id string) Option {
	return func(p *ProviderProxyPass) { p.proxyFactoryID = id }
}

// WithProxyFactory uses f directly instead of resolving it from the builder.
func WithProxyFactory(f ProxyFactory) Option {
	return func(p *ProviderProxyPass) { p.proxyFactory = f }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l Logger) Option {
	return func(p *ProviderProxyPass) {
		if l != nil {
			p.logger = l
		}
	}
}

// ProviderProxyPass replaces every cache provider service with a recording
// proxy and registers each proxy with the data collector.
//
// A plain provider keeps its definition; only its class becomes the proxy
// class. A provider built by an adapter factory is moved to "<id>.inner" and
// "<id>" is redefined as the decorating factory's Create(ref("<id>.inner")).
//
// The pass is not idempotent: running it twice wraps proxies again.
type ProviderProxyPass struct {
	collectorID         string
	providerTag         string
	decoratingFactoryID string
	proxyFactoryID      string
	proxyFactory        ProxyFactory
	logger              Logger
}

// NewProviderProxyPass creates the pass with the well-known ids.
func NewProviderProxyPass(opts ...Option) *ProviderProxyPass {
	p := &ProviderProxyPass{
		collectorID:         DefaultCollectorID,
		providerTag:         DefaultProviderTag,
		decoratingFactoryID: DefaultDecoratingFactoryID,
		proxyFactoryID:      DefaultProxyFactoryID,
		logger:              nopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ProviderProxyPass) Name() string { return "provider-proxy-installer" }

// Process rewires the tagged services of b. It does nothing when no data
// collector is defined.
func (p *ProviderProxyPass) Process(b *container.Builder) error {
	if !b.HasDefinition(p.collectorID) {
		p.logger.Verbose("no %s definition, cache providers are left untouched", p.collectorID)
		return nil
	}

	proxyFactory, err := p.resolveProxyFactory(b)
	if err != nil {
		return err
	}
	collector, err := b.Definition(p.collectorID)
	if err != nil {
		return err
	}

	for _, id := range b.TaggedIDs(p.providerTag) {
		if err := p.install(b, proxyFactory, collector, id); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProviderProxyPass) install(b *container.Builder, proxyFactory ProxyFactory, collector *container.Definition, id string) error {
	pool, err := b.Definition(id)
	if err != nil {
		return err
	}

	poolClass := pool.Class()
	proxyDef := pool

	if f := pool.Factory(); f != nil {
		instance, err := b.Get(f.Service)
		if err != nil {
			return errors.WrapDependencyError("cache factory", f.Service, err)
		}
		adapterFactory, ok := instance.(cache.AdapterFactory)
		if !ok {
			return errors.NewUnsupportedFactoryError(f.Service, id, instance)
		}
		poolClass = adapterFactory.ProducedClass()

		innerID := id + InnerSuffix
		if err := b.SetDefinition(innerID, pool); err != nil {
			return err
		}

		proxyDef = container.NewDefinition("", container.Ref(innerID)).
			SetFactory(p.decoratingFactoryID, CreateMethod)
		if err := b.SetDefinition(id, proxyDef); err != nil {
			return err
		}
		p.logger.Verbose("moved factory-built %s to %s", id, innerID)
	}

	proxyClass := proxyFactory.ProxyClass(poolClass)
	proxyFile, err := proxyFactory.CreateProxy(poolClass)
	if err != nil {
		return errors.WrapGenerateError("proxy", poolClass, err)
	}

	proxyDef.SetClass(proxyClass).
		SetFile(proxyFile).
		AddMethodCall(SetNameMethod, id)

	collector.AddMethodCall(AddInstanceMethod, id, container.Ref(id))

	p.logger.Verbose("proxied %s (%s) as %s", id, poolClass, proxyClass)
	return nil
}

func (p *ProviderProxyPass) resolveProxyFactory(b *container.Builder) (ProxyFactory, error) {
	if p.proxyFactory != nil {
		return p.proxyFactory, nil
	}

	instance, err := b.Get(p.proxyFactoryID)
	if err != nil {
		return nil, errors.WrapDependencyError("proxy factory", p.proxyFactoryID, err)
	}
	factory, ok := instance.(ProxyFactory)
	if !ok {
		return nil, errors.ConfigurationError(p.proxyFactoryID, "service does not provide ProxyClass and CreateProxy").
			WithContext("type", fmt.Sprintf("%T", instance))
	}
	return factory, nil
}
