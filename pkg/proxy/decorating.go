package proxy

import "github.com/toyz/cachewire/pkg/cache"

// DecoratingFactoryClass is the class name the decorating factory is registered under.
const DecoratingFactoryClass = "proxy.DecoratingFactory"

// DecoratingFactory wraps pools that were built by an adapter factory, whose
// concrete type is only known once the factory has run.
type DecoratingFactory struct{}

// NewDecoratingFactory creates the factory.
func NewDecoratingFactory() *DecoratingFactory {
	return &DecoratingFactory{}
}

// Create wraps inner in a RecordingPool.
func (f *DecoratingFactory) Create(inner cache.Pool) *RecordingPool {
	return NewRecordingPool(inner)
}
