package utils

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// RegistryValidator checks a key-value pair against the current entries before registration
type RegistryValidator[K cmp.Ordered, V any] func(key K, value V, existing map[K]V) error

// Registry is a named, thread-safe map with optional validation on Register
type Registry[K cmp.Ordered, V any] struct {
	mu        sync.RWMutex
	name      string
	items     map[K]V
	validator RegistryValidator[K, V]
}

// NewRegistry creates an empty registry. name prefixes validation errors.
func NewRegistry[K cmp.Ordered, V any](name string, validators ...RegistryValidator[K, V]) *Registry[K, V] {
	r := &Registry[K, V]{
		name:  name,
		items: make(map[K]V),
	}
	if len(validators) > 0 {
		r.validator = ChainValidators(validators...)
	}
	return r
}

// Register adds value under key after running the validators
func (r *Registry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.validator != nil {
		if err := r.validator(key, value, r.items); err != nil {
			return fmt.Errorf("%s registry: %w", r.name, err)
		}
	}
	r.items[key] = value
	return nil
}

// Get returns the value registered under key
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[key]
	return v, ok
}

// Has reports whether key is registered
func (r *Registry[K, V]) Has(key K) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key and reports whether it was present
func (r *Registry[K, V]) Delete(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[key]
	delete(r.items, key)
	return ok
}

// List returns the registered keys, sorted
func (r *Registry[K, V]) List() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Size returns the number of entries
func (r *Registry[K, V]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// NotEmptyKeyValidator rejects the zero key
func NotEmptyKeyValidator[K cmp.Ordered, V any](keyDesc string) RegistryValidator[K, V] {
	return func(key K, _ V, _ map[K]V) error {
		var zero K
		if key == zero {
			return fmt.Errorf("%s cannot be empty", keyDesc)
		}
		return nil
	}
}

// NoDuplicateValidator rejects keys that are already registered
func NoDuplicateValidator[K cmp.Ordered, V any](keyDesc string) RegistryValidator[K, V] {
	return func(key K, _ V, existing map[K]V) error {
		if _, ok := existing[key]; ok {
			return fmt.Errorf("%s %v is already registered", keyDesc, key)
		}
		return nil
	}
}

// ChainValidators runs validators in order and stops at the first error
func ChainValidators[K cmp.Ordered, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, v := range validators {
			if err := v(key, value, existing); err != nil {
				return err
			}
		}
		return nil
	}
}
