package container

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Container is a compiled, frozen service graph. Services are instantiated on
// first Get; shared services are reused afterwards. It is safe for concurrent
// use, but constructors and method calls must not call back into the container.
type Container struct {
	mu          sync.Mutex
	definitions map[string]*Definition
	instances   map[string]any
	parameters  map[string]any
	resolver    *resolver
}

func newContainer(b *Builder) *Container {
	c := &Container{
		definitions: make(map[string]*Definition, len(b.definitions)),
		instances:   make(map[string]any, len(b.instances)),
		parameters:  make(map[string]any, len(b.parameters)),
	}
	for id, def := range b.definitions {
		c.definitions[id] = def.Clone()
	}
	for id, inst := range b.instances {
		c.instances[id] = inst
	}
	for name, v := range b.parameters {
		c.parameters[name] = v
	}
	c.resolver = newResolver(c, b.classes)
	return c
}

// Get returns the service registered under id.
func (c *Container) Get(id string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolver.get(id, "", false)
}

// MustGet is Get that panics on error.
func (c *Container) MustGet(id string) any {
	inst, err := c.Get(id)
	if err != nil {
		panic(err)
	}
	return inst
}

// Has reports whether id can be resolved.
func (c *Container) Has(id string) bool {
	if _, ok := c.definitions[id]; ok {
		return true
	}
	_, ok := c.instances[id]
	return ok
}

// Definition returns a copy of the compiled definition of id.
func (c *Container) Definition(id string) (*Definition, bool) {
	def, ok := c.definitions[id]
	if !ok {
		return nil, false
	}
	return def.Clone(), true
}

// IDs returns every service id, sorted.
func (c *Container) IDs() []string {
	ids := c.ids()
	sort.Strings(ids)
	return ids
}

// TaggedIDs returns the ids carrying tag in the compiled graph, sorted.
func (c *Container) TaggedIDs(tag string) []string {
	var ids []string
	for id, def := range c.definitions {
		if def.HasTag(tag) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Parameter returns a compiled parameter.
func (c *Container) Parameter(name string) (any, bool) {
	v, ok := c.parameters[name]
	return v, ok
}

// Resolve returns service id as T.
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	inst, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("service %q is %T, not %s", id, inst, reflect.TypeOf((*T)(nil)).Elem())
	}
	return typed, nil
}

// source implementation

func (c *Container) lookup(id string) (*Definition, bool) {
	def, ok := c.definitions[id]
	return def, ok
}

func (c *Container) synthetic(id string) (any, bool) {
	inst, ok := c.instances[id]
	return inst, ok
}

func (c *Container) parameter(name string) (any, bool) {
	return c.Parameter(name)
}

func (c *Container) ids() []string {
	ids := make([]string, 0, len(c.definitions)+len(c.instances))
	for id := range c.definitions {
		ids = append(ids, id)
	}
	for id := range c.instances {
		ids = append(ids, id)
	}
	return ids
}
