// Package container implements the service container: definitions are
// registered on a Builder, compiler passes rewrite them, and Compile freezes
// the graph into a Container that instantiates services on demand.
package container

import (
	"fmt"
	"slices"
	"sort"

	"github.com/toyz/cachewire/internal/errors"
)

// Builder holds the definition graph while it is being assembled. It is owned
// by a single goroutine until Compile.
type Builder struct {
	definitions map[string]*Definition
	instances   map[string]any
	parameters  map[string]any
	classes     *ClassRegistry
	passes      []CompilerPass
	resolver    *resolver
	frozen      bool
}

// NewBuilder creates an empty builder. A nil registry gets a fresh one.
func NewBuilder(classes *ClassRegistry) *Builder {
	if classes == nil {
		classes = NewClassRegistry()
	}
	b := &Builder{
		definitions: make(map[string]*Definition),
		instances:   make(map[string]any),
		parameters:  make(map[string]any),
		classes:     classes,
	}
	b.resolver = newResolver(b, classes)
	return b
}

// Classes returns the class registry used to instantiate definitions.
func (b *Builder) Classes() *ClassRegistry {
	return b.classes
}

// Register creates a definition for class under id, replacing any existing one.
func (b *Builder) Register(id, class string, args ...any) (*Definition, error) {
	def := NewDefinition(class, args...)
	if err := b.SetDefinition(id, def); err != nil {
		return nil, err
	}
	return def, nil
}

// SetDefinition stores def under id, replacing any existing definition.
func (b *Builder) SetDefinition(id string, def *Definition) error {
	if b.frozen {
		return errors.NewFrozenContainerError("SetDefinition(" + id + ")")
	}
	if id == "" {
		return errors.NewRegistrationError("service", id, "service id is empty")
	}
	if def == nil {
		return errors.NewRegistrationError("service", id, "definition is nil")
	}
	b.definitions[id] = def
	delete(b.resolver.instances, id)
	return nil
}

// RemoveDefinition deletes the definition of id, if any.
func (b *Builder) RemoveDefinition(id string) error {
	if b.frozen {
		return errors.NewFrozenContainerError("RemoveDefinition(" + id + ")")
	}
	delete(b.definitions, id)
	delete(b.resolver.instances, id)
	return nil
}

func (b *Builder) HasDefinition(id string) bool {
	_, ok := b.definitions[id]
	return ok
}

// Definition returns the definition registered under id.
func (b *Builder) Definition(id string) (*Definition, error) {
	def, ok := b.definitions[id]
	if !ok {
		return nil, errors.NewServiceNotFoundError(id, "", b.ids())
	}
	return def, nil
}

// Definitions returns every definition id, sorted.
func (b *Builder) Definitions() []string {
	ids := make([]string, 0, len(b.definitions))
	for id := range b.definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FindTaggedServiceIDs returns the ids carrying tag mapped to their tag attributes.
func (b *Builder) FindTaggedServiceIDs(tag string) map[string][]map[string]any {
	out := make(map[string][]map[string]any)
	for id, def := range b.definitions {
		if def.HasTag(tag) {
			out[id] = def.Tag(tag)
		}
	}
	return out
}

// TaggedIDs returns the ids carrying tag, sorted.
func (b *Builder) TaggedIDs(tag string) []string {
	tagged := b.FindTaggedServiceIDs(tag)
	ids := make([]string, 0, len(tagged))
	for id := range tagged {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Set registers a pre-built instance under id.
func (b *Builder) Set(id string, instance any) error {
	if b.frozen {
		return errors.NewFrozenContainerError("Set(" + id + ")")
	}
	b.instances[id] = instance
	return nil
}

// Has reports whether id is a definition or a pre-built instance.
func (b *Builder) Has(id string) bool {
	if _, ok := b.instances[id]; ok {
		return true
	}
	return b.HasDefinition(id)
}

// Get returns the service id, instantiating its definition if needed. Build-time
// instances are cached by the builder and are not shared with the compiled Container.
func (b *Builder) Get(id string) (any, error) {
	return b.resolver.get(id, "", false)
}

func (b *Builder) SetParameter(name string, value any) error {
	if b.frozen {
		return errors.NewFrozenContainerError("SetParameter(" + name + ")")
	}
	b.parameters[name] = value
	return nil
}

func (b *Builder) Parameter(name string) (any, bool) {
	v, ok := b.parameters[name]
	return v, ok
}

// AddCompilerPass queues pass to run during Compile, in registration order.
func (b *Builder) AddCompilerPass(pass CompilerPass) error {
	if b.frozen {
		return errors.NewFrozenContainerError("AddCompilerPass")
	}
	b.passes = append(b.passes, pass)
	return nil
}

func (b *Builder) IsCompiled() bool {
	return b.frozen
}

// Compile runs every compiler pass, checks that all references resolve and
// freezes the builder. The first failing pass aborts compilation.
func (b *Builder) Compile() (*Container, error) {
	if b.frozen {
		return nil, errors.NewFrozenContainerError("Compile")
	}

	passes := append(slices.Clone(b.passes), CheckReferencesPass{})
	for _, pass := range passes {
		if err := pass.Process(b); err != nil {
			return nil, errors.Wrapf(errors.CodeOf(err), err, "compiler pass %s failed", PassName(pass))
		}
	}

	b.frozen = true
	return newContainer(b), nil
}

// source implementation

func (b *Builder) lookup(id string) (*Definition, bool) {
	def, ok := b.definitions[id]
	return def, ok
}

func (b *Builder) synthetic(id string) (any, bool) {
	inst, ok := b.instances[id]
	return inst, ok
}

func (b *Builder) parameter(name string) (any, bool) {
	return b.Parameter(name)
}

func (b *Builder) ids() []string {
	ids := b.Definitions()
	for id := range b.instances {
		ids = append(ids, id)
	}
	return ids
}

func (b *Builder) String() string {
	return fmt.Sprintf("container.Builder(%d definitions, %d passes)", len(b.definitions), len(b.passes))
}
