package container

import "sort"

// FactoryRef names the service and method that build a definition's instance
// in place of a class constructor.
type FactoryRef struct {
	Service string
	Method  string
}

// MethodCall is a method invoked on an instance right after construction.
type MethodCall struct {
	Method    string
	Arguments []any
}

// Definition is the blueprint of one service.
type Definition struct {
	class     string
	file      string
	factory   *FactoryRef
	arguments []any
	calls     []MethodCall
	tags      map[string][]map[string]any
	shared    bool
}

// NewDefinition creates a shared definition for class.
func NewDefinition(class string, args ...any) *Definition {
	return &Definition{
		class:     class,
		arguments: args,
		tags:      make(map[string][]map[string]any),
		shared:    true,
	}
}

func (d *Definition) Class() string { return d.class }

func (d *Definition) SetClass(class string) *Definition {
	d.class = class
	return d
}

// File is the source file that declares the definition's class, if generated.
func (d *Definition) File() string { return d.file }

func (d *Definition) SetFile(file string) *Definition {
	d.file = file
	return d
}

// Factory returns nil when the instance is built by the class constructor.
func (d *Definition) Factory() *FactoryRef {
	if d.factory == nil {
		return nil
	}
	f := *d.factory
	return &f
}

func (d *Definition) SetFactory(service, method string) *Definition {
	d.factory = &FactoryRef{Service: service, Method: method}
	return d
}

func (d *Definition) Arguments() []any {
	out := make([]any, len(d.arguments))
	copy(out, d.arguments)
	return out
}

func (d *Definition) SetArguments(args ...any) *Definition {
	d.arguments = args
	return d
}

func (d *Definition) AddArgument(arg any) *Definition {
	d.arguments = append(d.arguments, arg)
	return d
}

func (d *Definition) MethodCalls() []MethodCall {
	out := make([]MethodCall, len(d.calls))
	copy(out, d.calls)
	return out
}

func (d *Definition) AddMethodCall(method string, args ...any) *Definition {
	d.calls = append(d.calls, MethodCall{Method: method, Arguments: args})
	return d
}

// HasMethodCall reports whether at least one call to method is registered.
func (d *Definition) HasMethodCall(method string) bool {
	for _, c := range d.calls {
		if c.Method == method {
			return true
		}
	}
	return false
}

// AddTag attaches tag with optional attributes. A tag may be added several times.
func (d *Definition) AddTag(tag string, attrs ...map[string]any) *Definition {
	if d.tags == nil {
		d.tags = make(map[string][]map[string]any)
	}
	attr := map[string]any{}
	for _, a := range attrs {
		for k, v := range a {
			attr[k] = v
		}
	}
	d.tags[tag] = append(d.tags[tag], attr)
	return d
}

func (d *Definition) HasTag(tag string) bool {
	_, ok := d.tags[tag]
	return ok
}

// Tag returns the attribute sets of tag.
func (d *Definition) Tag(tag string) []map[string]any {
	return d.tags[tag]
}

// Tags returns the tag names, sorted.
func (d *Definition) Tags() []string {
	names := make([]string, 0, len(d.tags))
	for name := range d.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Definition) ClearTag(tag string) *Definition {
	delete(d.tags, tag)
	return d
}

// IsShared reports whether one instance is reused for every Get. Defaults to true.
func (d *Definition) IsShared() bool { return d.shared }

func (d *Definition) SetShared(shared bool) *Definition {
	d.shared = shared
	return d
}

// Clone returns a copy whose slices and maps can be mutated independently.
// Argument values themselves are shared.
func (d *Definition) Clone() *Definition {
	c := &Definition{
		class:     d.class,
		file:      d.file,
		factory:   d.Factory(),
		arguments: d.Arguments(),
		shared:    d.shared,
		tags:      make(map[string][]map[string]any, len(d.tags)),
	}
	for _, call := range d.calls {
		args := make([]any, len(call.Arguments))
		copy(args, call.Arguments)
		c.calls = append(c.calls, MethodCall{Method: call.Method, Arguments: args})
	}
	for name, sets := range d.tags {
		for _, attrs := range sets {
			cp := make(map[string]any, len(attrs))
			for k, v := range attrs {
				cp[k] = v
			}
			c.tags[name] = append(c.tags[name], cp)
		}
	}
	return c
}
