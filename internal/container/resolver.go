package container

import (
	"slices"

	"github.com/toyz/cachewire/internal/errors"
)

// source is the read side of a definition graph shared by Builder and Container.
type source interface {
	lookup(id string) (*Definition, bool)
	synthetic(id string) (any, bool)
	parameter(name string) (any, bool)
	ids() []string
}

// resolver instantiates services from a source. It is not safe for concurrent
// use; callers serialize access.
type resolver struct {
	src       source
	classes   *ClassRegistry
	instances map[string]any
	loading   []string
}

func newResolver(src source, classes *ClassRegistry) *resolver {
	return &resolver{
		src:       src,
		classes:   classes,
		instances: make(map[string]any),
	}
}

func (r *resolver) get(id, referencedBy string, optional bool) (any, error) {
	if inst, ok := r.src.synthetic(id); ok {
		return inst, nil
	}
	if inst, ok := r.instances[id]; ok {
		return inst, nil
	}

	def, ok := r.src.lookup(id)
	if !ok {
		if optional {
			return nil, nil
		}
		return nil, errors.NewServiceNotFoundError(id, referencedBy, r.src.ids())
	}

	if slices.Contains(r.loading, id) {
		path := append(slices.Clone(r.loading), id)
		return nil, errors.NewCircularReferenceError(path)
	}
	r.loading = append(r.loading, id)
	defer func() { r.loading = r.loading[:len(r.loading)-1] }()

	return r.instantiate(id, def)
}

func (r *resolver) instantiate(id string, def *Definition) (any, error) {
	args, err := r.resolveValues(id, def.arguments)
	if err != nil {
		return nil, err
	}

	var instance any
	if f := def.factory; f != nil {
		factory, err := r.get(f.Service, id, false)
		if err != nil {
			return nil, errors.WrapDependencyError("factory", f.Service, err)
		}
		instance, err = invokeMethod(factory, f.Method, args)
		if err != nil {
			return nil, errors.Wrapf(errors.DependencyErrorCode, err, "failed to build service %q with factory %q", id, f.Service)
		}
	} else {
		ctor, ok := r.classes.Lookup(def.class)
		if !ok {
			return nil, errors.NewClassNotFoundError(def.class, id)
		}
		instance, err = ctor(args)
		if err != nil {
			return nil, errors.Wrapf(errors.DependencyErrorCode, err, "failed to construct service %q of class %q", id, def.class)
		}
	}

	// Shared instances are cached before method calls run so calls may refer back to them.
	if def.shared {
		r.instances[id] = instance
	}

	for _, call := range def.calls {
		callArgs, err := r.resolveValues(id, call.Arguments)
		if err != nil {
			delete(r.instances, id)
			return nil, err
		}
		if _, err := invokeMethod(instance, call.Method, callArgs); err != nil {
			delete(r.instances, id)
			return nil, errors.Wrapf(errors.DependencyErrorCode, err, "method call %s on service %q failed", call.Method, id)
		}
	}

	return instance, nil
}

func (r *resolver) resolveValues(owner string, values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		resolved, err := r.resolveValue(owner, v)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func (r *resolver) resolveValue(owner string, v any) (any, error) {
	switch val := v.(type) {
	case Reference:
		return r.get(val.ID, owner, val.Optional)
	case Parameter:
		p, ok := r.src.parameter(val.Name)
		if !ok {
			return nil, errors.ConfigurationError("parameters", "parameter "+val.Name+" is not defined").
				WithContext("service_id", owner)
		}
		return r.resolveValue(owner, p)
	case []any:
		return r.resolveValues(owner, val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			resolved, err := r.resolveValue(owner, item)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}
