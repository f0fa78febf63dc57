package container

import (
	"fmt"
	"reflect"

	"github.com/toyz/cachewire/internal/errors"
	"github.com/toyz/cachewire/internal/utils"
)

// Constructor builds an instance of a class from resolved arguments.
type Constructor func(args []any) (any, error)

// ClassRegistry maps class names used in definitions to Go constructors.
type ClassRegistry struct {
	ctors *utils.Registry[string, Constructor]
}

// NewClassRegistry creates an empty registry.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{ctors: utils.NewRegistry("class", utils.NoDuplicateValidator[string, Constructor]("class"))}
}

// Register adds ctor under class. Registering a class twice is an error.
func (r *ClassRegistry) Register(class string, ctor Constructor) error {
	if class == "" {
		return errors.NewRegistrationError("class", class, "class name is empty")
	}
	if ctor == nil {
		return errors.NewRegistrationError("class", class, "constructor is nil")
	}
	if err := r.ctors.Register(class, ctor); err != nil {
		return errors.NewRegistrationError("class", class, "already registered")
	}
	return nil
}

// Provide registers an ordinary Go function as the constructor of class.
// fn may return (T), (T, error) or (error); arguments are converted to its
// parameter types when the instance is built.
func (r *ClassRegistry) Provide(class string, fn any) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return errors.NewRegistrationError("class", class, fmt.Sprintf("constructor must be a function, got %T", fn))
	}
	if v.Type().NumOut() == 0 || v.Type().NumOut() > 2 {
		return errors.NewRegistrationError("class", class, "constructor must return an instance and optionally an error")
	}
	return r.Register(class, func(args []any) (any, error) {
		return callFunc(v, args)
	})
}

// MustProvide is Provide that panics, for static registrations.
func (r *ClassRegistry) MustProvide(class string, fn any) {
	if err := r.Provide(class, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the constructor of class.
func (r *ClassRegistry) Lookup(class string) (Constructor, bool) {
	return r.ctors.Get(class)
}

func (r *ClassRegistry) Has(class string) bool {
	return r.ctors.Has(class)
}

// Classes returns the registered class names, sorted.
func (r *ClassRegistry) Classes() []string {
	return r.ctors.List()
}
