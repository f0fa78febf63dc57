package errors

import (
	"fmt"
	"strings"
)

// UnsupportedFactoryError is returned when a cache provider is built by a
// factory that does not implement the adapter factory capability.
type UnsupportedFactoryError struct {
	*BaseError
	FactoryID string
	ServiceID string
}

// NewUnsupportedFactoryError creates the error for factoryID used by serviceID
func NewUnsupportedFactoryError(factoryID, serviceID string, factory interface{}) *UnsupportedFactoryError {
	message := fmt.Sprintf("cache factory %q of service %q does not implement AdapterFactory (this is not supported for now)", factoryID, serviceID)
	base := New(ConfigurationErrorCode, message).
		WithContext("factory_id", factoryID).
		WithContext("service_id", serviceID).
		WithContext("factory_type", fmt.Sprintf("%T", factory)).
		WithSuggestion("Embed cache.AbstractAdapterFactory or implement ProducedClass() and CreateAdapter()")
	return &UnsupportedFactoryError{
		BaseError: base,
		FactoryID: factoryID,
		ServiceID: serviceID,
	}
}

// ServiceNotFoundError is returned when a service id has no definition
type ServiceNotFoundError struct {
	*BaseError
	ServiceID    string
	ReferencedBy string
}

// NewServiceNotFoundError creates a missing service error
func NewServiceNotFoundError(id, referencedBy string, known []string) *ServiceNotFoundError {
	message := fmt.Sprintf("service %q does not exist", id)
	if referencedBy != "" {
		message = fmt.Sprintf("service %q referenced by %q does not exist", id, referencedBy)
	}
	base := New(DependencyErrorCode, message).WithContext("service_id", id)
	if alt := closest(id, known); alt != "" {
		base.WithSuggestion(fmt.Sprintf("Did you mean %q?", alt))
	}
	return &ServiceNotFoundError{BaseError: base, ServiceID: id, ReferencedBy: referencedBy}
}

// ClassNotFoundError is returned when a definition names an unregistered class
type ClassNotFoundError struct {
	*BaseError
	Class string
}

// NewClassNotFoundError creates a missing class error
func NewClassNotFoundError(class, serviceID string) *ClassNotFoundError {
	message := fmt.Sprintf("class %q is not registered", class)
	if serviceID != "" {
		message = fmt.Sprintf("class %q of service %q is not registered", class, serviceID)
	}
	base := New(DependencyErrorCode, message).
		WithContext("class", class).
		WithContext("service_id", serviceID).
		WithSuggestion("Register the class constructor with ClassRegistry.Register before compiling")
	return &ClassNotFoundError{BaseError: base, Class: class}
}

// CircularReferenceError is returned when instantiation loops back on itself
type CircularReferenceError struct {
	*BaseError
	Path []string
}

// NewCircularReferenceError creates a cycle error for the given resolution path
func NewCircularReferenceError(path []string) *CircularReferenceError {
	base := Newf(DependencyErrorCode, "circular reference detected: %s", strings.Join(path, " -> ")).
		WithContext("path", path)
	return &CircularReferenceError{BaseError: base, Path: path}
}

// NewFrozenContainerError reports a mutation attempted after compilation
func NewFrozenContainerError(operation string) *RegistrationError {
	err := NewRegistrationError("service", operation, "container is compiled and frozen")
	err.WithSuggestion("Register definitions and compiler passes before calling Compile")
	return err
}

// closest returns the known id sharing the longest prefix with id
func closest(id string, known []string) string {
	best, bestLen := "", 0
	for _, k := range known {
		n := 0
		for n < len(k) && n < len(id) && k[n] == id[n] {
			n++
		}
		if n > bestLen {
			best, bestLen = k, n
		}
	}
	if bestLen < 3 {
		return ""
	}
	return best
}
