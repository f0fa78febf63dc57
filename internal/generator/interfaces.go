package generator

import "github.com/toyz/cachewire/internal/container"

// ClassRegistrar is the part of the class registry the proxy factory needs
// to make generated proxy classes constructible at runtime.
type ClassRegistrar interface {
	Register(class string, ctor container.Constructor) error
	Lookup(class string) (container.Constructor, bool)
	Has(class string) bool
}
