package container

import (
	"fmt"
	"sort"

	"github.com/toyz/cachewire/internal/errors"
)

// CompilerPass rewrites the definition graph during Compile.
type CompilerPass interface {
	Process(b *Builder) error
}

// PassFunc adapts a function to CompilerPass.
type PassFunc func(b *Builder) error

func (f PassFunc) Process(b *Builder) error { return f(b) }

// PassName returns the pass's Name() when it has one, its type otherwise.
func PassName(p CompilerPass) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// CheckReferencesPass verifies that every required reference and factory
// service exists. It always runs last.
type CheckReferencesPass struct{}

func (CheckReferencesPass) Name() string { return "check-references" }

func (CheckReferencesPass) Process(b *Builder) error {
	errs := errors.NewMultipleErrors()
	known := b.ids()

	for _, id := range b.Definitions() {
		def := b.definitions[id]
		var missing []string

		if f := def.factory; f != nil && !b.Has(f.Service) {
			missing = append(missing, f.Service)
		}
		missing = append(missing, missingRefs(b, def.arguments)...)
		for _, call := range def.calls {
			missing = append(missing, missingRefs(b, call.Arguments)...)
		}

		sort.Strings(missing)
		for _, ref := range missing {
			errs.Add(errors.NewServiceNotFoundError(ref, id, known))
		}
	}

	return errs.ErrorOrNil()
}

func missingRefs(b *Builder, values []any) []string {
	var out []string
	for _, v := range values {
		switch val := v.(type) {
		case Reference:
			if !val.Optional && !b.Has(val.ID) {
				out = append(out, val.ID)
			}
		case []any:
			out = append(out, missingRefs(b, val)...)
		case map[string]any:
			for _, item := range val {
				out = append(out, missingRefs(b, []any{item})...)
			}
		}
	}
	return out
}
