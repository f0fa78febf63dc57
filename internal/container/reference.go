package container

import "fmt"

// Reference is an argument value that resolves to another service.
type Reference struct {
	ID string
	// Optional references resolve to nil when the service does not exist.
	Optional bool
}

// Ref returns a required reference to id.
func Ref(id string) Reference {
	return Reference{ID: id}
}

// OptionalRef returns a reference that resolves to nil when id is missing.
func OptionalRef(id string) Reference {
	return Reference{ID: id, Optional: true}
}

func (r Reference) String() string {
	if r.Optional {
		return "@?" + r.ID
	}
	return "@" + r.ID
}

// Parameter is an argument value that resolves to a container parameter.
type Parameter struct {
	Name string
}

// Param returns a parameter placeholder for name.
func Param(name string) Parameter {
	return Parameter{Name: name}
}

func (p Parameter) String() string {
	return fmt.Sprintf("%%%s%%", p.Name)
}
