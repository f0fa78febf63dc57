// Package config loads service definitions from YAML services files and the
// CLI settings.
package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/cachewire/internal/container"
	"github.com/toyz/cachewire/internal/errors"
	"github.com/toyz/cachewire/internal/utils"
)

// ServicesFile is the decoded form of a services file.
type ServicesFile struct {
	Parameters map[string]any         `yaml:"parameters"`
	Services   map[string]*ServiceDTO `yaml:"services"`
}

// ServiceDTO is one entry of the services section.
type ServiceDTO struct {
	Class     string     `yaml:"class"`
	Factory   FactoryDTO `yaml:"factory"`
	Arguments []any      `yaml:"arguments"`
	Calls     []CallDTO  `yaml:"calls"`
	Tags      []TagDTO   `yaml:"tags"`
	Shared    *bool      `yaml:"shared"`

	line, column int
}

func (s *ServiceDTO) UnmarshalYAML(node *yaml.Node) error {
	type plain ServiceDTO
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	s.line, s.column = node.Line, node.Column
	return nil
}

// FactoryDTO is written as "@service:Method" or ["@service", "Method"].
type FactoryDTO struct {
	Service string
	Method  string
}

func (f *FactoryDTO) UnmarshalYAML(node *yaml.Node) error {
	var service, method string
	switch node.Kind {
	case yaml.ScalarNode:
		var ok bool
		service, method, ok = strings.Cut(node.Value, ":")
		if !ok {
			return fmt.Errorf("line %d: factory %q must be written as \"@service:Method\"", node.Line, node.Value)
		}
	case yaml.SequenceNode:
		var parts []string
		if err := node.Decode(&parts); err != nil {
			return err
		}
		if len(parts) != 2 {
			return fmt.Errorf("line %d: factory must be a [service, method] pair", node.Line)
		}
		service, method = parts[0], parts[1]
	default:
		return fmt.Errorf("line %d: factory must be a string or a [service, method] pair", node.Line)
	}

	if !strings.HasPrefix(service, "@") {
		return fmt.Errorf("line %d: factory service %q must be a reference starting with '@'", node.Line, service)
	}
	f.Service, f.Method = strings.TrimPrefix(service, "@"), method
	return nil
}

// IsZero reports whether no factory was configured.
func (f FactoryDTO) IsZero() bool {
	return f.Service == "" && f.Method == ""
}

// CallDTO is written as [Method, [args...]] or {method: Method, arguments: [...]}.
type CallDTO struct {
	Method    string `yaml:"method"`
	Arguments []any  `yaml:"arguments"`
}

func (c *CallDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		type plain CallDTO
		return node.Decode((*plain)(c))
	}
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 || len(node.Content) > 2 {
		return fmt.Errorf("line %d: call must be [method] or [method, [arguments]]", node.Line)
	}
	if err := node.Content[0].Decode(&c.Method); err != nil {
		return err
	}
	if len(node.Content) == 2 {
		return node.Content[1].Decode(&c.Arguments)
	}
	return nil
}

// TagDTO is written as a tag name or {name: tag, attr: value, ...}.
type TagDTO struct {
	Name       string
	Attributes map[string]any
}

func (t *TagDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Name = node.Value
		return nil
	}
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	name, ok := raw["name"].(string)
	if !ok || name == "" {
		return fmt.Errorf("line %d: tag needs a name", node.Line)
	}
	delete(raw, "name")
	t.Name, t.Attributes = name, raw
	return nil
}

// Loader reads services files into a container builder. File contents are
// cached until the file changes, so one loader can recompile cheaply.
type Loader struct {
	files          *utils.FileReader
	validateID     utils.Validator[string]
	validateClass  utils.Validator[string]
	validateMethod utils.Validator[string]
}

// NewLoader creates a services file loader.
func NewLoader() *Loader {
	return &Loader{
		files:          utils.NewFileReader(),
		validateID:     utils.ValidateServiceID("id"),
		validateClass:  utils.ValidateClassName("class"),
		validateMethod: utils.ValidateMethodName("method"),
	}
}

// LoadFile reads path and registers its parameters and services on b.
func (l *Loader) LoadFile(path string, b *container.Builder) (*ServicesFile, error) {
	data, err := l.files.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return l.Load(path, data, b)
}

// Load decodes data and registers its parameters and services on b. name is
// used in error locations. All invalid services are reported together.
func (l *Loader) Load(name string, data []byte, b *container.Builder) (*ServicesFile, error) {
	var file ServicesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParseError(name, err)
	}

	for _, key := range sortedKeys(file.Parameters) {
		if err := b.SetParameter(key, file.Parameters[key]); err != nil {
			return nil, err
		}
	}

	params := func(name string) (any, bool) { return b.Parameter(name) }

	errs := errors.NewMultipleErrors()
	for _, id := range sortedKeys(file.Services) {
		svc := file.Services[id]
		if svc == nil {
			svc = &ServiceDTO{}
		}
		def, err := l.definition(id, svc, params)
		if err != nil {
			errs.Add(serviceError(name, id, svc, err))
			continue
		}
		if err := b.SetDefinition(id, def); err != nil {
			return nil, err
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return &file, nil
}

func (l *Loader) definition(id string, svc *ServiceDTO, params ParameterLookup) (*container.Definition, error) {
	if err := l.validateID(id); err != nil {
		return nil, err
	}
	if svc.Class == "" && svc.Factory.IsZero() {
		return nil, fmt.Errorf("service needs a class or a factory")
	}
	if svc.Class != "" {
		if err := l.validateClass(svc.Class); err != nil {
			return nil, err
		}
	}

	args, err := parseValues(svc.Arguments, params)
	if err != nil {
		return nil, err
	}
	def := container.NewDefinition(svc.Class, args...)

	if !svc.Factory.IsZero() {
		if err := l.validateID(svc.Factory.Service); err != nil {
			return nil, err
		}
		if err := l.validateMethod(svc.Factory.Method); err != nil {
			return nil, err
		}
		def.SetFactory(svc.Factory.Service, svc.Factory.Method)
	}

	for _, call := range svc.Calls {
		if err := l.validateMethod(call.Method); err != nil {
			return nil, err
		}
		callArgs, err := parseValues(call.Arguments, params)
		if err != nil {
			return nil, err
		}
		def.AddMethodCall(call.Method, callArgs...)
	}

	for _, tag := range svc.Tags {
		if tag.Attributes != nil {
			def.AddTag(tag.Name, tag.Attributes)
		} else {
			def.AddTag(tag.Name)
		}
	}

	if svc.Shared != nil {
		def.SetShared(*svc.Shared)
	}
	return def, nil
}

func parseValues(values []any, params ParameterLookup) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		parsed, err := ParseValue(v, params)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}

func serviceError(file, id string, svc *ServiceDTO, err error) errors.WireError {
	code := errors.CodeOf(err)
	if code == errors.UnknownErrorCode {
		code = errors.ConfigurationErrorCode
	}
	loc := errors.SourceLocation{File: file, Line: svc.line, Column: svc.column}
	return errors.Wrapf(code, err, "service %q", id).WithLocation(loc)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
