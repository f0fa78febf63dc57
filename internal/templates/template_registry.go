package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerProxyTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// registerProxyTemplates registers the cache proxy templates
func (tr *TemplateRegistry) registerProxyTemplates() {
	tr.templates["proxy-file"] = `// Code generated by cachewire. DO NOT EDIT.

package {{.Package}}

import (
	"{{.CacheImport}}"
	"{{.ProxyImport}}"
)

{{template "proxy-type" .}}
`

	tr.templates["proxy-type"] = `// {{.ProxyClass}}Target is the class wrapped by {{.ProxyClass}}.
const {{.ProxyClass}}Target = {{printf "%q" .TargetClass}}

// {{.ProxyClass}} records every call made to a {{.TargetClass}} pool.
type {{.ProxyClass}} struct {
	*proxy.RecordingPool
}

// New{{.ProxyClass}} wraps inner in a recording proxy.
func New{{.ProxyClass}}(inner cache.Pool) *{{.ProxyClass}} {
	return &{{.ProxyClass}}{RecordingPool: proxy.NewRecordingPool(inner)}
}
`
}
