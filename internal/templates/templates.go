package templates

import (
	"bytes"
	"text/template"

	"github.com/toyz/cachewire/internal/errors"
)

const (
	// DefaultCacheImport is the import path of the pool interfaces
	DefaultCacheImport = "github.com/toyz/cachewire/pkg/cache"
	// DefaultProxyImport is the import path of the recording pool
	DefaultProxyImport = "github.com/toyz/cachewire/pkg/proxy"
)

// ProxyTemplateData carries everything the proxy templates need
type ProxyTemplateData struct {
	Package     string
	ProxyClass  string
	TargetClass string
	CacheImport string
	ProxyImport string
}

// GenerateProxyFile renders a complete Go source file for one proxy class
func GenerateProxyFile(data ProxyTemplateData) (string, error) {
	if data.CacheImport == "" {
		data.CacheImport = DefaultCacheImport
	}
	if data.ProxyImport == "" {
		data.ProxyImport = DefaultProxyImport
	}
	if data.Package == "" {
		return "", errors.NewGenerationError("proxy package name cannot be empty").WithStage("render")
	}
	if data.ProxyClass == "" {
		return "", errors.NewGenerationError("proxy class name cannot be empty").WithStage("render")
	}

	registry := NewTemplateRegistry()
	return executeTemplate("proxy-file", registry.MustGet("proxy-file"), data, map[string]string{
		"proxy-type": registry.MustGet("proxy-type"),
	})
}

// executeTemplate executes a Go template with the given data and named sub-templates
func executeTemplate(name, templateStr string, data interface{}, partials map[string]string) (string, error) {
	tmpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return "", errors.WrapTemplateError(name, "parse", err)
	}
	for partial, body := range partials {
		if _, err := tmpl.New(partial).Parse(body); err != nil {
			return "", errors.WrapTemplateError(partial, "parse", err)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}

	return buf.String(), nil
}

// ExecuteTemplate executes a Go template with the given data (exported version)
func ExecuteTemplate(name, templateStr string, data interface{}) (string, error) {
	return executeTemplate(name, templateStr, data, nil)
}
