package generator

import (
	"bufio"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/toyz/cachewire/internal/container"
	"github.com/toyz/cachewire/internal/errors"
	"github.com/toyz/cachewire/internal/templates"
	"github.com/toyz/cachewire/internal/utils"
	"github.com/toyz/cachewire/pkg/cache"
	"github.com/toyz/cachewire/pkg/proxy"
)

const (
	// ProxyClassPrefix starts every generated proxy class name
	ProxyClassPrefix = "CacheProxy_"

	proxyFilePrefix = "cacheproxy_"
	generatedMarker = "// Code generated by cachewire. DO NOT EDIT."
	defaultProxyPkg = "proxies"
	defaultProxyDir = "var/cache/proxies"
)

// ProxyDescriptor describes one generated proxy class
type ProxyDescriptor struct {
	Class     string // generated proxy class name
	Target    string // class the proxy wraps
	File      string // path of the generated source file
	Generated bool   // false when an existing file was reused
}

// ProxyFactory generates recording proxy classes for cache pool classes.
// Proxy sources are written once into Dir and reused afterwards.
type ProxyFactory struct {
	dir     string
	pkg     string
	classes ClassRegistrar
	modules *utils.GoModParser

	mu      sync.Mutex
	proxies map[string]ProxyDescriptor
}

// NewProxyFactory creates a factory writing into dir. classes may be nil, in
// which case generated proxies are not registered as constructible classes.
func NewProxyFactory(dir string, classes ClassRegistrar) *ProxyFactory {
	if dir == "" {
		dir = defaultProxyDir
	}
	return &ProxyFactory{
		dir:     dir,
		pkg:     packageName(dir),
		classes: classes,
		modules: utils.NewGoModParser(),
		proxies: make(map[string]ProxyDescriptor),
	}
}

// Dir returns the directory generated proxies are written to
func (f *ProxyFactory) Dir() string {
	return f.dir
}

// Package returns the Go package name of generated proxies
func (f *ProxyFactory) Package() string {
	return f.pkg
}

// ProxyClass returns the proxy class name for class. The name is stable
// across runs: CacheProxy_<identifier>_<hash>.
func (f *ProxyFactory) ProxyClass(class string) string {
	return fmt.Sprintf("%s%s_%08x", ProxyClassPrefix, identifier(class), uint32(xxhash.Sum64String(class)))
}

// CreateProxy makes sure the proxy source for class exists and returns its path
func (f *ProxyFactory) CreateProxy(class string) (string, error) {
	desc, err := f.Describe(class)
	if err != nil {
		return "", err
	}
	return desc.File, nil
}

// Describe generates the proxy for class when needed and returns its descriptor
func (f *ProxyFactory) Describe(class string) (ProxyDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if desc, ok := f.proxies[class]; ok {
		return desc, nil
	}

	if f.classes != nil && !f.classes.Has(class) {
		err := errors.NewClassNotFoundError(class, "")
		err.WithSuggestion("Only registered cache pool classes can be proxied")
		return ProxyDescriptor{}, err
	}

	proxyClass := f.ProxyClass(class)
	desc := ProxyDescriptor{
		Class:  proxyClass,
		Target: class,
		File:   filepath.Join(f.dir, proxyFilePrefix+strings.ToLower(strings.TrimPrefix(proxyClass, ProxyClassPrefix))+".go"),
	}

	if _, err := os.Stat(desc.File); err != nil {
		if !os.IsNotExist(err) {
			return ProxyDescriptor{}, errors.WrapFileSystemError("stat", desc.File, err)
		}
		if err := f.writeProxy(desc); err != nil {
			return ProxyDescriptor{}, err
		}
		desc.Generated = true
	}

	if err := f.register(desc); err != nil {
		return ProxyDescriptor{}, err
	}

	f.proxies[class] = desc
	return desc, nil
}

// Proxies returns the proxies produced so far, sorted by target class
func (f *ProxyFactory) Proxies() []ProxyDescriptor {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]ProxyDescriptor, 0, len(f.proxies))
	for _, desc := range f.proxies {
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// ImportPath returns the import path of the proxy package, resolved from the
// go.mod enclosing Dir
func (f *ProxyFactory) ImportPath() (string, error) {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return "", errors.WrapFileSystemError("create", f.dir, err)
	}
	path, err := f.modules.ImportPath(f.dir)
	if err != nil {
		return "", errors.WrapConfigurationError("go.mod", "resolve", err).
			WithSuggestion("Place the proxy directory inside a Go module")
	}
	return path, nil
}

// Clean removes every generated proxy file from Dir and returns the removed paths
func (f *ProxyFactory) Clean() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapFileSystemError("read", f.dir, err)
	}

	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, proxyFilePrefix) || !strings.HasSuffix(name, ".go") {
			continue
		}
		path := filepath.Join(f.dir, name)
		if !isGenerated(path) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, errors.WrapFileSystemError("remove", path, err)
		}
		removed = append(removed, path)
	}

	f.proxies = make(map[string]ProxyDescriptor)
	return removed, nil
}

func (f *ProxyFactory) writeProxy(desc ProxyDescriptor) error {
	src, err := templates.GenerateProxyFile(templates.ProxyTemplateData{
		Package:     f.pkg,
		ProxyClass:  desc.Class,
		TargetClass: desc.Target,
	})
	if err != nil {
		return errors.WrapGenerateError("proxy", desc.File, err)
	}
	if err := utils.FormatAndWriteGoFile(desc.File, src); err != nil {
		return errors.WrapFileSystemError("write", desc.File, err)
	}
	return nil
}

// register makes the proxy class constructible: it builds the target class
// and wraps the resulting pool in a recording proxy.
func (f *ProxyFactory) register(desc ProxyDescriptor) error {
	if f.classes == nil || f.classes.Has(desc.Class) {
		return nil
	}

	classes, target := f.classes, desc.Target
	return f.classes.Register(desc.Class, func(args []any) (any, error) {
		ctor, ok := classes.Lookup(target)
		if !ok {
			return nil, fmt.Errorf("proxied class %q is not registered", target)
		}
		inst, err := ctor(args)
		if err != nil {
			return nil, err
		}
		pool, ok := inst.(cache.Pool)
		if !ok {
			return nil, fmt.Errorf("class %q built %T, which is not a cache.Pool", target, inst)
		}
		return proxy.NewRecordingPool(pool), nil
	})
}

var _ ClassRegistrar = (*container.ClassRegistry)(nil)

// identifier turns a class name into a Go identifier fragment
func identifier(class string) string {
	var b strings.Builder
	for _, r := range class {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// packageName derives the package clause for generated files from dir
func packageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(filepath.Base(filepath.Clean(dir))) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) || token.IsKeyword(name) {
		return defaultProxyPkg
	}
	return name
}

func isGenerated(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	return scanner.Scan() && strings.TrimSpace(scanner.Text()) == generatedMarker
}
