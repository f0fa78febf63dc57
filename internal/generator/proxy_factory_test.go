package generator

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/cachewire/internal/container"
	"github.com/toyz/cachewire/internal/errors"
	"github.com/toyz/cachewire/pkg/cache"
	"github.com/toyz/cachewire/pkg/proxy"
)

func newTestFactory(t *testing.T) (*ProxyFactory, *container.ClassRegistry, string) {
	t.Helper()
	classes := container.NewClassRegistry()
	require.NoError(t, classes.Register(cache.MemoryPoolClass, func(args []any) (any, error) {
		return cache.NewMemoryPool(cache.Options{Size: 10}), nil
	}))
	dir := filepath.Join(t.TempDir(), "proxies")
	return NewProxyFactory(dir, classes), classes, dir
}

func TestProxyClassIsStable(t *testing.T) {
	f := NewProxyFactory(t.TempDir(), nil)

	name := f.ProxyClass("cache.MemoryPool")
	assert.True(t, strings.HasPrefix(name, "CacheProxy_cache_MemoryPool_"), name)
	assert.Len(t, strings.TrimPrefix(name, "CacheProxy_cache_MemoryPool_"), 8)
	assert.Equal(t, name, f.ProxyClass("cache.MemoryPool"))
	assert.NotEqual(t, name, f.ProxyClass("cache.RedisPool"))

	// Distinct classes that sanitize to the same identifier still differ by hash.
	assert.NotEqual(t, f.ProxyClass("a.b"), f.ProxyClass("a_b"))
}

func TestCreateProxyWritesFileOnce(t *testing.T) {
	f, _, dir := newTestFactory(t)

	desc, err := f.Describe(cache.MemoryPoolClass)
	require.NoError(t, err)
	assert.True(t, desc.Generated)
	assert.Equal(t, f.ProxyClass(cache.MemoryPoolClass), desc.Class)
	assert.Equal(t, dir, filepath.Dir(desc.File))

	data, err := os.ReadFile(desc.File)
	require.NoError(t, err)
	src := string(data)
	assert.True(t, strings.HasPrefix(src, generatedMarker))
	assert.Contains(t, src, "package proxies")
	assert.Contains(t, src, "type "+desc.Class+" struct")

	file, err := f.CreateProxy(cache.MemoryPoolClass)
	require.NoError(t, err)
	assert.Equal(t, desc.File, file)

	// A new factory over the same directory reuses the existing file.
	classes := container.NewClassRegistry()
	require.NoError(t, classes.Register(cache.MemoryPoolClass, func([]any) (any, error) { return cache.NewMemoryPool(cache.Options{}), nil }))
	again, err := NewProxyFactory(dir, classes).Describe(cache.MemoryPoolClass)
	require.NoError(t, err)
	assert.False(t, again.Generated)
	assert.Equal(t, desc.File, again.File)
}

func TestCreateProxyRegistersConstructibleClass(t *testing.T) {
	f, classes, _ := newTestFactory(t)

	_, err := f.CreateProxy(cache.MemoryPoolClass)
	require.NoError(t, err)

	ctor, ok := classes.Lookup(f.ProxyClass(cache.MemoryPoolClass))
	require.True(t, ok)

	inst, err := ctor(nil)
	require.NoError(t, err)
	rec, ok := inst.(*proxy.RecordingPool)
	require.True(t, ok, "proxy constructor must return a recording pool, got %T", inst)
	assert.IsType(t, &cache.MemoryPool{}, rec.Inner())
}

func TestCreateProxyRejectsNonPoolClass(t *testing.T) {
	f, classes, _ := newTestFactory(t)
	require.NoError(t, classes.Register("app.NotAPool", func([]any) (any, error) { return "nope", nil }))

	_, err := f.CreateProxy("app.NotAPool")
	require.NoError(t, err)

	ctor, ok := classes.Lookup(f.ProxyClass("app.NotAPool"))
	require.True(t, ok)
	_, err = ctor(nil)
	assert.ErrorContains(t, err, "not a cache.Pool")
}

func TestCreateProxyUnknownClass(t *testing.T) {
	f, _, dir := newTestFactory(t)

	_, err := f.CreateProxy("app.Missing")
	require.Error(t, err)

	var notFound *errors.ClassNotFoundError
	require.True(t, stderrors.As(err, &notFound))
	assert.Equal(t, "app.Missing", notFound.Class)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "nothing should be written for unknown classes")
}

func TestProxiesSorted(t *testing.T) {
	f, classes, _ := newTestFactory(t)
	require.NoError(t, classes.Register("a.Pool", func([]any) (any, error) { return cache.NewMemoryPool(cache.Options{}), nil }))

	_, err := f.CreateProxy(cache.MemoryPoolClass)
	require.NoError(t, err)
	_, err = f.CreateProxy("a.Pool")
	require.NoError(t, err)

	proxies := f.Proxies()
	require.Len(t, proxies, 2)
	assert.Equal(t, "a.Pool", proxies[0].Target)
	assert.Equal(t, cache.MemoryPoolClass, proxies[1].Target)
}

func TestClean(t *testing.T) {
	f, _, dir := newTestFactory(t)

	file, err := f.CreateProxy(cache.MemoryPoolClass)
	require.NoError(t, err)

	handwritten := filepath.Join(dir, "cacheproxy_custom.go")
	require.NoError(t, os.WriteFile(handwritten, []byte("package proxies\n"), 0644))

	removed, err := f.Clean()
	require.NoError(t, err)
	assert.Equal(t, []string{file}, removed)

	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(handwritten)
	assert.NoError(t, err, "files without the generated marker are kept")

	// After cleaning, the proxy is generated again on demand.
	desc, err := f.Describe(cache.MemoryPoolClass)
	require.NoError(t, err)
	assert.True(t, desc.Generated)
}

func TestCleanMissingDirectory(t *testing.T) {
	f := NewProxyFactory(filepath.Join(t.TempDir(), "absent"), nil)

	removed, err := f.Clean()
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestImportPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n"), 0644))

	f := NewProxyFactory(filepath.Join(root, "var", "proxies"), nil)

	path, err := f.ImportPath()
	require.NoError(t, err)
	assert.Equal(t, "example.com/app/var/proxies", path)
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"var/cache/proxies": "proxies",
		"gen-proxies":       "genproxies",
		".":                 "proxies",
		"2024":              "proxies",
		"out/type":          "proxies",
		"Proxies":           "proxies",
	}

	for dir, want := range tests {
		assert.Equal(t, want, packageName(dir), dir)
	}
}
