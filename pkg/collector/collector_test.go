package collector

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/cachewire/pkg/cache"
	"github.com/toyz/cachewire/pkg/proxy"
)

func newProxy(name string) *proxy.RecordingPool {
	p := proxy.NewRecordingPool(cache.NewMemoryPool(cache.Options{Size: 10}))
	p.SetName(name)
	return p
}

func TestDataCollector_AddInstance(t *testing.T) {
	c := New()

	require.NoError(t, c.AddInstance("cache.b", newProxy("cache.b")))
	require.NoError(t, c.AddInstance("cache.a", newProxy("cache.a")))
	assert.Equal(t, []string{"cache.a", "cache.b"}, c.Instances())

	err := c.AddInstance("cache.raw", cache.NewMemoryPool(cache.Options{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not record statistics")

	inst, ok := c.Instance("cache.a")
	require.True(t, ok)
	assert.Equal(t, "cache.a", inst.Name())
}

func TestDataCollector_Collect(t *testing.T) {
	c := New()
	a, b := newProxy("a"), newProxy("b")
	require.NoError(t, c.AddInstance("a", a))
	require.NoError(t, c.AddInstance("b", b))

	_ = a.Set("k", []byte("v"))
	_, _ = a.Get("k")
	_, _ = b.Get("missing")

	p := c.Collect()
	assert.NotEmpty(t, p.Token)
	require.Len(t, p.Pools, 2)
	assert.Equal(t, int64(2), p.Pools["a"].Stats.Calls)
	assert.Len(t, p.Pools["a"].Calls, 2)
	assert.Equal(t, int64(3), p.Totals.Calls)
	assert.Equal(t, int64(1), p.Totals.Hits)
	assert.Equal(t, int64(1), p.Totals.Misses)

	assert.NotEqual(t, p.Token, c.Collect().Token, "every profile gets its own token")
}

func TestDataCollector_Reset(t *testing.T) {
	c := New()
	a := newProxy("a")
	require.NoError(t, c.AddInstance("a", a))
	_, _ = a.Get("k")

	c.Reset()
	assert.Equal(t, int64(0), c.Collect().Totals.Calls)
}

func TestDataCollector_Metrics(t *testing.T) {
	c := New()
	a, b := newProxy("a"), newProxy("b")
	require.NoError(t, c.AddInstance("a", a))
	require.NoError(t, c.AddInstance("b", b))
	_, _ = a.Get("k")

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c.Metrics()))

	// four series per pool
	assert.Equal(t, 8, testutil.CollectAndCount(c.Metrics()))
	assert.Equal(t, 2, testutil.CollectAndCount(c.Metrics(), "cachewire_pool_misses_total"))

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "cachewire_pool_misses_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetLabel()[0].GetValue() == "a" {
				assert.Equal(t, 1.0, m.GetCounter().GetValue())
			}
		}
	}
}
