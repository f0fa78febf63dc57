// Package collector aggregates the statistics recorded by cache pool proxies.
package collector

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/toyz/cachewire/pkg/proxy"
)

// DataCollectorClass is the class name the collector is registered under.
const DataCollectorClass = "collector.DataCollector"

// Instance is what a proxy has to expose to be collected.
type Instance interface {
	Name() string
	Stats() proxy.Stats
}

// Resettable instances are cleared by DataCollector.Reset.
type Resettable interface {
	Reset()
}

// Caller instances expose their recorded calls in profiles.
type Caller interface {
	Calls() []proxy.Call
}

// PoolProfile is the snapshot of one instance.
type PoolProfile struct {
	ID    string       `json:"id"`
	Stats proxy.Stats  `json:"stats"`
	Calls []proxy.Call `json:"calls,omitempty"`
}

// Profile is one snapshot of every registered instance.
type Profile struct {
	Token       string                 `json:"token"`
	CollectedAt time.Time              `json:"collected_at"`
	Pools       map[string]PoolProfile `json:"pools"`
	Totals      proxy.Stats            `json:"totals"`
}

// DataCollector keeps the proxied pools of a container and reports their
// statistics as profiles and, through Metrics, as Prometheus metrics.
type DataCollector struct {
	mu        sync.RWMutex
	instances map[string]Instance

	callsDesc  *prometheus.Desc
	hitsDesc   *prometheus.Desc
	missesDesc *prometheus.Desc
	timeDesc   *prometheus.Desc
}

// New creates an empty collector.
func New() *DataCollector {
	return &DataCollector{
		instances: make(map[string]Instance),
		callsDesc: prometheus.NewDesc("cachewire_pool_calls_total",
			"Total number of calls made on a cache pool.", []string{"pool"}, nil),
		hitsDesc: prometheus.NewDesc("cachewire_pool_hits_total",
			"Total number of cache hits.", []string{"pool"}, nil),
		missesDesc: prometheus.NewDesc("cachewire_pool_misses_total",
			"Total number of cache misses.", []string{"pool"}, nil),
		timeDesc: prometheus.NewDesc("cachewire_pool_time_seconds_total",
			"Total time spent in cache pool calls.", []string{"pool"}, nil),
	}
}

// AddInstance registers instance under id. Registering an id twice replaces
// the previous instance.
func (c *DataCollector) AddInstance(id string, instance any) error {
	inst, ok := instance.(Instance)
	if !ok {
		return fmt.Errorf("collector: service %q of type %T does not record statistics", id, instance)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[id] = inst
	return nil
}

// Instances returns the registered ids, sorted.
func (c *DataCollector) Instances() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.instances))
	for id := range c.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Instance returns the instance registered under id.
func (c *DataCollector) Instance(id string) (Instance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.instances[id]
	return inst, ok
}

// Collect takes a snapshot of every instance.
func (c *DataCollector) Collect() Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := Profile{
		Token:       uuid.NewString(),
		CollectedAt: time.Now(),
		Pools:       make(map[string]PoolProfile, len(c.instances)),
	}
	for id, inst := range c.instances {
		pp := PoolProfile{ID: id, Stats: inst.Stats()}
		if caller, ok := inst.(Caller); ok {
			pp.Calls = caller.Calls()
		}
		p.Pools[id] = pp
		p.Totals = p.Totals.Add(pp.Stats)
	}
	return p
}

// Reset clears the statistics of every resettable instance.
func (c *DataCollector) Reset() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, inst := range c.instances {
		if r, ok := inst.(Resettable); ok {
			r.Reset()
		}
	}
}

// Metrics returns a prometheus.Collector that reads every instance's
// statistics at scrape time.
func (c *DataCollector) Metrics() prometheus.Collector {
	return metrics{c}
}

type metrics struct {
	c *DataCollector
}

func (m metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.c.callsDesc
	ch <- m.c.hitsDesc
	ch <- m.c.missesDesc
	ch <- m.c.timeDesc
}

func (m metrics) Collect(ch chan<- prometheus.Metric) {
	c := m.c
	c.mu.RLock()
	defer c.mu.RUnlock()

	for id, inst := range c.instances {
		s := inst.Stats()
		ch <- prometheus.MustNewConstMetric(c.callsDesc, prometheus.CounterValue, float64(s.Calls), id)
		ch <- prometheus.MustNewConstMetric(c.hitsDesc, prometheus.CounterValue, float64(s.Hits), id)
		ch <- prometheus.MustNewConstMetric(c.missesDesc, prometheus.CounterValue, float64(s.Misses), id)
		ch <- prometheus.MustNewConstMetric(c.timeDesc, prometheus.CounterValue, s.Time.Seconds(), id)
	}
}
