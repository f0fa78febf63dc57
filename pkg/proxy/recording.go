// Package proxy holds the runtime side of cache pool proxies: a pool wrapper
// that records every call so a collector can aggregate per-service statistics.
package proxy

import (
	"sync"
	"time"

	"github.com/toyz/cachewire/pkg/cache"
)

// DefaultMaxCalls bounds the per-pool call log.
const DefaultMaxCalls = 1000

// Call is one recorded pool operation.
type Call struct {
	Method   string        `json:"method"`
	Key      string        `json:"key,omitempty"`
	Hit      bool          `json:"hit"`
	Error    string        `json:"error,omitempty"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
}

// Stats aggregates the calls made on a pool since creation or the last Reset.
type Stats struct {
	Calls   int64         `json:"calls"`
	Hits    int64         `json:"hits"`
	Misses  int64         `json:"misses"`
	Reads   int64         `json:"reads"`
	Writes  int64         `json:"writes"`
	Deletes int64         `json:"deletes"`
	Errors  int64         `json:"errors"`
	Time    time.Duration `json:"time"`
}

// HitRatio returns hits / reads, or 0 when nothing was read.
func (s Stats) HitRatio() float64 {
	if s.Reads == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Reads)
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Calls:   s.Calls + o.Calls,
		Hits:    s.Hits + o.Hits,
		Misses:  s.Misses + o.Misses,
		Reads:   s.Reads + o.Reads,
		Writes:  s.Writes + o.Writes,
		Deletes: s.Deletes + o.Deletes,
		Errors:  s.Errors + o.Errors,
		Time:    s.Time + o.Time,
	}
}

// RecordingPool is a cache.Pool that forwards to an inner pool and records
// each call. It is safe for concurrent use.
type RecordingPool struct {
	inner cache.Pool

	mu       sync.Mutex
	name     string
	calls    []Call
	stats    Stats
	maxCalls int
	now      func() time.Time
}

// NewRecordingPool wraps inner.
func NewRecordingPool(inner cache.Pool) *RecordingPool {
	return &RecordingPool{
		inner:    inner,
		maxCalls: DefaultMaxCalls,
		now:      time.Now,
	}
}

// SetName stores the service id the proxy was registered under.
func (p *RecordingPool) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
}

// Name returns the service id set by SetName.
func (p *RecordingPool) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// Inner returns the wrapped pool.
func (p *RecordingPool) Inner() cache.Pool {
	return p.inner
}

// SetMaxCalls changes the call log bound. Values below 1 disable the log.
func (p *RecordingPool) SetMaxCalls(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxCalls = n
	if n < 1 {
		p.calls = nil
	} else if len(p.calls) > n {
		p.calls = append([]Call(nil), p.calls[len(p.calls)-n:]...)
	}
}

// Calls returns a copy of the recorded calls, oldest first.
func (p *RecordingPool) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// Stats returns the aggregated statistics.
func (p *RecordingPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Reset clears the call log and statistics.
func (p *RecordingPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
	p.stats = Stats{}
}

func (p *RecordingPool) Get(key string) ([]byte, bool) {
	start := p.now()
	val, ok := p.inner.Get(key)
	p.record(Call{Method: "Get", Key: key, Hit: ok, Start: start}, nil)
	return val, ok
}

func (p *RecordingPool) Set(key string, value []byte) error {
	start := p.now()
	err := p.inner.Set(key, value)
	p.record(Call{Method: "Set", Key: key, Start: start}, err)
	return err
}

func (p *RecordingPool) Contains(key string) bool {
	start := p.now()
	ok := p.inner.Contains(key)
	p.record(Call{Method: "Contains", Key: key, Hit: ok, Start: start}, nil)
	return ok
}

func (p *RecordingPool) Delete(key string) error {
	start := p.now()
	err := p.inner.Delete(key)
	p.record(Call{Method: "Delete", Key: key, Start: start}, err)
	return err
}

func (p *RecordingPool) Clear() error {
	start := p.now()
	err := p.inner.Clear()
	p.record(Call{Method: "Clear", Start: start}, err)
	return err
}

func (p *RecordingPool) Len() int {
	return p.inner.Len()
}

func (p *RecordingPool) Close() error {
	return p.inner.Close()
}

func (p *RecordingPool) record(c Call, err error) {
	end := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	c.Duration = end.Sub(c.Start)
	if err != nil {
		c.Error = err.Error()
		p.stats.Errors++
	}

	p.stats.Calls++
	p.stats.Time += c.Duration
	switch c.Method {
	case "Get", "Contains":
		p.stats.Reads++
		if c.Hit {
			p.stats.Hits++
		} else {
			p.stats.Misses++
		}
	case "Set":
		p.stats.Writes++
	case "Delete", "Clear":
		p.stats.Deletes++
	}

	if p.maxCalls < 1 {
		return
	}
	if len(p.calls) >= p.maxCalls {
		p.calls = append(p.calls[:0], p.calls[len(p.calls)-p.maxCalls+1:]...)
	}
	p.calls = append(p.calls, c)
}

var _ cache.Pool = (*RecordingPool)(nil)
