// Package profiler serves the statistics of a data collector over HTTP.
package profiler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toyz/cachewire/pkg/collector"
)

// Route paths.
const (
	ProfilePath = "/_profiler/cache"
	PoolPath    = "/_profiler/cache/:id"
	ResetPath   = "/_profiler/cache/reset"
	MetricsPath = "/metrics"
)

// Logger receives one line per handled request.
type Logger interface {
	Verbose(format string, args ...interface{})
}

// Profiler exposes a collector's profiles as JSON and its metrics in the
// Prometheus format.
type Profiler struct {
	collector *collector.DataCollector
	registry  *prometheus.Registry
	engine    *gin.Engine
	logger    Logger
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithLogger logs every request through l.
func WithLogger(l Logger) Option {
	return func(p *Profiler) { p.logger = l }
}

// New creates a profiler for dc with its own metrics registry.
func New(dc *collector.DataCollector, opts ...Option) (*Profiler, error) {
	p := &Profiler{
		collector: dc,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.registry.Register(dc.Metrics()); err != nil {
		return nil, err
	}
	if err := p.registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}

	p.engine = gin.New()
	p.engine.Use(gin.Recovery())
	if p.logger != nil {
		p.engine.Use(p.logRequests)
	}

	p.engine.GET(ProfilePath, p.profile)
	p.engine.GET(PoolPath, p.pool)
	p.engine.POST(ResetPath, p.reset)
	p.engine.GET(MetricsPath, gin.WrapH(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})))

	return p, nil
}

// Handler returns the HTTP handler serving every route.
func (p *Profiler) Handler() http.Handler {
	return p.engine
}

// Registry returns the metrics registry, so callers can add their own collectors.
func (p *Profiler) Registry() *prometheus.Registry {
	return p.registry
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (p *Profiler) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           p.engine,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (p *Profiler) profile(c *gin.Context) {
	c.JSON(http.StatusOK, p.collector.Collect())
}

func (p *Profiler) pool(c *gin.Context) {
	id := c.Param("id")
	pp, ok := p.collector.Collect().Pools[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown cache pool " + id})
		return
	}
	c.JSON(http.StatusOK, pp)
}

func (p *Profiler) reset(c *gin.Context) {
	p.collector.Reset()
	c.Status(http.StatusNoContent)
}

func (p *Profiler) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	p.logger.Verbose("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
}
