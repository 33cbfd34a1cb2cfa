// Package metrics exposes Prometheus collectors for numbering, HTTP traffic
// and the database pool.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"cgl/internal/core/numbering"
	"cgl/internal/infrastructure/storage/postgres"
)

const namespace = "cgl"

// Metrics holds the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	numbersAssigned *prometheus.CounterVec
	assignAttempts  *prometheus.HistogramVec
	numberConflicts *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers all collectors on registry. A nil registry gets a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		numbersAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "numbering",
			Name:      "assigned_total",
			Help:      "Visible numbers assigned, by scope kind.",
		}, []string{"kind"}),
		assignAttempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "numbering",
			Name:      "assign_attempts",
			Help:      "Allocate and insert rounds needed per assignment.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}, []string{"kind"}),
		numberConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "numbering",
			Name:      "conflicts_total",
			Help:      "Inserts rejected because the visible number was taken.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	registry.MustRegister(
		m.numbersAssigned,
		m.assignAttempts,
		m.numberConflicts,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the registry collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Assigned implements numbering.Observer.
func (m *Metrics) Assigned(scope numbering.Scope, attempts int) {
	kind := string(scope.Kind)
	m.numbersAssigned.WithLabelValues(kind).Inc()
	m.assignAttempts.WithLabelValues(kind).Observe(float64(attempts))
}

// Conflict implements numbering.Observer.
func (m *Metrics) Conflict(scope numbering.Scope) {
	m.numberConflicts.WithLabelValues(string(scope.Kind)).Inc()
}

// Middleware records request counts and latency. Unmatched routes are
// grouped under "unmatched" to keep label cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// RegisterPool exports connection pool gauges read on every scrape.
func (m *Metrics) RegisterPool(stats func() postgres.PoolStats) {
	gauge := func(name, help string, read func(postgres.PoolStats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return read(stats()) })
	}

	m.registry.MustRegister(
		gauge("total_conns", "Open connections.", func(s postgres.PoolStats) float64 { return float64(s.TotalConns) }),
		gauge("acquired_conns", "Connections in use.", func(s postgres.PoolStats) float64 { return float64(s.AcquiredConns) }),
		gauge("idle_conns", "Idle connections.", func(s postgres.PoolStats) float64 { return float64(s.IdleConns) }),
		gauge("max_conns", "Configured pool size.", func(s postgres.PoolStats) float64 { return float64(s.MaxConns) }),
	)
}

var _ numbering.Observer = (*Metrics)(nil)
