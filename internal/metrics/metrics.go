// Package metrics exports cache and refresh metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "headlines"

// Metrics implements cache.Observer and owns its own Prometheus registry so
// several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	CacheHits       *prometheus.CounterVec
	CacheJoins      *prometheus.CounterVec
	Refreshes       *prometheus.CounterVec
	RefreshDuration *prometheus.HistogramVec
	LastRefresh     *prometheus.GaugeVec
}

// New registers every collector, plus the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Requests answered from a cached link list",
		}, []string{"source"}),
		CacheJoins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_joins_total",
			Help:      "Requests that waited on a refresh started by another request",
		}, []string{"source"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Source refreshes by outcome",
		}, []string{"source", "outcome"}),
		RefreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Time to fetch, parse and extract one source",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		LastRefresh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		}, []string{"source"}),
	}

	reg.MustRegister(
		m.CacheHits, m.CacheJoins, m.Refreshes, m.RefreshDuration, m.LastRefresh,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Hit(source string) {
	m.CacheHits.WithLabelValues(source).Inc()
}

func (m *Metrics) Joined(source string) {
	m.CacheJoins.WithLabelValues(source).Inc()
}

func (m *Metrics) Refreshed(source string, took time.Duration) {
	m.Refreshes.WithLabelValues(source, "success").Inc()
	m.RefreshDuration.WithLabelValues(source).Observe(took.Seconds())
	m.LastRefresh.WithLabelValues(source).SetToCurrentTime()
}

func (m *Metrics) Failed(source string, took time.Duration, _ error) {
	m.Refreshes.WithLabelValues(source, "failure").Inc()
	m.RefreshDuration.WithLabelValues(source).Observe(took.Seconds())
}
