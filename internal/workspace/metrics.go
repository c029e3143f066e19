package workspace

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes parse counters for Prometheus scraping. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	parsesTotal     *prometheus.CounterVec
	parseDuration   *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	packageFailures prometheus.Gauge
}

// DefaultBuckets are the parse duration histogram buckets in seconds
func DefaultBuckets() []float64 {
	return []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25}
}

// NewMetrics creates a registry with the parse metrics and the default
// Go and process collectors. prefix defaults to "msgidl".
func NewMetrics(prefix string) *Metrics {
	if prefix == "" {
		prefix = "msgidl"
	}
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_parses_total",
				Help: "Interface documents parsed, by kind and result",
			},
			[]string{"kind", "result"},
		),
		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_parse_duration_seconds",
				Help:    "Time to read and parse one document",
				Buckets: DefaultBuckets(),
			},
			[]string{"kind"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_cache_lookups_total",
				Help: "Interface cache lookups, by result",
			},
			[]string{"result"},
		),
		packageFailures: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_package_failures",
				Help: "Documents that failed in the most recent package load",
			},
		),
	}

	reg.MustRegister(m.parsesTotal, m.parseDuration, m.cacheLookups, m.packageFailures)
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) observeParse(kind string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.parsesTotal.WithLabelValues(kind, result).Inc()
	m.parseDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) observePackage(failed int) {
	if m == nil {
		return
	}
	m.packageFailures.Set(float64(failed))
}
