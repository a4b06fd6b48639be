// Package metrics provides Prometheus metrics collection for the
// resolver service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the resolver.
type Collector struct {
	// Parse metrics
	ParsesTotal   *prometheus.CounterVec
	ParseDuration *prometheus.HistogramVec

	// Registry metrics
	RegisteredCollections prometheus.Gauge

	// HTTP metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Catalog metrics
	CatalogReloads      prometheus.Counter
	CatalogReloadErrors prometheus.Counter
	CatalogLastReload   prometheus.Gauge
}

// New creates a metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		ParsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "apiref",
				Name:      "parses_total",
				Help:      "Total number of parse requests by input form and outcome",
			},
			[]string{"form", "outcome"},
		),
		ParseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "apiref",
				Name:      "parse_duration_seconds",
				Help:      "Parse duration in seconds",
				Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
			},
			[]string{"form"},
		),

		RegisteredCollections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "apiref",
				Name:      "registered_collections",
				Help:      "Number of collections currently registered",
			},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "apiref",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "apiref",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "apiref",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),

		CatalogReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "apiref",
				Name:      "catalog_reloads_total",
				Help:      "Total number of successful catalog reloads",
			},
		),
		CatalogReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "apiref",
				Name:      "catalog_reload_errors_total",
				Help:      "Total number of catalog reload errors",
			},
		),
		CatalogLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "apiref",
				Name:      "catalog_last_reload_timestamp",
				Help:      "Unix timestamp of last successful catalog reload",
			},
		),
	}
}
