// Package metrics exports registry and catalog diagnostics to Prometheus.
//
// Metrics collected (with the default namespace):
//   - paintd_paints_skipped_total{reason}: records that did not parse
//   - paintd_duplicate_paints_total: incremental adds ignored as duplicates
//   - paintd_assignments_dropped_total: assigns naming an unknown paint
//   - paintd_clears_ignored_total: stale clears
//   - paintd_bulk_merge_duration_seconds: BulkMerge latency
//   - paintd_catalog_loads_total{status}: catalog load outcomes
//   - paintd_events_total{type}: live events applied
//   - paintd_known_paints, paintd_assigned_users: registry sizes
//
// Example:
//
//	m := metrics.New(metrics.WithRegistry(promReg))
//	reg := registry.New(registry.WithObserver(m))
//	m.TrackRegistry(reg)
//
//	http.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chatpaint/paintd/pkg/registry"
)

// Config configures the Prometheus metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "paintd").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for merge duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "paintd",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics implements registry.Observer and records catalog and event
// outcomes.
type Metrics struct {
	config Config

	paintsSkipped      *prometheus.CounterVec
	duplicatePaints    prometheus.Counter
	assignmentsDropped prometheus.Counter
	clearsIgnored      prometheus.Counter
	mergeDuration      prometheus.Histogram
	catalogLoads       *prometheus.CounterVec
	events             *prometheus.CounterVec
}

var _ registry.Observer = (*Metrics)(nil)

// New registers the metrics and returns them.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		config: config,

		paintsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "paints_skipped_total",
			Help:        "Paint records dropped because they did not parse",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		duplicatePaints: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "duplicate_paints_total",
			Help:        "Incremental paint definitions ignored because the id was already known",
			ConstLabels: config.ConstLabels,
		}),

		assignmentsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "assignments_dropped_total",
			Help:        "Assignments dropped because the paint was unknown",
			ConstLabels: config.ConstLabels,
		}),

		clearsIgnored: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "clears_ignored_total",
			Help:        "Clears ignored because the user held a different paint or none",
			ConstLabels: config.ConstLabels,
		}),

		mergeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "bulk_merge_duration_seconds",
			Help:        "Duration of catalog merges into the registry",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		catalogLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "catalog_loads_total",
			Help:        "Catalog load attempts by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "events_total",
			Help:        "Live events applied to the registry by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// TrackRegistry exports the registry's sizes as gauges read at scrape time.
func (m *Metrics) TrackRegistry(reg *registry.Registry) {
	factory := promauto.With(m.config.Registry)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   m.config.Namespace,
		Name:        "known_paints",
		Help:        "Number of paints known to the registry",
		ConstLabels: m.config.ConstLabels,
	}, func() float64 { return float64(reg.Stats().KnownPaints) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   m.config.Namespace,
		Name:        "assigned_users",
		Help:        "Number of users with an assigned paint",
		ConstLabels: m.config.ConstLabels,
	}, func() float64 { return float64(reg.Stats().Assignments) })
}

// PaintSkipped implements registry.Observer.
func (m *Metrics) PaintSkipped(_ string, reason registry.SkipReason) {
	m.paintsSkipped.WithLabelValues(string(reason)).Inc()
}

// DuplicatePaint implements registry.Observer.
func (m *Metrics) DuplicatePaint(string) {
	m.duplicatePaints.Inc()
}

// AssignmentDropped implements registry.Observer.
func (m *Metrics) AssignmentDropped(string) {
	m.assignmentsDropped.Inc()
}

// ClearIgnored implements registry.Observer.
func (m *Metrics) ClearIgnored(string) {
	m.clearsIgnored.Inc()
}

// BulkMerged implements registry.Observer.
func (m *Metrics) BulkMerged(_ registry.MergeResult, elapsed time.Duration) {
	m.mergeDuration.Observe(elapsed.Seconds())
}

// RecordCatalogLoad records a catalog load outcome.
func (m *Metrics) RecordCatalogLoad(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.catalogLoads.WithLabelValues(status).Inc()
}

// RecordEvent records a live event applied to the registry.
func (m *Metrics) RecordEvent(eventType string) {
	m.events.WithLabelValues(eventType).Inc()
}
