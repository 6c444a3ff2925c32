package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reactor/pkg/render"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the renderer collectors. It implements render.Observer.
type Metrics struct {
	mounts           *prometheus.CounterVec
	updates          *prometheus.CounterVec
	unmounts         *prometheus.CounterVec
	renderDuration   *prometheus.HistogramVec
	activeComponents prometheus.Gauge
	hostOps          *prometheus.CounterVec
	events           *prometheus.CounterVec
}

var _ render.Observer = (*Metrics)(nil)

// NewMetrics registers the collectors. Registering twice with the same
// registry panics, as with any Prometheus collector.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		mounts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_mounts_total",
			Help:        "Total number of component instances mounted",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_updates_total",
			Help:        "Total number of component re-renders",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		unmounts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_unmounts_total",
			Help:        "Total number of component instances unmounted",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render and patch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component", "phase"}),

		activeComponents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_components",
			Help:        "Number of mounted component instances",
			ConstLabels: config.ConstLabels,
		}),

		hostOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_ops_total",
			Help:        "Total number of host tree operations issued",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of dispatched host events",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),
	}
}

// BeginRender implements render.Observer.
func (m *Metrics) BeginRender(component string, phase render.Phase) func() {
	start := time.Now()
	return func() {
		m.renderDuration.WithLabelValues(component, string(phase)).Observe(time.Since(start).Seconds())
		switch phase {
		case render.PhaseMount:
			m.mounts.WithLabelValues(component).Inc()
			m.activeComponents.Inc()
		case render.PhaseUpdate:
			m.updates.WithLabelValues(component).Inc()
		}
	}
}

// Unmounted implements render.Observer.
func (m *Metrics) Unmounted(component string) {
	m.unmounts.WithLabelValues(component).Inc()
	m.activeComponents.Dec()
}

// ObserveEvent counts a dispatched event by outcome.
func (m *Metrics) ObserveEvent(event string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.events.WithLabelValues(event, status).Inc()
}

func (m *Metrics) hostOp(op string) {
	m.hostOps.WithLabelValues(op).Inc()
}
