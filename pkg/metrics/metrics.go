// Package metrics provides Prometheus instrumentation for blueprint batch
// encoders.
//
// # Overview
//
// A Registry owns one set of metric vectors registered against a
// prometheus.Registerer. A Collector binds those vectors to one component
// type so encoders can record without repeating labels:
//
//	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)
//	collector := reg.Collector(components.LinkAxisComponentType)
//
//	timer := metrics.NewTimer("encode")
//	arr, err := encoder.Encode(input, arrow.PrimitiveTypes.Uint8)
//	collector.ObserveBatch(arr.Len(), arr.NullN(), timer.Stop(), err)
//
// # Metric Types
//
// Counter: encoded values, nulls and errors by error type
// Histogram: batch size and encode latency
//
// Tests should register against a fresh prometheus.NewRegistry() so runs
// do not collide on the global registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/blueprint/pkg/errors"
)

const namespace = "blueprint"

// Registry holds the encoder metric vectors.
type Registry struct {
	valuesEncoded *prometheus.CounterVec
	nullsEncoded  *prometheus.CounterVec
	encodeErrors  *prometheus.CounterVec
	batchSize     *prometheus.HistogramVec
	encodeLatency *prometheus.HistogramVec
}

// NewRegistry creates the metric vectors and registers them with reg. A nil
// reg creates unregistered vectors, which is useful when metrics are off.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		valuesEncoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "encoder",
				Name:      "values_total",
				Help:      "Total number of non-null values encoded",
			},
			[]string{"component_type"},
		),
		nullsEncoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "encoder",
				Name:      "nulls_total",
				Help:      "Total number of null elements encoded",
			},
			[]string{"component_type"},
		),
		encodeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "encoder",
				Name:      "errors_total",
				Help:      "Total number of failed encode calls",
			},
			[]string{"component_type", "error_type"},
		),
		batchSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "encoder",
				Name:      "batch_size",
				Help:      "Number of elements per encoded batch",
				Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 50000, 100000},
			},
			[]string{"component_type"},
		),
		encodeLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "encoder",
				Name:      "latency_seconds",
				Help:      "Duration of encode calls in seconds",
				Buckets:   []float64{1e-7, 1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1, 1},
			},
			[]string{"component_type"},
		),
	}
}

// Collector records metrics for one component type. A nil *Collector is
// valid and records nothing.
type Collector struct {
	componentType string
	registry      *Registry
}

// Collector returns a collector bound to componentType.
func (r *Registry) Collector(componentType string) *Collector {
	return &Collector{
		componentType: componentType,
		registry:      r,
	}
}

// ComponentType returns the label the collector records under.
func (c *Collector) ComponentType() string {
	if c == nil {
		return ""
	}
	return c.componentType
}

// ObserveBatch records the outcome of one encode call. On failure only the
// error counter moves, since no array was produced.
func (c *Collector) ObserveBatch(size, nulls int, took time.Duration, err error) {
	if c == nil {
		return
	}

	r := c.registry
	r.encodeLatency.WithLabelValues(c.componentType).Observe(took.Seconds())
	if err != nil {
		r.encodeErrors.WithLabelValues(c.componentType, string(errors.TypeOf(err))).Inc()
		return
	}

	r.batchSize.WithLabelValues(c.componentType).Observe(float64(size))
	r.valuesEncoded.WithLabelValues(c.componentType).Add(float64(size - nulls))
	r.nullsEncoded.WithLabelValues(c.componentType).Add(float64(nulls))
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's name.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It may be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
