// Package metrics provides a sink wrapper that counts deliveries with
// Prometheus counters.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

// Outcome label values.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)

// MetricsSinkOption configures the metrics sink.
type MetricsSinkOption func(*metricsSinkConfig)

type metricsSinkConfig struct {
	namespace  string
	registerer prometheus.Registerer
}

// WithNamespace sets the metric namespace (default: duckbug).
func WithNamespace(ns string) MetricsSinkOption {
	return func(c *metricsSinkConfig) {
		c.namespace = ns
	}
}

// WithRegisterer sets where the counters are registered
// (default: prometheus.DefaultRegisterer).
func WithRegisterer(r prometheus.Registerer) MetricsSinkOption {
	return func(c *metricsSinkConfig) {
		if r != nil {
			c.registerer = r
		}
	}
}

// MetricsSink wraps a sink and counts every delivery.
type MetricsSink struct {
	inner      duckbug.Sink
	records    *prometheus.CounterVec
	flushFails prometheus.Counter
}

var _ duckbug.Sink = (*MetricsSink)(nil)

// NewMetricsSink wraps inner. Counters are labeled by kind (log, error),
// level (the record level, or QUACK for error records) and outcome.
// It fails if the counters cannot be registered.
func NewMetricsSink(inner duckbug.Sink, opts ...MetricsSinkOption) (*MetricsSink, error) {
	cfg := &metricsSinkConfig{
		namespace:  "duckbug",
		registerer: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "records_total",
			Help:      "Records handed to the sink, by kind, level and outcome.",
		},
		[]string{"kind", "level", "outcome"},
	)
	flushFails := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "flush_failures_total",
		Help:      "Failed sink flushes.",
	})

	for _, c := range []prometheus.Collector{records, flushFails} {
		if err := cfg.registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return &MetricsSink{
		inner:      inner,
		records:    records,
		flushFails: flushFails,
	}, nil
}

// Records exposes the record counter.
func (s *MetricsSink) Records() *prometheus.CounterVec {
	return s.records
}

// DeliverLog forwards to the inner sink and counts the outcome under the
// record level.
func (s *MetricsSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	err := s.inner.DeliverLog(ctx, record)
	s.records.WithLabelValues("log", string(record.Level), outcome(err)).Inc()
	return err
}

// DeliverError forwards to the inner sink and counts the outcome under the
// QUACK level.
func (s *MetricsSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	err := s.inner.DeliverError(ctx, record)
	s.records.WithLabelValues("error", "QUACK", outcome(err)).Inc()
	return err
}

// Flush flushes the inner sink, counting failures.
func (s *MetricsSink) Flush(ctx context.Context) error {
	err := s.inner.Flush(ctx)
	if err != nil {
		s.flushFails.Inc()
	}
	return err
}

// Close closes the inner sink.
func (s *MetricsSink) Close() error {
	return s.inner.Close()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailed
	}
	return OutcomeDelivered
}
