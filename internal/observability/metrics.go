package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records per-operation counters and durations for a
// service. Implementations must be safe for concurrent use.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
}

type promMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewOperationMetrics registers and returns prometheus-backed operation
// metrics on the given registry.
func NewOperationMetrics(registry *prometheus.Registry, namespace string) OperationMetrics {
	labels := []string{"operation", "service"}

	m := &promMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Number of operation attempts.",
		}, labels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_successes_total",
			Help:      "Number of operations that completed successfully.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Number of operations that failed.",
		}, labels),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}

	registry.MustRegister(m.attempts, m.successes, m.failures, m.durations)
	return m
}

func (m *promMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *promMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *promMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *promMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(d.Seconds())
}

type noopMetrics struct{}

// NewNoopMetrics returns metrics that record nothing. Used in tests and
// when no registry is configured.
func NewNoopMetrics() OperationMetrics { return noopMetrics{} }

func (noopMetrics) RecordOperationAttempt(context.Context, string, string)                {}
func (noopMetrics) RecordOperationSuccess(context.Context, string, string)                {}
func (noopMetrics) RecordOperationFailure(context.Context, string, string)                {}
func (noopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
