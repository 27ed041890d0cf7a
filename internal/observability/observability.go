// Package observability bundles the logger, tracer, and metrics registry
// handed to every module.
package observability

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Observability carries the shared observability handles.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
}

// New constructs the observability bundle for the given service. The tracer
// comes from the global otel provider; wiring an exporter behind it is the
// deployment's concern.
func New(serviceName, environment string) *Observability {
	level := slog.LevelInfo
	if environment == "development" {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(
		slog.String("service", serviceName),
		slog.String("environment", environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Observability{
		Logger:   logger,
		Tracer:   otel.Tracer(serviceName),
		Registry: registry,
	}
}
