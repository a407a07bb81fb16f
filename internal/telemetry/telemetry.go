// Package telemetry installs OpenTelemetry providers for the gridsearch command.
//
// The gridsearch package records spans and metrics through the global otel
// providers; without Init they are no-ops.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names accepted by Config.Exporter.
const (
	ExporterNone       = "none"
	ExporterStdout     = "stdout"
	ExporterPrometheus = "prometheus"
)

var (
	// ErrUnknownExporter is returned for an unsupported Config.Exporter.
	ErrUnknownExporter = errors.New("unknown telemetry exporter")

	// ErrMissingMetricsFile is returned when the prometheus exporter has no
	// output file.
	ErrMissingMetricsFile = errors.New("prometheus exporter needs a metrics file")
)

// newStdoutMetricExporter is replaced in tests to exercise the failure path.
var newStdoutMetricExporter = func(w io.Writer) (metric.Exporter, error) {
	return stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
}

// Config controls telemetry behavior.
type Config struct {
	// ServiceName identifies this process in exported data.
	ServiceName string

	// Exporter is "none", "stdout" or "prometheus".
	Exporter string

	// Writer receives stdout exports. Defaults to os.Stdout.
	Writer io.Writer

	// MetricsFile is where the prometheus exporter writes the text exposition
	// format on shutdown.
	MetricsFile string
}

// Init installs global providers for cfg. The returned shutdown flushes
// pending data and must be called before exit.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error

	shutdown = func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdownFuncs {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "gridsearch"
	}
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
	)

	switch cfg.Exporter {
	case "", ExporterNone:
		return shutdown, nil

	case ExporterStdout:
		spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		tp := trace.NewTracerProvider(
			trace.WithBatcher(spanExporter),
			trace.WithResource(res),
			trace.WithSampler(trace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown)

		metricExporter, err := newStdoutMetricExporter(cfg.Writer)
		if err != nil {
			// Release the tracer provider installed above.
			return nil, errors.Join(fmt.Errorf("create stdout metric exporter: %w", err), shutdown(ctx))
		}
		mp := metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(metric.NewPeriodicReader(metricExporter)),
		)
		otel.SetMeterProvider(mp)
		shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
		return shutdown, nil

	case ExporterPrometheus:
		if cfg.MetricsFile == "" {
			return nil, ErrMissingMetricsFile
		}
		registry := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		mp := metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(exporter),
		)
		otel.SetMeterProvider(mp)
		// The textfile must be written while the reader can still collect.
		shutdownFuncs = append(shutdownFuncs,
			func(context.Context) error {
				return prometheus.WriteToTextfile(cfg.MetricsFile, registry)
			},
			mp.Shutdown,
		)
		return shutdown, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Exporter)
	}
}
