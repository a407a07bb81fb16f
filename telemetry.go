package gridsearch

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter. They resolve to no-ops until the application
// installs providers (see internal/telemetry).
var (
	tracer = otel.Tracer("gridsearch")
	meter  = otel.Meter("gridsearch")
)

var (
	runLatency    metric.Float64Histogram
	runTotal      metric.Int64Counter
	expandedNodes metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"gridsearch_run_duration_seconds",
			metric.WithDescription("Duration of search runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runTotal, err = meter.Int64Counter(
			"gridsearch_runs_total",
			metric.WithDescription("Total number of search runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		expandedNodes, err = meter.Int64Histogram(
			"gridsearch_expanded_nodes",
			metric.WithDescription("Nodes expanded per search run"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordRunMetrics(ctx context.Context, strategy Strategy, duration time.Duration, expanded int, found bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("strategy", strategy.String()),
		attribute.Bool("found", found),
	)
	runLatency.Record(ctx, duration.Seconds(), attrs)
	runTotal.Add(ctx, 1, attrs)
	expandedNodes.Record(ctx, int64(expanded), attrs)
}
