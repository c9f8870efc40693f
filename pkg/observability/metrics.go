package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommandsTotal    = "contourfold.commands.total"
	metricCommandDuration  = "contourfold.command.duration.seconds"
	metricCommandErrors    = "contourfold.command.errors.total"
	metricCommandsInflight = "contourfold.commands.inflight"

	attrCommand = "command"
	attrStatus  = "status"

	// StatusOK and StatusError label finished commands.
	StatusOK    = "ok"
	StatusError = "error"
)

// commandBucketBoundaries covers 1ms to 120s, from a tiny document to a large
// complex.
var commandBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 120}

// CommandMetrics counts CLI command runs by rate, errors and duration.
// A nil *CommandMetrics records nothing.
type CommandMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewCommandMetrics creates command instruments from the given meter.
func NewCommandMetrics(mt metric.Meter) (*CommandMetrics, error) {
	total, err := mt.Int64Counter(metricCommandsTotal,
		metric.WithDescription("Total number of command runs"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricCommandDuration,
		metric.WithDescription("Command duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(commandBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandDuration, err)
	}

	errorsTotal, err := mt.Int64Counter(metricCommandErrors,
		metric.WithDescription("Total number of failed command runs"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandErrors, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricCommandsInflight,
		metric.WithDescription("Number of commands running"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandsInflight, err)
	}

	return &CommandMetrics{
		total:    total,
		duration: duration,
		errors:   errorsTotal,
		inflight: inflight,
	}, nil
}

// RecordCommand records a finished command with its status and duration.
func (cm *CommandMetrics) RecordCommand(ctx context.Context, command, status string, duration time.Duration) {
	if cm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrCommand, command),
		attribute.String(attrStatus, status),
	)

	cm.total.Add(ctx, 1, attrs)
	cm.duration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		cm.errors.Add(ctx, 1, metric.WithAttributes(attribute.String(attrCommand, command)))
	}
}

// Track marks command as running and returns the function that records its
// end with the error it returned.
func (cm *CommandMetrics) Track(ctx context.Context, command string) func(err error) {
	if cm == nil {
		return func(error) {}
	}

	start := time.Now()
	attrs := metric.WithAttributes(attribute.String(attrCommand, command))
	cm.inflight.Add(ctx, 1, attrs)

	return func(err error) {
		cm.inflight.Add(ctx, -1, attrs)

		status := StatusOK
		if err != nil {
			status = StatusError
		}

		cm.RecordCommand(ctx, command, status, time.Since(start))
	}
}
