package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "codeweaver"

// Metrics holds all CodeWeaver metric instruments.
type Metrics struct {
	RunsStarted   metric.Int64Counter
	RunsCompleted metric.Int64Counter
	RunsPartial   metric.Int64Counter
	RunsFailed    metric.Int64Counter
	StageRetries  metric.Int64Counter
	RunDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.RunsStarted, err = meter.Int64Counter("codeweaver.runs.started",
		metric.WithDescription("Number of generation runs started"))
	if err != nil {
		return nil, err
	}

	m.RunsCompleted, err = meter.Int64Counter("codeweaver.runs.completed",
		metric.WithDescription("Number of runs producing a complete bundle"))
	if err != nil {
		return nil, err
	}

	m.RunsPartial, err = meter.Int64Counter("codeweaver.runs.partial",
		metric.WithDescription("Number of runs producing code without documentation"))
	if err != nil {
		return nil, err
	}

	m.RunsFailed, err = meter.Int64Counter("codeweaver.runs.failed",
		metric.WithDescription("Number of failed runs"))
	if err != nil {
		return nil, err
	}

	m.StageRetries, err = meter.Int64Counter("codeweaver.stage.retries",
		metric.WithDescription("Number of per-stage retries"))
	if err != nil {
		return nil, err
	}

	m.RunDuration, err = meter.Float64Histogram("codeweaver.run.duration_seconds",
		metric.WithDescription("Run duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
