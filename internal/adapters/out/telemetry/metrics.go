package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

var _ out.DispatchMetrics = (*Metrics)(nil)

// Metrics holds ferry-specific OTel metrics instruments.
type Metrics struct {
	// Dispatch
	DispatchAttempts metric.Int64Counter
	DispatchDuration metric.Float64Histogram
	DispatchOutcomes metric.Int64Counter
	TransportErrors  metric.Int64Counter
	PackageBytes     metric.Int64Histogram

	// Queue
	QueueRedelivered metric.Int64Counter
	QueueDropped     metric.Int64Counter
}

// NewMetrics creates and registers all ferry metric instruments on mp, or
// on the global MeterProvider when mp is nil. All fields are always
// initialized (OTel returns noop instruments when no MeterProvider is set).
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("ferry")
	m := &Metrics{}
	var err error

	if m.DispatchAttempts, err = meter.Int64Counter("ferry.dispatch.attempts",
		metric.WithDescription("Total dispatch attempts")); err != nil {
		return nil, err
	}
	if m.DispatchDuration, err = meter.Float64Histogram("ferry.dispatch.duration_seconds",
		metric.WithDescription("Dispatch attempt duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 30, 60, 300)); err != nil {
		return nil, err
	}
	if m.DispatchOutcomes, err = meter.Int64Counter("ferry.dispatch.outcomes",
		metric.WithDescription("Deposit statuses written after an attempt")); err != nil {
		return nil, err
	}
	if m.TransportErrors, err = meter.Int64Counter("ferry.transport.errors",
		metric.WithDescription("Total transport errors by kind")); err != nil {
		return nil, err
	}
	if m.PackageBytes, err = meter.Int64Histogram("ferry.package.bytes",
		metric.WithDescription("Assembled package size"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.QueueRedelivered, err = meter.Int64Counter("ferry.queue.redelivered",
		metric.WithDescription("Total message redeliveries")); err != nil {
		return nil, err
	}
	if m.QueueDropped, err = meter.Int64Counter("ferry.queue.dropped",
		metric.WithDescription("Total messages dropped on a full queue")); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordAttempt records one finished dispatch attempt and the status it produced.
func (m *Metrics) RecordAttempt(ctx context.Context, repository string, outcome domain.DepositStatus, elapsed time.Duration) {
	repo := attribute.String("repository", repository)
	m.DispatchAttempts.Add(ctx, 1, metric.WithAttributes(repo))
	m.DispatchDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(repo))
	m.DispatchOutcomes.Add(ctx, 1, metric.WithAttributes(repo, attribute.String("status", string(outcome))))
}

// RecordTransportError records a classified transport failure.
func (m *Metrics) RecordTransportError(ctx context.Context, repository string, kind domain.TransportErrorKind) {
	m.TransportErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repository),
		attribute.String("kind", string(kind)),
	))
}

// RecordPackageSize records the size of an assembled package. Unknown sizes are skipped.
func (m *Metrics) RecordPackageSize(ctx context.Context, repository string, bytes int64) {
	if bytes < 0 {
		return
	}
	m.PackageBytes.Record(ctx, bytes, metric.WithAttributes(attribute.String("repository", repository)))
}

// RecordRedelivery records a message handed out again after a nack or a
// visibility timeout.
func (m *Metrics) RecordRedelivery(ctx context.Context, kind domain.EntityKind, reason string) {
	m.QueueRedelivered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("reason", reason),
	))
}

// RecordDropped records a message rejected because the queue was full.
func (m *Metrics) RecordDropped(ctx context.Context, kind domain.EntityKind) {
	m.QueueDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}
