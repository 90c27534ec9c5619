package dispatch

import (
	"context"
	"time"

	"github.com/bnema/zerowrap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bnema/ferry/internal/domain"
)

// attemptFunc runs assemble+submit once.
type attemptFunc func(ctx context.Context) (*domain.Receipt, error)

// withDispatchLogging logs the start and the outcome of an attempt.
func withDispatchLogging(next attemptFunc) attemptFunc {
	return func(ctx context.Context) (*domain.Receipt, error) {
		log := zerowrap.FromCtx(ctx)
		start := time.Now()

		log.Info().Msg("dispatch attempt started")

		receipt, err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			evt := log.Warn().Err(err).Dur(zerowrap.FieldDuration, elapsed)
			if te, ok := domain.AsTransportError(err); ok {
				evt = evt.Str("transport_error", string(te.Kind)).Int("status_code", te.StatusCode)
			}
			if pe, ok := domain.AsPackagingError(err); ok {
				evt = evt.Str("packaging_error", string(pe.Cause))
			}
			evt.Msg("dispatch attempt failed")
			return receipt, err
		}

		log.Info().
			Dur(zerowrap.FieldDuration, elapsed).
			Str("receipt", receipt.Location).
			Msg("dispatch attempt succeeded")
		return receipt, nil
	}
}

// withDispatchTracing wraps an attempt in a span.
func withDispatchTracing(repository string, protocol domain.Protocol, depositID string, next attemptFunc) attemptFunc {
	tracer := otel.Tracer("github.com/bnema/ferry/dispatch")

	return func(ctx context.Context) (*domain.Receipt, error) {
		ctx, span := tracer.Start(ctx, "dispatch.attempt",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("ferry.repository", repository),
				attribute.String("ferry.protocol", string(protocol)),
				attribute.String("ferry.deposit_id", depositID),
			))
		defer span.End()

		receipt, err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return receipt, err
		}
		span.SetAttributes(attribute.String("ferry.receipt", receipt.Location))
		return receipt, nil
	}
}
