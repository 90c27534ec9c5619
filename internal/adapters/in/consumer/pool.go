// Package consumer runs the worker pool that feeds queue deliveries to the
// dispatch orchestrator.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/zerowrap"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/ferry/internal/boundaries/in"
	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

// DefaultWorkers is used when Config.Workers is not positive.
const DefaultWorkers = 4

// Config sizes the pool.
type Config struct {
	Workers int
}

// Pool consumes deliveries with a fixed number of workers.
type Pool struct {
	deliveries <-chan out.Delivery
	svc        in.DispatchService
	workers    int
	log        zerowrap.Logger
}

// New creates a worker pool over deliveries.
func New(deliveries <-chan out.Delivery, svc in.DispatchService, cfg Config, log zerowrap.Logger) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{
		deliveries: deliveries,
		svc:        svc,
		workers:    workers,
		log:        log,
	}
}

// Run blocks until ctx is done or the delivery channel is closed, then
// waits for in-progress deliveries to settle.
func (p *Pool) Run(ctx context.Context) error {
	p.log.Info().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "consumer").
		Int("workers", p.workers).
		Msg("worker pool started")

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		worker := i
		g.Go(func() error {
			return p.work(gctx, worker)
		})
	}

	err := g.Wait()
	p.log.Info().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "consumer").
		Msg("worker pool stopped")
	return err
}

func (p *Pool) work(ctx context.Context, worker int) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-p.deliveries:
			if !ok {
				return nil
			}
			p.process(ctx, worker, d)
		}
	}
}

// process runs one delivery. It never lets a panic escape: the delivery is
// nacked instead so the message is retried.
func (p *Pool) process(ctx context.Context, worker int, d out.Delivery) {
	msg := d.Message()
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:    "adapter",
		zerowrap.FieldAdapter:  "consumer",
		"worker":               worker,
		"message_id":           msg.ID,
		zerowrap.FieldEvent:    string(msg.Kind),
		zerowrap.FieldEntityID: msg.EntityID,
	})
	log := zerowrap.FromCtx(ctx)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Msg("dispatch panicked; delivery will be retried")
			settle(log, d, domain.DispositionDefer)
		}
	}()

	disposition, err := p.svc.Handle(ctx, msg)
	if err != nil {
		log.Warn().Err(err).Str("disposition", disposition.String()).Msg("dispatch reported an error")
	}
	settle(log, d, disposition)

	log.Debug().
		Str("disposition", disposition.String()).
		Int("redelivered", msg.Redelivered).
		Dur(zerowrap.FieldDuration, time.Since(start)).
		Msg("delivery settled")
}

func settle(log zerowrap.Logger, d out.Delivery, disposition domain.Disposition) {
	var err error
	switch disposition {
	case domain.DispositionAck:
		err = d.Ack()
	case domain.DispositionDefer:
		err = d.Nack()
	default:
		err = errors.Join(fmt.Errorf("unknown disposition %s", disposition), d.Nack())
	}
	if err != nil {
		log.Warn().Err(err).Str("disposition", disposition.String()).Msg("failed to settle delivery")
	}
}
