package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/google/uuid"

	"github.com/bnema/ferry/internal/boundaries/in"
	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

// ErrNoQueue is returned when a local command would need to publish a message.
var ErrNoQueue = errors.New("message queue is not available in local mode")

// Kernel provides in-process service access for local CLI execution.
//
// It intentionally does not start the webhook, the queue or the worker pool.
type Kernel struct {
	core     *core
	dispatch in.DispatchService
	cleanup  func()
	log      zerowrap.Logger
}

// NewKernel initializes local services without starting listeners.
func NewKernel(ctx context.Context, configPath string) (*Kernel, error) {
	v, cfg, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	log, cleanup, err := initLogger(cfg)
	if err != nil {
		return nil, err
	}
	if cleanup == nil {
		cleanup = func() {}
	}

	ctx = zerowrap.WithCtx(ctx, log)

	c, err := createCore(ctx, v, cfg, log)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &Kernel{
		core:     c,
		dispatch: c.newDispatcher(refusingPublisher{}, cfg),
		cleanup:  cleanup,
		log:      log,
	}, nil
}

// Close releases the store and flushes telemetry.
func (k *Kernel) Close() error {
	if k == nil {
		return nil
	}
	if k.core != nil {
		k.core.close()
	}
	if k.cleanup != nil {
		k.cleanup()
	}
	return nil
}

func (k *Kernel) Registry() in.RepositoryRegistry { return k.core.registry }

func (k *Kernel) Assembler() in.PackageAssembler { return k.core.assembler }

// Seed inserts a submission and its deposits into the entity store.
func (k *Kernel) Seed(ctx context.Context, sub *domain.Submission, deposits []*domain.Deposit) error {
	for _, dep := range deposits {
		if _, err := k.core.registry.Get(dep.RepositoryKey); err != nil {
			return fmt.Errorf("deposit %s: %w", dep.ID, err)
		}
	}

	if err := k.core.store.CreateSubmission(ctx, sub); err != nil {
		return err
	}
	for _, dep := range deposits {
		if err := k.core.store.CreateDeposit(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

// DispatchDeposit runs one synchronous dispatch of a deposit and returns the
// stored deposit afterwards.
func (k *Kernel) DispatchDeposit(ctx context.Context, depositID string) (*domain.Deposit, domain.Disposition, error) {
	msg := domain.Message{
		ID:        uuid.New().String(),
		Kind:      domain.EntityDeposit,
		EntityID:  depositID,
		Timestamp: time.Now(),
	}

	disposition, handleErr := k.dispatch.Handle(zerowrap.WithCtx(ctx, k.log), msg)

	dep, err := k.core.store.GetDeposit(ctx, depositID)
	if err != nil {
		return nil, disposition, errors.Join(handleErr, err)
	}
	return dep, disposition, handleErr
}

// refusingPublisher stands in for the queue when running locally.
type refusingPublisher struct{}

var _ out.MessagePublisher = refusingPublisher{}

func (refusingPublisher) Publish(context.Context, domain.EntityKind, string) error {
	return ErrNoQueue
}
