// Package dispatch implements the dispatch orchestrator: it turns
// entity-changed messages into package assembly, protocol submission and
// deposit status transitions.
package dispatch

import (
	"context"
	"time"

	"github.com/bnema/zerowrap"

	"github.com/bnema/ferry/internal/boundaries/in"
	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
	"github.com/bnema/ferry/pkg/keyset"
)

// Defaults applied by NewService to a zero Config.
const (
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 5 * time.Minute
)

// Config bounds dispatch attempts.
type Config struct {
	// MaxAttempts is the number of attempts after which a deposit that
	// keeps failing with retry-eligible errors is marked failed.
	MaxAttempts int
	// AttemptTimeout bounds one assemble+submit sequence.
	AttemptTimeout time.Duration
}

// Service implements the DispatchService interface.
type Service struct {
	store     out.EntityStore
	registry  in.RepositoryRegistry
	assembler in.PackageAssembler
	publisher out.MessagePublisher
	limiter   out.RateLimiter
	metrics   out.DispatchMetrics

	inflight *inFlight
	attempts *attemptTracker
	// fanout tracks, per submission, the deposits published and not yet settled.
	fanout *keyset.Set[string, string]

	cfg Config
	log zerowrap.Logger
}

// NewService creates a dispatch orchestrator.
func NewService(
	store out.EntityStore,
	registry in.RepositoryRegistry,
	assembler in.PackageAssembler,
	publisher out.MessagePublisher,
	cfg Config,
	log zerowrap.Logger,
) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}

	return &Service{
		store:     store,
		registry:  registry,
		assembler: assembler,
		publisher: publisher,
		inflight:  newInFlight(),
		attempts:  newAttemptTracker(),
		fanout:    keyset.New[string, string](),
		cfg:       cfg,
		log:       log,
	}
}

// SetRateLimiter throttles attempts per repository key.
func (s *Service) SetRateLimiter(l out.RateLimiter) {
	s.limiter = l
}

// SetMetrics sets the metrics recorder.
func (s *Service) SetMetrics(m out.DispatchMetrics) {
	s.metrics = m
}

// InFlight returns the number of deposits currently being dispatched.
func (s *Service) InFlight() int {
	return s.inflight.Len()
}

// PendingSubmissions returns the number of submissions with published,
// unsettled deposits.
func (s *Service) PendingSubmissions() int {
	return s.fanout.Size()
}

// Handle processes one entity-changed message.
//
// The returned disposition is DispositionAck only once every status write
// the message caused is durable, or when the message can never be
// processed. Returned errors are informational: the disposition alone
// decides how the delivery is settled.
func (s *Service) Handle(ctx context.Context, msg domain.Message) (domain.Disposition, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:    "usecase",
		zerowrap.FieldUseCase:  "Dispatch",
		zerowrap.FieldEvent:    string(msg.Kind),
		zerowrap.FieldEntityID: msg.EntityID,
		"message_id":           msg.ID,
	})
	log := zerowrap.FromCtx(ctx)

	if err := msg.Validate(); err != nil {
		log.Warn().Err(err).Msg("discarding malformed message")
		return domain.DispositionAck, nil
	}

	switch msg.Kind {
	case domain.EntitySubmission:
		return s.handleSubmission(ctx, msg.EntityID)
	default:
		return s.handleDeposit(ctx, msg.EntityID)
	}
}
