package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/zerowrap"

	"github.com/bnema/ferry/internal/boundaries/in"
	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

const interruptedWriteTimeout = 5 * time.Second

func (s *Service) handleDeposit(ctx context.Context, id string) (domain.Disposition, error) {
	log := zerowrap.FromCtx(ctx)

	if !s.inflight.TryAcquire(id) {
		log.Debug().Msg("deposit already in flight, deferring")
		return domain.DispositionDefer, nil
	}
	defer s.inflight.Release(id)

	dep, err := s.store.GetDeposit(ctx, id)
	if errors.Is(err, domain.ErrEntityNotFound) {
		log.Warn().Msg("deposit not found, discarding message")
		s.fanout.RemoveValueFromAll(id)
		return domain.DispositionAck, nil
	}
	if err != nil {
		return domain.DispositionDefer, log.WrapErr(err, "failed to load deposit")
	}

	if dep.Status.IsTerminal() {
		log.Debug().Str(zerowrap.FieldStatus, string(dep.Status)).Msg("deposit already resolved")
		s.attempts.Reset(id)
		s.fanout.RemoveValue(dep.SubmissionID, dep.ID)
		return domain.DispositionAck, nil
	}

	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		"repository":    dep.RepositoryKey,
		"submission_id": dep.SubmissionID,
	})
	log = zerowrap.FromCtx(ctx)

	repo, err := s.registry.Get(dep.RepositoryKey)
	if err != nil {
		log.Error().Err(err).Msg("deposit targets an unknown repository")
		return s.settle(ctx, dep, domain.DepositStatusFailed, "")
	}

	sub, err := s.store.GetSubmission(ctx, dep.SubmissionID)
	if errors.Is(err, domain.ErrEntityNotFound) {
		log.Error().Msg("deposit references a missing submission")
		return s.settle(ctx, dep, domain.DepositStatusFailed, "")
	}
	if err != nil {
		return domain.DispositionDefer, log.WrapErr(err, "failed to load submission")
	}

	if s.limiter != nil && !s.limiter.Allow(ctx, repo.Key) {
		log.Debug().Msg("repository rate limit reached, deferring")
		return domain.DispositionDefer, nil
	}

	// A deposit left assembling was interrupted mid-attempt; the package
	// may have reached the repository.
	if dep.Status == domain.DepositStatusNeedsVerification || dep.Status == domain.DepositStatusAssembling {
		if verifier, ok := repo.Binding.(out.Verifier); ok {
			disposition, done, err := s.verify(ctx, verifier, repo, sub, dep)
			if done {
				return disposition, err
			}
		}
	}

	version, err := s.store.UpdateDeposit(ctx, domain.DepositUpdate{
		ID:      dep.ID,
		Version: dep.Version,
		Status:  domain.DepositStatusAssembling,
	})
	if err != nil {
		return s.writeFailed(ctx, dep, err)
	}
	dep.Version = version
	dep.Status = domain.DepositStatusAssembling

	attempt := withDispatchLogging(
		withDispatchTracing(repo.Key, repo.Transport.Protocol, dep.ID,
			func(ctx context.Context) (*domain.Receipt, error) {
				return s.assembleAndSubmit(ctx, repo, sub, dep.ID)
			}))

	start := time.Now()
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
	receipt, err := attempt(attemptCtx)
	cancel()

	if ctx.Err() != nil {
		return s.interrupted(ctx, dep, receipt, err)
	}

	next := s.classify(ctx, dep.ID, repo.Key, err)
	if s.metrics != nil {
		s.metrics.RecordAttempt(ctx, repo.Key, next, time.Since(start))
	}

	var location string
	if err == nil {
		location = receiptLocation(receipt)
	}
	return s.settle(ctx, dep, next, location)
}

// interrupted settles an attempt cut short by shutdown. A completed or
// ambiguous transmission is still recorded, on a detached context, so the
// next delivery never sends the package blind.
func (s *Service) interrupted(ctx context.Context, dep *domain.Deposit, receipt *domain.Receipt, err error) (domain.Disposition, error) {
	log := zerowrap.FromCtx(ctx)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), interruptedWriteTimeout)
	defer cancel()

	if err == nil {
		log.Info().Msg("dispatch completed during shutdown")
		return s.settle(writeCtx, dep, domain.DepositStatusAccepted, receiptLocation(receipt))
	}
	if te, ok := domain.AsTransportError(err); ok && te.Kind == domain.TransportUnknownOutcome {
		log.Warn().Err(err).Msg("dispatch interrupted with unknown outcome, marking for verification")
		s.attempts.Inc(dep.ID)
		return s.settle(writeCtx, dep, domain.DepositStatusNeedsVerification, "")
	}

	log.Warn().Err(ctx.Err()).Msg("dispatch interrupted, leaving message for redelivery")
	return domain.DispositionDefer, nil
}

// assembleAndSubmit runs one attempt. The package is always closed.
func (s *Service) assembleAndSubmit(ctx context.Context, repo *in.Repository, sub *domain.Submission, depositID string) (*domain.Receipt, error) {
	pkg, err := s.assembler.Assemble(ctx, sub, repo.Assembler)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()
	pkg.Slug = depositID

	if s.metrics != nil {
		s.metrics.RecordPackageSize(ctx, repo.Key, pkg.Length)
	}

	receipt, err := repo.Binding.Submit(ctx, pkg, repo.Transport)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		receipt = &domain.Receipt{Protocol: repo.Transport.Protocol}
	}
	return receipt, nil
}

// verify resolves a deposit whose last transmission may have arrived. done
// is false when the package is confirmed absent and must be transmitted
// again.
func (s *Service) verify(
	ctx context.Context,
	verifier out.Verifier,
	repo *in.Repository,
	sub *domain.Submission,
	dep *domain.Deposit,
) (disposition domain.Disposition, done bool, err error) {
	log := zerowrap.FromCtx(ctx)
	name := domain.PackageName(sub, repo.Assembler.Options)

	verifyCtx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
	result, receipt, verr := verifier.Verify(verifyCtx, name, repo.Transport)
	cancel()

	if ctx.Err() != nil {
		return domain.DispositionDefer, true, nil
	}
	if verr != nil {
		log.Warn().Err(verr).Msg("verification failed")
		result = domain.VerifyUnknown
	}

	switch result {
	case domain.VerifyPresent:
		log.Info().Str("package", name).Msg("earlier transmission confirmed")
		d, err := s.settle(ctx, dep, domain.DepositStatusAccepted, receiptLocation(receipt))
		return d, true, err

	case domain.VerifyAbsent:
		log.Info().Str("package", name).Msg("earlier transmission did not arrive, retransmitting")
		return domain.DispositionDefer, false, nil

	default:
		n := s.attempts.Inc(dep.ID)
		if n >= s.cfg.MaxAttempts {
			log.Error().Int("attempts", n).Msg("outcome still unknown after maximum attempts")
			d, err := s.settle(ctx, dep, domain.DepositStatusFailed, "")
			return d, true, err
		}
		return domain.DispositionDefer, true, nil
	}
}

// classify maps an attempt result to the next deposit status and counts
// the attempt.
func (s *Service) classify(ctx context.Context, depositID, repository string, err error) domain.DepositStatus {
	if err == nil {
		return domain.DepositStatusAccepted
	}

	n := s.attempts.Inc(depositID)
	exhausted := n >= s.cfg.MaxAttempts
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		"attempts":     n,
		"max_attempts": s.cfg.MaxAttempts,
	})
	log := zerowrap.FromCtx(ctx)

	var retryable bool
	next := domain.DepositStatusRetrying

	if te, ok := domain.AsTransportError(err); ok {
		if s.metrics != nil {
			s.metrics.RecordTransportError(ctx, repository, te.Kind)
		}
		retryable = te.Retryable()
		if te.Kind == domain.TransportUnknownOutcome {
			next = domain.DepositStatusNeedsVerification
		}
	} else if pe, ok := domain.AsPackagingError(err); ok {
		retryable = pe.Retryable()
	} else {
		// Unclassified errors, including an expired attempt deadline, are transient.
		retryable = true
	}

	switch {
	case !retryable:
		log.Error().Err(err).Msg("dispatch failed permanently")
		return domain.DepositStatusFailed
	case exhausted:
		log.Error().Err(err).Msg("dispatch attempts exhausted")
		return domain.DepositStatusFailed
	default:
		return next
	}
}

// settle persists next and decides the disposition. Terminal outcomes also
// refresh the submission's aggregated status.
func (s *Service) settle(ctx context.Context, dep *domain.Deposit, next domain.DepositStatus, receipt string) (domain.Disposition, error) {
	log := zerowrap.FromCtx(ctx)

	_, err := s.store.UpdateDeposit(ctx, domain.DepositUpdate{
		ID:      dep.ID,
		Version: dep.Version,
		Status:  next,
		Receipt: receipt,
	})
	if err != nil {
		return s.writeFailed(ctx, dep, err)
	}

	log.Info().Str(zerowrap.FieldStatus, string(next)).Msg("deposit status updated")

	if next.IsIntermediate() {
		return domain.DispositionDefer, nil
	}

	s.attempts.Reset(dep.ID)
	s.fanout.RemoveValue(dep.SubmissionID, dep.ID)
	s.refreshSubmission(ctx, dep.SubmissionID)
	return domain.DispositionAck, nil
}

// writeFailed handles a failed status write. A conflict means another actor
// changed the deposit: the attempt is abandoned and the message settled.
func (s *Service) writeFailed(ctx context.Context, dep *domain.Deposit, err error) (domain.Disposition, error) {
	log := zerowrap.FromCtx(ctx)

	if errors.Is(err, domain.ErrConflict) {
		log.Warn().Err(err).Msg("deposit changed concurrently, abandoning attempt")
		s.fanout.RemoveValue(dep.SubmissionID, dep.ID)
		return domain.DispositionAck, nil
	}
	if errors.Is(err, domain.ErrEntityNotFound) {
		log.Warn().Msg("deposit disappeared, discarding message")
		s.fanout.RemoveValue(dep.SubmissionID, dep.ID)
		return domain.DispositionAck, nil
	}
	return domain.DispositionDefer, log.WrapErr(err, "failed to persist deposit status")
}

func receiptLocation(r *domain.Receipt) string {
	if r == nil {
		return ""
	}
	if r.Location != "" {
		return r.Location
	}
	if r.Identifier != "" {
		return r.Identifier
	}
	if r.StatusCode != 0 {
		return fmt.Sprintf("%s:%d", r.Protocol, r.StatusCode)
	}
	return ""
}
