package dispatch

import (
	"context"
	"errors"

	"github.com/bnema/zerowrap"

	"github.com/bnema/ferry/internal/domain"
)

// handleSubmission marks a submission in progress and fans out one deposit
// message per unsettled deposit.
func (s *Service) handleSubmission(ctx context.Context, id string) (domain.Disposition, error) {
	log := zerowrap.FromCtx(ctx)

	sub, err := s.store.GetSubmission(ctx, id)
	if errors.Is(err, domain.ErrEntityNotFound) {
		log.Warn().Msg("submission not found, discarding message")
		return domain.DispositionAck, nil
	}
	if err != nil {
		return domain.DispositionDefer, log.WrapErr(err, "failed to load submission")
	}

	if sub.AggregatedStatus.IsTerminal() {
		log.Debug().Str(zerowrap.FieldStatus, string(sub.AggregatedStatus)).Msg("submission already resolved")
		return domain.DispositionAck, nil
	}

	deposits, err := s.store.ListDeposits(ctx, id)
	if err != nil {
		return domain.DispositionDefer, log.WrapErr(err, "failed to list deposits")
	}
	if len(deposits) == 0 {
		log.Info().Msg("submission has no deposits")
		return domain.DispositionAck, nil
	}

	status := aggregate(deposits)
	if status != sub.AggregatedStatus {
		_, err := s.store.UpdateSubmission(ctx, domain.SubmissionUpdate{
			ID:      sub.ID,
			Version: sub.Version,
			Status:  status,
		})
		if errors.Is(err, domain.ErrConflict) {
			log.Warn().Err(err).Msg("submission changed concurrently, abandoning fan-out")
			return domain.DispositionAck, nil
		}
		if err != nil {
			return domain.DispositionDefer, log.WrapErr(err, "failed to persist submission status")
		}
		log.Info().Str(zerowrap.FieldStatus, string(status)).Msg("submission status updated")
	}

	published := 0
	for _, dep := range deposits {
		if dep.Status.IsTerminal() {
			continue
		}
		if err := s.publisher.Publish(ctx, domain.EntityDeposit, dep.ID); err != nil {
			return domain.DispositionDefer, log.WrapErrWithFields(err, "failed to publish deposit message", map[string]any{
				zerowrap.FieldEntityID: dep.ID,
			})
		}
		s.fanout.Add(sub.ID, dep.ID)
		published++
	}

	log.Info().Int(zerowrap.FieldCount, published).Msg("deposit messages published")
	return domain.DispositionAck, nil
}

// refreshSubmission recomputes and stores the aggregated status of a
// submission after one of its deposits settled. Failures are logged only:
// the deposit write is already durable.
func (s *Service) refreshSubmission(ctx context.Context, id string) {
	log := zerowrap.FromCtx(ctx)

	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		log.Warn().Err(err).Msg("failed to reload submission for status refresh")
		return
	}
	if sub.AggregatedStatus.IsTerminal() {
		return
	}

	deposits, err := s.store.ListDeposits(ctx, id)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list deposits for status refresh")
		return
	}

	status := aggregate(deposits)
	if status == sub.AggregatedStatus {
		return
	}

	if _, err := s.store.UpdateSubmission(ctx, domain.SubmissionUpdate{
		ID:      sub.ID,
		Version: sub.Version,
		Status:  status,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to refresh submission status")
		return
	}

	if status.IsTerminal() {
		s.fanout.Remove(id)
	}
	log.Info().Str(zerowrap.FieldStatus, string(status)).Msg("submission status updated")
}

func aggregate(deposits []domain.Deposit) domain.AggregatedDepositStatus {
	statuses := make([]domain.DepositStatus, len(deposits))
	for i, d := range deposits {
		statuses[i] = d.Status
	}
	return domain.AggregateDepositStatuses(statuses)
}
