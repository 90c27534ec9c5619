package out

import (
	"context"

	"github.com/bnema/ferry/internal/domain"
)

// EntityStore defines the contract for the external submission/deposit
// metadata store. Updates are conditional on the version that was read and
// fail with domain.ErrConflict when the record changed underneath.
type EntityStore interface {
	// GetSubmission returns domain.ErrEntityNotFound for unknown ids.
	GetSubmission(ctx context.Context, id string) (*domain.Submission, error)

	// GetDeposit returns domain.ErrEntityNotFound for unknown ids.
	GetDeposit(ctx context.Context, id string) (*domain.Deposit, error)

	// ListDeposits returns the deposits of a submission ordered by id.
	ListDeposits(ctx context.Context, submissionID string) ([]domain.Deposit, error)

	// UpdateDeposit writes a status transition and returns the new version.
	UpdateDeposit(ctx context.Context, update domain.DepositUpdate) (int64, error)

	// UpdateSubmission writes an aggregated status and returns the new version.
	UpdateSubmission(ctx context.Context, update domain.SubmissionUpdate) (int64, error)
}
