package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bnema/zerowrap"

	"github.com/bnema/ferry/internal/domain"
)

// CreateSubmission inserts a submission and its files. An unset aggregated
// status becomes not-started. The stored version is written back to sub.
func (s *Store) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	if sub.AggregatedStatus == "" {
		sub.AggregatedStatus = domain.AggregatedStatusNotStarted
	}
	if !sub.AggregatedStatus.Valid() {
		return fmt.Errorf("invalid aggregated status %q", sub.AggregatedStatus)
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.now()
	}

	metadata := sub.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode submission metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.exists(ctx, tx, "submissions", sub.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: submission %s already exists", domain.ErrConflict, sub.ID)
	}

	now := formatTime(s.now())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO submissions (id, metadata, aggregated_status, version, submitted_at, updated_at) VALUES (?, ?, ?, 1, ?, ?)`,
		sub.ID, string(encoded), string(sub.AggregatedStatus), formatTime(sub.SubmittedAt), now,
	); err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	for i, f := range sub.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO submission_files (submission_id, position, name, location, content_type) VALUES (?, ?, ?, ?, ?)`,
			sub.ID, i, f.Name, f.Location, f.ContentType,
		); err != nil {
			return fmt.Errorf("failed to insert submission file %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}
	sub.Version = 1

	s.log.Info().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "sqlite").
		Str(zerowrap.FieldEntityID, sub.ID).
		Int(zerowrap.FieldCount, len(sub.Files)).
		Msg("submission created")
	return nil
}

// CreateDeposit inserts a deposit of an existing submission. An unset
// status becomes submitted.
func (s *Store) CreateDeposit(ctx context.Context, dep *domain.Deposit) error {
	if dep.Status == "" {
		dep.Status = domain.DepositStatusSubmitted
	}
	if !dep.Status.Valid() {
		return fmt.Errorf("invalid deposit status %q", dep.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.exists(ctx, tx, "submissions", dep.SubmissionID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: submission %s", domain.ErrEntityNotFound, dep.SubmissionID)
	}

	exists, err = s.exists(ctx, tx, "deposits", dep.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: deposit %s already exists", domain.ErrConflict, dep.ID)
	}

	dep.UpdatedAt = s.now()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO deposits (id, submission_id, repository_key, status, receipt, version, updated_at) VALUES (?, ?, ?, ?, ?, 1, ?)`,
		dep.ID, dep.SubmissionID, dep.RepositoryKey, string(dep.Status), dep.Receipt, formatTime(dep.UpdatedAt),
	); err != nil {
		return fmt.Errorf("failed to insert deposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deposit: %w", err)
	}
	dep.Version = 1
	return nil
}
