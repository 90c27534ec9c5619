// Package sqlite implements the EntityStore on SQLite (modernc.org/sqlite,
// pure Go). Every row carries a version; updates are conditional on it.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/zerowrap"
	_ "modernc.org/sqlite"

	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

var _ out.EntityStore = (*Store)(nil)

// Store is a SQLite-backed entity store.
type Store struct {
	db  *sql.DB
	now func() time.Time
	log zerowrap.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, log zerowrap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; readers share the same connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "sqlite").
		Str(zerowrap.FieldPath, path).
		Msg("entity store opened")

	return &Store{db: db, now: time.Now, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// GetSubmission loads a submission with its files in submission order.
func (s *Store) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	var (
		sub         domain.Submission
		metadata    string
		status      string
		submittedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, metadata, aggregated_status, version, submitted_at FROM submissions WHERE id = ?`, id,
	).Scan(&sub.ID, &metadata, &status, &sub.Version, &submittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: submission %s", domain.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}

	sub.AggregatedStatus = domain.AggregatedDepositStatus(status)
	sub.SubmittedAt = parseTime(submittedAt)
	if err := json.Unmarshal([]byte(metadata), &sub.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode submission metadata: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, location, content_type FROM submission_files WHERE submission_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f domain.SubmissionFile
		if err := rows.Scan(&f.Name, &f.Location, &f.ContentType); err != nil {
			return nil, fmt.Errorf("failed to scan submission file: %w", err)
		}
		sub.Files = append(sub.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submission files: %w", err)
	}

	return &sub, nil
}

const depositColumns = `id, submission_id, repository_key, status, receipt, version, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeposit(row rowScanner) (*domain.Deposit, error) {
	var (
		dep       domain.Deposit
		status    string
		updatedAt string
	)
	if err := row.Scan(&dep.ID, &dep.SubmissionID, &dep.RepositoryKey, &status, &dep.Receipt, &dep.Version, &updatedAt); err != nil {
		return nil, err
	}
	dep.Status = domain.DepositStatus(status)
	dep.UpdatedAt = parseTime(updatedAt)
	return &dep, nil
}

// GetDeposit loads one deposit.
func (s *Store) GetDeposit(ctx context.Context, id string) (*domain.Deposit, error) {
	dep, err := scanDeposit(s.db.QueryRowContext(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: deposit %s", domain.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query deposit: %w", err)
	}
	return dep, nil
}

// ListDeposits returns the deposits of a submission ordered by id.
func (s *Store) ListDeposits(ctx context.Context, submissionID string) ([]domain.Deposit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE submission_id = ? ORDER BY id`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		dep, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, *dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deposits: %w", err)
	}
	return deposits, nil
}

// PendingDeposits returns the ids of every deposit in an intermediate
// status, ordered by id.
func (s *Store) PendingDeposits(ctx context.Context) ([]string, error) {
	var (
		args         []any
		placeholders []string
	)
	for _, status := range domain.DepositStatuses() {
		if status.IsIntermediate() {
			args = append(args, string(status))
			placeholders = append(placeholders, "?")
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM deposits WHERE status IN (`+strings.Join(placeholders, ", ")+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending deposits: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan deposit id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending deposits: %w", err)
	}
	return ids, nil
}

// UpdateDeposit writes a status transition if the deposit is still at the
// version the caller read. An empty receipt keeps the stored one.
func (s *Store) UpdateDeposit(ctx context.Context, u domain.DepositUpdate) (int64, error) {
	if !u.Status.Valid() {
		return 0, fmt.Errorf("invalid deposit status %q", u.Status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE deposits
		SET status = ?,
		    receipt = CASE WHEN ? = '' THEN receipt ELSE ? END,
		    version = version + 1,
		    updated_at = ?
		WHERE id = ? AND version = ?`,
		string(u.Status), u.Receipt, u.Receipt, formatTime(s.now()), u.ID, u.Version)
	if err != nil {
		return 0, fmt.Errorf("failed to update deposit: %w", err)
	}

	if err := s.checkUpdated(ctx, res, "deposits", u.ID); err != nil {
		return 0, err
	}

	s.log.Debug().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "sqlite").
		Str(zerowrap.FieldEntityID, u.ID).
		Str(zerowrap.FieldStatus, string(u.Status)).
		Int64("version", u.Version+1).
		Msg("deposit updated")

	return u.Version + 1, nil
}

// UpdateSubmission writes an aggregated status if the submission is still
// at the version the caller read.
func (s *Store) UpdateSubmission(ctx context.Context, u domain.SubmissionUpdate) (int64, error) {
	if !u.Status.Valid() {
		return 0, fmt.Errorf("invalid aggregated status %q", u.Status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE submissions
		SET aggregated_status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		string(u.Status), formatTime(s.now()), u.ID, u.Version)
	if err != nil {
		return 0, fmt.Errorf("failed to update submission: %w", err)
	}

	if err := s.checkUpdated(ctx, res, "submissions", u.ID); err != nil {
		return 0, err
	}
	return u.Version + 1, nil
}

// checkUpdated turns a zero-row update into ErrConflict or ErrEntityNotFound.
func (s *Store) checkUpdated(ctx context.Context, res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	exists, err := s.exists(ctx, s.db, table, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s %s", domain.ErrEntityNotFound, table, id)
	}
	return fmt.Errorf("%w: %s %s", domain.ErrConflict, table, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// exists reports whether id is present in table. table is never user input.
func (s *Store) exists(ctx context.Context, q querier, table, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return true, nil
}
