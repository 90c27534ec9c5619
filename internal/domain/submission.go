package domain

import "time"

// SubmissionFile is one custodial file of a submission.
type SubmissionFile struct {
	// Name is the relative path the file keeps inside the package.
	Name string
	// Location identifies the byte source, resolved by a ContentSource
	// (e.g. "file://...", "s3://bucket/key" or a path relative to the content root).
	Location    string
	ContentType string
}

// Submission is a read-only snapshot of a unit of custodial files plus
// metadata to be deposited.
type Submission struct {
	ID               string
	Files            []SubmissionFile
	Metadata         map[string]any
	AggregatedStatus AggregatedDepositStatus
	Version          int64
	SubmittedAt      time.Time
}

// Deposit is one transmission record of a submission's package to one repository.
type Deposit struct {
	ID            string
	SubmissionID  string
	RepositoryKey string
	Status        DepositStatus
	// Receipt holds the transport receipt or location after acceptance.
	Receipt   string
	Version   int64
	UpdatedAt time.Time
}

// DepositUpdate is a conditional status write. Version is the version the
// caller read; the write fails with ErrConflict if the record moved on.
type DepositUpdate struct {
	ID      string
	Version int64
	Status  DepositStatus
	Receipt string
}

// SubmissionUpdate is a conditional aggregated status write.
type SubmissionUpdate struct {
	ID      string
	Version int64
	Status  AggregatedDepositStatus
}
