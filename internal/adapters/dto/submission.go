package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/ferry/internal/domain"
)

// SubmissionFile is one custodial file in a submission document.
type SubmissionFile struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	ContentType string `json:"content_type,omitempty"`
}

// DepositRequest asks for one deposit of the submission to a repository.
type DepositRequest struct {
	ID         string `json:"id"`
	Repository string `json:"repository"`
}

// SubmissionDocument is the JSON form of a submission used for seeding the
// store and for local package assembly.
type SubmissionDocument struct {
	ID          string           `json:"id"`
	Files       []SubmissionFile `json:"files"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
	Deposits    []DepositRequest `json:"deposits,omitempty"`
}

// ToDomain converts the document to a submission snapshot.
func (d SubmissionDocument) ToDomain() (*domain.Submission, error) {
	if strings.TrimSpace(d.ID) == "" {
		return nil, fmt.Errorf("submission id is required")
	}

	sub := &domain.Submission{
		ID:       d.ID,
		Metadata: d.Metadata,
	}
	if d.SubmittedAt != nil {
		sub.SubmittedAt = d.SubmittedAt.UTC()
	}
	for i, f := range d.Files {
		if f.Name == "" || f.Location == "" {
			return nil, fmt.Errorf("file %d: name and location are required", i)
		}
		sub.Files = append(sub.Files, domain.SubmissionFile{
			Name:        f.Name,
			Location:    f.Location,
			ContentType: f.ContentType,
		})
	}
	return sub, nil
}

// DepositsToDomain returns the requested deposits of the submission.
func (d SubmissionDocument) DepositsToDomain() ([]*domain.Deposit, error) {
	deposits := make([]*domain.Deposit, 0, len(d.Deposits))
	for i, r := range d.Deposits {
		if r.ID == "" || r.Repository == "" {
			return nil, fmt.Errorf("deposit %d: id and repository are required", i)
		}
		deposits = append(deposits, &domain.Deposit{
			ID:            r.ID,
			SubmissionID:  d.ID,
			RepositoryKey: r.Repository,
		})
	}
	return deposits, nil
}
