package in

import (
	"context"

	"github.com/bnema/ferry/internal/domain"
)

// PackageAssembler builds a deposit-ready package for a submission.
// Failures are reported as *domain.PackagingError.
type PackageAssembler interface {
	Assemble(ctx context.Context, submission *domain.Submission, cfg domain.AssemblerConfig) (*domain.PackageStream, error)
}
