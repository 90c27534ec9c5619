package out

import (
	"context"
	"time"

	"github.com/bnema/ferry/internal/domain"
)

// DispatchMetrics records dispatch outcomes. Implementations must be safe
// for concurrent use.
type DispatchMetrics interface {
	RecordAttempt(ctx context.Context, repository string, outcome domain.DepositStatus, elapsed time.Duration)
	RecordTransportError(ctx context.Context, repository string, kind domain.TransportErrorKind)
	RecordPackageSize(ctx context.Context, repository string, bytes int64)
}
