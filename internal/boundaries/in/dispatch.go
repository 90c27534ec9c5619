package in

import (
	"context"

	"github.com/bnema/ferry/internal/domain"
)

// DispatchService processes entity-changed messages.
type DispatchService interface {
	// Handle processes one message and tells the transport how to settle it.
	Handle(ctx context.Context, msg domain.Message) (domain.Disposition, error)
}
