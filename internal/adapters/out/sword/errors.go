package sword

import (
	"context"
	"errors"
	"net"

	"github.com/bnema/ferry/internal/domain"
)

// classifyRequestError maps a failed round trip to a transport error kind.
// Once the whole body was sent, the repository may have stored the
// package, so anything short of a response is an unknown outcome.
func classifyRequestError(ctx context.Context, err error, bodySent bool) domain.TransportErrorKind {
	if bodySent {
		return domain.TransportUnknownOutcome
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.TransportTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.TransportTimeout
	}
	return domain.TransportConnectionFailure
}
