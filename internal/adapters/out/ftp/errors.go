package ftp

import (
	"context"
	"errors"
	"net"
	"net/textproto"

	"github.com/jlaffaye/ftp"

	"github.com/bnema/ferry/internal/domain"
)

// replyCode returns the FTP reply code carried by err, or 0 when the server
// never answered.
func replyCode(err error) int {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code
	}
	return 0
}

// classify maps an FTP failure to a transport error kind. A negative reply
// means the command was refused: 530 is an auth failure, other 4xx replies
// are transient and 5xx replies are permanent.
func classify(ctx context.Context, err error) domain.TransportErrorKind {
	switch code := replyCode(err); {
	case code == ftp.StatusNotLoggedIn:
		return domain.TransportAuthFailure
	case code >= 400 && code < 500:
		return domain.TransportConnectionFailure
	case code >= 500:
		return domain.TransportRemoteRejected
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.TransportTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.TransportTimeout
	}
	return domain.TransportConnectionFailure
}

// classifyCommit maps a failed rename. Without a reply the rename may
// have been applied, so the outcome is unknown.
func classifyCommit(ctx context.Context, err error) domain.TransportErrorKind {
	if replyCode(err) == 0 {
		return domain.TransportUnknownOutcome
	}
	return classify(ctx, err)
}
