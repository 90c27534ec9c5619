package out

import (
	"context"

	"github.com/bnema/ferry/internal/domain"
)

// ProtocolBinding transmits an assembled package over one wire protocol.
// Failures are reported as *domain.TransportError.
type ProtocolBinding interface {
	Protocol() domain.Protocol
	Submit(ctx context.Context, pkg *domain.PackageStream, cfg domain.TransportConfig) (*domain.Receipt, error)
}

// Verifier is implemented by bindings that can check whether a package
// with the given name already reached the repository.
type Verifier interface {
	Verify(ctx context.Context, name string, cfg domain.TransportConfig) (domain.VerifyResult, *domain.Receipt, error)
}
