package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business-level errors that can occur in the system.
// These errors are used across layers to communicate specific failure conditions.
var (
	// Entity store errors
	ErrEntityNotFound = errors.New("entity not found")
	ErrConflict       = errors.New("entity was modified concurrently")

	// Repository configuration errors
	ErrRepositoryNotFound = errors.New("repository not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrUnknownProtocol    = errors.New("unknown protocol binding")

	// Packaging errors
	ErrUnsupportedOptions = errors.New("unsupported assembler option combination")
	ErrPackageConsumed    = errors.New("package stream already consumed")
	ErrPackageTooLarge    = errors.New("package exceeds maximum size")

	// Messaging errors
	ErrInvalidMessage = errors.New("invalid message")
)

// PackagingCause classifies why a package could not be assembled.
type PackagingCause string

const (
	PackagingCauseIO                 PackagingCause = "io"
	PackagingCauseUnsupportedOptions PackagingCause = "unsupported-option-combination"
	PackagingCauseMetadata           PackagingCause = "metadata-serialization"
)

// PackagingError is returned by the package assembler.
type PackagingError struct {
	Cause PackagingCause
	Err   error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("packaging failed (%s): %v", e.Cause, e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}

// Retryable reports whether assembling again could succeed.
// Only I/O failures are transient; option and metadata problems are not.
func (e *PackagingError) Retryable() bool {
	return e.Cause == PackagingCauseIO
}

// NewPackagingError wraps err with the given cause.
func NewPackagingError(cause PackagingCause, err error) *PackagingError {
	return &PackagingError{Cause: cause, Err: err}
}

// TransportErrorKind classifies a failed protocol submission.
type TransportErrorKind string

const (
	TransportAuthFailure       TransportErrorKind = "auth-failure"
	TransportConnectionFailure TransportErrorKind = "connection-failure"
	TransportRemoteRejected    TransportErrorKind = "remote-rejected"
	TransportTimeout           TransportErrorKind = "timeout"
	// TransportUnknownOutcome means the request may or may not have been
	// applied remotely: neither success nor failure was confirmed.
	TransportUnknownOutcome TransportErrorKind = "unknown-outcome"
)

// TransportError is returned by protocol bindings.
type TransportError struct {
	Kind       TransportErrorKind
	Protocol   Protocol
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s transport to %s failed (%s)", e.Protocol, e.Endpoint, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient.
func (e *TransportError) Retryable() bool {
	switch e.Kind {
	case TransportConnectionFailure, TransportTimeout, TransportUnknownOutcome:
		return true
	default:
		return false
	}
}

// AsTransportError extracts a *TransportError from err's chain.
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// AsPackagingError extracts a *PackagingError from err's chain.
func AsPackagingError(err error) (*PackagingError, bool) {
	var pe *PackagingError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
