package out

import (
	"context"
	"io"
)

// ContentSource resolves a custodial file location to its bytes.
type ContentSource interface {
	// Open returns a reader for location and its size, or -1 if unknown.
	Open(ctx context.Context, location string) (io.ReadCloser, int64, error)
}
