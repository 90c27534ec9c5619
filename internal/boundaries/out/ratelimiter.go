package out

import "context"

// RateLimiter defines the contract for throttling dispatch attempts.
type RateLimiter interface {
	// Allow reports whether one more attempt for key may start now.
	// Key is a repository key.
	Allow(ctx context.Context, key string) bool
}
