// Package ratelimit throttles dispatch attempts per target repository.
package ratelimit

import (
	"context"
	"strings"
	"sync"

	"github.com/bnema/zerowrap"
	"golang.org/x/time/rate"

	"github.com/bnema/ferry/internal/boundaries/out"
)

var _ out.RateLimiter = (*MemoryStore)(nil)

// MemoryStore throttles dispatch attempts per repository. Each repository
// key gets its own token bucket, sized by its override or the default.
type MemoryStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	cfg      Config
	log      zerowrap.Logger
}

// NewMemoryStore creates an empty store for cfg.
func NewMemoryStore(cfg Config, log zerowrap.Logger) *MemoryStore {
	return &MemoryStore{
		limiters: make(map[string]*rate.Limiter),
		cfg:      cfg.normalized(),
		log:      log,
	}
}

// Allow reports whether one more dispatch attempt to the repository
// identified by key may start now.
func (s *MemoryStore) Allow(_ context.Context, key string) bool {
	if s.getLimiter(key).Allow() {
		return true
	}

	s.log.Debug().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "ratelimit").
		Str("repository", key).
		Msg("dispatch rate limited")
	return false
}

// Len returns the number of repository keys seen so far.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.limiters)
}

func (s *MemoryStore) getLimiter(key string) *rate.Limiter {
	key = strings.ToLower(key)

	s.mu.RLock()
	limiter, exists := s.limiters[key]
	s.mu.RUnlock()

	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists = s.limiters[key]; exists {
		return limiter
	}

	limiter = s.cfg.limitFor(key).limiter()
	s.limiters[key] = limiter
	return limiter
}
