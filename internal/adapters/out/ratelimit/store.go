package ratelimit

import (
	"strings"

	"github.com/bnema/zerowrap"
	"golang.org/x/time/rate"
)

// Limit is a dispatch budget for one repository. A non-positive PerSecond
// leaves the repository unthrottled.
type Limit struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

func (l Limit) limiter() *rate.Limiter {
	if l.PerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := l.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(l.PerSecond), burst)
}

// Config is the default budget plus per-repository overrides. Override keys
// match repository keys case-insensitively.
type Config struct {
	Default      Limit
	Repositories map[string]Limit
}

// Throttled reports whether any repository has a finite budget.
func (c Config) Throttled() bool {
	if c.Default.PerSecond > 0 {
		return true
	}
	for _, l := range c.Repositories {
		if l.PerSecond > 0 {
			return true
		}
	}
	return false
}

func (c Config) limitFor(key string) Limit {
	if l, ok := c.Repositories[strings.ToLower(key)]; ok {
		return l
	}
	return c.Default
}

func (c Config) normalized() Config {
	out := Config{Default: c.Default, Repositories: make(map[string]Limit, len(c.Repositories))}
	for key, l := range c.Repositories {
		out.Repositories[strings.ToLower(key)] = l
	}
	return out
}

// New returns the dispatch limiter for cfg, or false when no repository is
// throttled and dispatch can skip the check entirely.
func New(cfg Config, log zerowrap.Logger) (*MemoryStore, bool) {
	if !cfg.Throttled() {
		return nil, false
	}
	return NewMemoryStore(cfg, log), true
}
