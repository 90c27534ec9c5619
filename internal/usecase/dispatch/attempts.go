package dispatch

import "sync"

// attemptTracker counts dispatch attempts per deposit. Counts live in
// memory only; a restart grants every deposit a fresh budget.
type attemptTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

func newAttemptTracker() *attemptTracker {
	return &attemptTracker{counts: make(map[string]int)}
}

// Inc records one more attempt for id and returns the new count.
func (a *attemptTracker) Inc(id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counts[id]++
	return a.counts[id]
}

// Count returns the attempts recorded for id.
func (a *attemptTracker) Count(id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.counts[id]
}

// Reset forgets id.
func (a *attemptTracker) Reset(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.counts, id)
}
