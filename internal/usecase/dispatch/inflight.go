package dispatch

import "sync"

// inFlight marks deposits currently being dispatched by some worker.
type inFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInFlight() *inFlight {
	return &inFlight{ids: make(map[string]struct{})}
}

// TryAcquire marks id as in flight. It returns false if id already was.
func (f *inFlight) TryAcquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

// Release clears the marker of id.
func (f *inFlight) Release(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.ids, id)
}

// Len returns the number of deposits in flight.
func (f *inFlight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.ids)
}
