// Package keyset provides a thread-safe map from keys to sets of values.
package keyset

import "sync"

// Set maps each key to a set of values. The zero value is not usable; use New.
type Set[K comparable, V comparable] struct {
	mu    sync.RWMutex
	items map[K]map[V]struct{}
}

// New creates an empty Set.
func New[K comparable, V comparable]() *Set[K, V] {
	return &Set[K, V]{items: make(map[K]map[V]struct{})}
}

// Add records value under key.
func (s *Set[K, V]) Add(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.items[key]
	if !ok {
		values = make(map[V]struct{})
		s.items[key] = values
	}
	values[value] = struct{}{}
}

// Get returns a copy of the values recorded under key, in no particular order.
func (s *Set[K, V]) Get(key K) []V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := s.items[key]
	out := make([]V, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	return out
}

// Has reports whether value is recorded under key.
func (s *Set[K, V]) Has(key K, value V) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.items[key][value]
	return ok
}

// Remove drops key and all its values.
func (s *Set[K, V]) Remove(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
}

// RemoveValue drops value from key. The key disappears with its last value.
// It returns the number of values left under key.
func (s *Set[K, V]) RemoveValue(key K, value V) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.items[key]
	if !ok {
		return 0
	}
	delete(values, value)
	if len(values) == 0 {
		delete(s.items, key)
	}
	return len(values)
}

// RemoveValueFromAll drops value from every key and returns how many keys
// held it. Keys left empty disappear.
func (s *Set[K, V]) RemoveValueFromAll(value V) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, values := range s.items {
		if _, ok := values[value]; !ok {
			continue
		}
		delete(values, value)
		if len(values) == 0 {
			delete(s.items, key)
		}
		n++
	}
	return n
}

// Size returns the number of keys.
func (s *Set[K, V]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Clear drops every key.
func (s *Set[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[K]map[V]struct{})
}
