// Package signal provides observable values: a current value with
// read access plus change notification to subscribers.
package signal

import "sync"

// Signal holds a value and notifies subscribers whenever it is set
type Signal[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[int]func(T)
	nextID int
}

// New creates a signal holding the initial value
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the current value
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers synchronously.
// Subscribers run outside the lock and may call Get.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn for future changes. The returned function
// removes the subscription and is safe to call more than once.
func (s *Signal[T]) Subscribe(fn func(T)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
