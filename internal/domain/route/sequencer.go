package route

import (
	"context"
	"sync"
)

// Sequencer hands out request generations per client. Starting a new request cancels the
// client's previous one, and only the latest generation may publish its result.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	current map[string]ticket
}

type ticket struct {
	generation uint64
	cancel     context.CancelFunc
}

// NewSequencer returns an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{current: make(map[string]ticket)}
}

// Begin registers a new request for key. The returned context is cancelled when a newer
// request for the same key begins or when release is called.
func (s *Sequencer) Begin(ctx context.Context, key string) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.next++
	generation := s.next
	if prev, ok := s.current[key]; ok {
		prev.cancel()
	}
	s.current[key] = ticket{generation: generation, cancel: cancel}
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		if t, ok := s.current[key]; ok && t.generation == generation {
			delete(s.current, key)
		}
		s.mu.Unlock()
		cancel()
	}
	return ctx, generation, release
}

// IsLatest reports whether generation is still the newest request for key.
func (s *Sequencer) IsLatest(key string, generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.current[key]
	return ok && t.generation == generation
}

// InFlight returns the number of clients with an outstanding request.
func (s *Sequencer) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current)
}
