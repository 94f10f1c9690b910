package search

import (
	"context"
	"sync"
	"time"
)

// Debouncer lets only the last call in a burst per key proceed.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	next    uint64
	pending map[string]uint64
}

// NewDebouncer builds a debouncer with the given quiet period. A zero delay disables debouncing.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, pending: make(map[string]uint64)}
}

// Wait blocks for the quiet period and reports whether this call is still the newest for key.
// A newer Wait for the same key makes older ones return false once their timers fire.
func (d *Debouncer) Wait(ctx context.Context, key string) (bool, error) {
	if d.delay <= 0 {
		return true, nil
	}

	d.mu.Lock()
	d.next++
	ticket := d.next
	d.pending[key] = ticket
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		d.forget(key, ticket)
		return false, ctx.Err()
	case <-timer.C:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending[key] != ticket {
		return false, nil
	}
	delete(d.pending, key)
	return true, nil
}

func (d *Debouncer) forget(key string, ticket uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending[key] == ticket {
		delete(d.pending, key)
	}
}
