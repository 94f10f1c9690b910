// Package ratelimit provides a per-key token bucket limiter scoped to its owner.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yanqian/accessroute/pkg/util"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per key and forgets keys idle for longer than ttl.
// Time is read from the injected clock so callers can drive it in tests.
type KeyedLimiter struct {
	mu      sync.Mutex
	clock   util.Clock
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	entries map[string]*entry
}

// New builds a limiter allowing `limit` events per second per key with the given burst.
func New(limit rate.Limit, burst int, ttl time.Duration, clock util.Clock) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if clock == nil {
		clock = util.SystemClock
	}
	return &KeyedLimiter{
		clock:   clock,
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// Every is a convenience for "one event per interval".
func Every(interval time.Duration) rate.Limit {
	return rate.Every(interval)
}

// Allow reports whether an event for key may happen now and consumes a token if so.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	l.cleanupLocked(now)
	return e.limiter.AllowN(now, 1)
}

// LastAccess returns the last time key was seen.
func (l *KeyedLimiter) LastAccess(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.lastSeen, true
}

// Len reports how many keys are tracked.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *KeyedLimiter) cleanupLocked(now time.Time) {
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > l.ttl {
			delete(l.entries, key)
		}
	}
}
