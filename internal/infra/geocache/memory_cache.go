package geocache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/accessroute/internal/domain/search"
	"github.com/yanqian/accessroute/pkg/util"
)

type cachedPlace struct {
	place     search.Place
	expiresAt time.Time
}

// MemoryCache is an in-process search.Cache for tests/dev and the no-Valkey fallback.
type MemoryCache struct {
	mu      sync.Mutex
	clock   util.Clock
	entries map[string]cachedPlace
}

// NewMemoryCache constructs an empty cache. clock may be nil.
func NewMemoryCache(clock util.Clock) *MemoryCache {
	if clock == nil {
		clock = util.SystemClock
	}
	return &MemoryCache{clock: clock, entries: make(map[string]cachedPlace)}
}

// Get implements search.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (search.Place, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return search.Place{}, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.clock.Now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return search.Place{}, false, nil
	}
	return entry.place, true, nil
}

// Set implements search.Cache. A non-positive ttl keeps the entry forever.
func (c *MemoryCache) Set(_ context.Context, key string, place search.Place, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	c.pruneLocked(now)
	entry := cachedPlace{place: place}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

// pruneLocked drops expired entries. Callers must hold c.mu.
func (c *MemoryCache) pruneLocked(now time.Time) {
	for key, entry := range c.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var _ search.Cache = (*MemoryCache)(nil)
