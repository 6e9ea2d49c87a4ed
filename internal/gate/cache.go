package gate

import (
	"sync"
	"time"

	"polysim/internal/market"
)

type cacheEntry struct {
	data      []market.Scored
	fetchedAt time.Time
}

// Cache holds scored batches per query key with a TTL. Expired entries are
// kept so the pipeline can fall back to stale data when a refresh fails.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
}

// Get returns the cached batch for key. fresh reports whether the entry is
// within its TTL; ok reports whether any entry exists at all.
func (c *Cache) Get(key string) (data []market.Scored, fresh bool, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, false
	}
	return entry.data, c.now().Sub(entry.fetchedAt) < c.ttl, true
}

// Put replaces the entry for key atomically.
func (c *Cache) Put(key string, data []market.Scored) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, fetchedAt: c.now()}
}
