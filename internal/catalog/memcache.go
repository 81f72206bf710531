package catalog

import (
	"sync"
	"time"
)

type cacheEntry struct {
	candidates []Candidate
	expires    time.Time
}

type memCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newMemCache(ttl time.Duration) *memCache {
	return &memCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *memCache) get(key string) ([]Candidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.candidates, true
}

func (c *memCache) set(key string, cands []Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		candidates: cands,
		expires:    time.Now().Add(c.ttl),
	}
}
