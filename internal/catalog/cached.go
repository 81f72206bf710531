package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const keyPrefixSearch = "catalog:search:"

// Cached wraps a Catalog with the persistent SQLite cache so that repeated
// runs over the same library do not hit the network.
type Cached struct {
	inner Catalog
	cache *Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCached creates a cached catalog.
func NewCached(inner Catalog, cache *Cache, ttl time.Duration, log *slog.Logger) *Cached {
	if log == nil {
		log = slog.Default()
	}
	return &Cached{inner: inner, cache: cache, ttl: ttl, log: log}
}

// SearchCandidates serves from cache when possible.
func (c *Cached) SearchCandidates(ctx context.Context, query, language string) ([]Candidate, error) {
	key := keyPrefixSearch + language + ":" + query

	if data, ok := c.cache.Get(ctx, key); ok {
		var cands []Candidate
		if err := json.Unmarshal(data, &cands); err == nil {
			c.log.Debug("cache hit for search", "query", query, "results", len(cands))
			return cands, nil
		}
		c.log.Warn("failed to unmarshal cached search results", "query", query)
	}

	cands, err := c.inner.SearchCandidates(ctx, query, language)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cands)
	if err != nil {
		c.log.Warn("failed to marshal search results for cache", "query", query, "error", err)
		return cands, nil
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("failed to cache search results", "query", query, "error", err)
	}
	return cands, nil
}
