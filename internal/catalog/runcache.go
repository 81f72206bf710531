package catalog

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// RunCache memoizes catalog lookups for the duration of one run. Each
// distinct query reaches the underlying catalog at most once, even when
// requested concurrently. Failures are recorded and degrade to an empty
// candidate list.
type RunCache struct {
	catalog  Catalog
	language string
	log      *slog.Logger

	group   singleflight.Group
	mu      sync.Mutex
	results map[string][]Candidate
	errs    []*ResolutionError
}

// NewRunCache wraps c for a single run.
func NewRunCache(c Catalog, language string, log *slog.Logger) *RunCache {
	if log == nil {
		log = slog.Default()
	}
	return &RunCache{
		catalog:  c,
		language: language,
		log:      log,
		results:  make(map[string][]Candidate),
	}
}

// Lookup returns the candidates for query.
func (r *RunCache) Lookup(ctx context.Context, query string) []Candidate {
	if query == "" || r.catalog == nil {
		return nil
	}

	r.mu.Lock()
	cands, ok := r.results[query]
	r.mu.Unlock()
	if ok {
		return cands
	}

	v, _, _ := r.group.Do(query, func() (any, error) {
		r.mu.Lock()
		if cands, ok := r.results[query]; ok {
			r.mu.Unlock()
			return cands, nil
		}
		r.mu.Unlock()

		cands, err := r.catalog.SearchCandidates(ctx, query, r.language)
		r.mu.Lock()
		defer r.mu.Unlock()
		if err != nil {
			r.log.Warn("catalog lookup failed", "query", query, "error", err)
			r.errs = append(r.errs, &ResolutionError{Query: query, Err: err})
			cands = nil
		}
		r.results[query] = cands
		return cands, nil
	})
	cands, _ = v.([]Candidate)
	return cands
}

// Resolve looks up cleanTitle and resolves it against the results.
func (r *RunCache) Resolve(ctx context.Context, cleanTitle string) Match {
	return Resolve(cleanTitle, r.Lookup(ctx, cleanTitle))
}

// Errors returns the lookups that failed during this run.
func (r *RunCache) Errors() []*ResolutionError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ResolutionError, len(r.errs))
	copy(out, r.errs)
	return out
}
