package naming

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Planner tracks destination paths claimed by source files across a whole
// run. Unlike a renaming resolver it never invents alternative names: a
// second source claiming a destination puts every claimant in conflict.
// All methods are goroutine-safe.
type Planner struct {
	mu        sync.Mutex
	owners    map[string]string   // destination → first source
	conflicts map[string][]string // destination → all sources, once contested
}

// NewPlanner creates a ready-to-use planner.
func NewPlanner() *Planner {
	return &Planner{
		owners:    make(map[string]string),
		conflicts: make(map[string][]string),
	}
}

// Claim registers source as the writer of dest. It returns a
// *ConflictError (matching ErrConflict) when another source already claimed
// dest; the earlier claimant is then in conflict too.
func (p *Planner) Claim(source, dest string) error {
	dest = filepath.Clean(dest)

	p.mu.Lock()
	defer p.mu.Unlock()

	owner, exists := p.owners[dest]
	if !exists || owner == source {
		if _, contested := p.conflicts[dest]; !contested {
			p.owners[dest] = source
			return nil
		}
	}

	sources, contested := p.conflicts[dest]
	if !contested {
		sources = []string{owner}
	}
	if !slices.Contains(sources, source) {
		sources = append(sources, source)
	}
	slices.Sort(sources)
	p.conflicts[dest] = sources
	return &ConflictError{Destination: dest, Sources: slices.Clone(sources)}
}

// Conflicts returns every contested destination with all its sources.
func (p *Planner) Conflicts() []*ConflictError {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*ConflictError, 0, len(p.conflicts))
	for dest, sources := range p.conflicts {
		out = append(out, &ConflictError{Destination: dest, Sources: slices.Clone(sources)})
	}
	slices.SortFunc(out, func(a, b *ConflictError) int {
		return strings.Compare(a.Destination, b.Destination)
	})
	return out
}
