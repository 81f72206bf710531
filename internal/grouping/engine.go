package grouping

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/vmunix/anisort/internal/catalog"
	"github.com/vmunix/anisort/internal/scanner"
	"github.com/vmunix/anisort/pkg/release"
)

// Engine accumulates groups. It is safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	groups map[Key]*Group
	byPath map[string]*Member
	keyOf  map[string]Key
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{
		groups: make(map[Key]*Group),
		byPath: make(map[string]*Member),
		keyOf:  make(map[string]Key),
	}
}

// KeyFor computes the group key of a file.
func KeyFor(meta release.Metadata, match catalog.Match) Key {
	title := meta.CleanTitle
	if match.Matched && match.Candidate != nil {
		title = match.Candidate.DisplayTitle
	}
	return Key{Title: title, Season: meta.SeasonOrDefault()}
}

// Add places a file into its group and returns the group key. Adding a path
// twice replaces the earlier entry.
func (e *Engine) Add(file scanner.MediaFile, meta release.Metadata, match catalog.Match) Key {
	key := KeyFor(meta, match)

	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.keyOf[file.Path]; ok {
		e.removeLocked(old, file.Path)
	}

	g, ok := e.groups[key]
	if !ok {
		g = &Group{Key: key, Status: StatusPending}
		e.groups[key] = g
	}
	if match.Matched && match.Candidate != nil && preferCandidate(g, match) {
		cand := *match.Candidate
		g.Candidate = &cand
		g.Confidence = match.Confidence
	}

	m := &Member{File: file, Meta: meta, Status: MemberPending}
	g.Members = append(g.Members, m)
	e.byPath[file.Path] = m
	e.keyOf[file.Path] = key
	g.recompute()
	return key
}

// preferCandidate picks the higher-confidence candidate, breaking ties by ID
// so that the outcome does not depend on the order files arrive in.
func preferCandidate(g *Group, match catalog.Match) bool {
	if g.Candidate == nil {
		return true
	}
	if match.Confidence != g.Confidence {
		return match.Confidence > g.Confidence
	}
	return match.Candidate.ID < g.Candidate.ID
}

func (e *Engine) removeLocked(key Key, path string) {
	g := e.groups[key]
	if g == nil {
		return
	}
	g.Members = slices.DeleteFunc(g.Members, func(m *Member) bool { return m.File.Path == path })
	if len(g.Members) == 0 {
		delete(e.groups, key)
	} else {
		g.recompute()
	}
	delete(e.byPath, path)
	delete(e.keyOf, path)
}

// Len returns the number of groups.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.groups)
}

// Groups returns a deep copy of all groups keyed by Key.
func (e *Engine) Groups() map[Key]*Group {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[Key]*Group, len(e.groups))
	for k, g := range e.groups {
		out[k] = g.clone()
	}
	return out
}

// Sorted returns a deep copy of all groups ordered by title then season.
func (e *Engine) Sorted() []*Group {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Group, 0, len(e.groups))
	for _, g := range e.groups {
		out = append(out, g.clone())
	}
	slices.SortFunc(out, func(a, b *Group) int {
		if c := strings.Compare(a.Key.Title, b.Key.Title); c != 0 {
			return c
		}
		return cmp.Compare(a.Key.Season, b.Key.Season)
	})
	return out
}

// Group returns a deep copy of one group.
func (e *Engine) Group(key Key) (*Group, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groups[key]
	if !ok {
		return nil, false
	}
	return g.clone(), true
}

// Duplicates returns every duplicate episode set across all groups.
func (e *Engine) Duplicates() []*DuplicateEpisodeError {
	var out []*DuplicateEpisodeError
	for _, g := range e.Sorted() {
		out = append(out, g.duplicates()...)
	}
	return out
}

// MarkConflict flags a member whose destination collides with another file.
func (e *Engine) MarkConflict(path, reason string) error {
	return e.mark(path, MemberConflict, reason, "")
}

// MarkOrganized records a successful organize.
func (e *Engine) MarkOrganized(path, destination string) error {
	return e.mark(path, MemberOrganized, "", destination)
}

// MarkFailed records a failed organize.
func (e *Engine) MarkFailed(path, reason string) error {
	return e.mark(path, MemberFailed, reason, "")
}

// MarkSkipped records a member that was deliberately not organized.
func (e *Engine) MarkSkipped(path, reason string) error {
	return e.mark(path, MemberSkipped, reason, "")
}

// SetDestination records the planned destination without changing status.
func (e *Engine) SetDestination(path, destination string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.byPath[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFile, path)
	}
	m.Destination = destination
	return nil
}

func (e *Engine) mark(path string, status MemberStatus, reason, destination string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.byPath[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFile, path)
	}
	m.Status = status
	m.Reason = reason
	if destination != "" {
		m.Destination = destination
	}
	e.groups[e.keyOf[path]].Status = e.groups[e.keyOf[path]].deriveStatus()
	return nil
}
