// Package grouping collects parsed files into series/season groups and
// tracks per-file outcomes.
package grouping

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vmunix/anisort/internal/catalog"
	"github.com/vmunix/anisort/internal/scanner"
	"github.com/vmunix/anisort/pkg/release"
)

// Status is the state of a whole group.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusMatched   Status = "MATCHED"
	StatusUnmatched Status = "UNMATCHED"
	StatusConflict  Status = "CONFLICT"
	StatusDuplicate Status = "DUPLICATE"
	StatusCompleted Status = "COMPLETED"
)

// MemberStatus is the state of a single file in a group.
type MemberStatus string

const (
	MemberPending   MemberStatus = "pending"
	MemberDuplicate MemberStatus = "duplicate"
	MemberConflict  MemberStatus = "conflict"
	MemberOrganized MemberStatus = "organized"
	MemberSkipped   MemberStatus = "skipped"
	MemberFailed    MemberStatus = "failed"
)

// Key identifies a group: display title plus season.
type Key struct {
	Title  string `json:"title"`
	Season int    `json:"season"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s S%02d", k.Title, k.Season)
}

// Member is one file inside a group.
type Member struct {
	File        scanner.MediaFile `json:"file"`
	Meta        release.Metadata  `json:"meta"`
	Status      MemberStatus      `json:"status"`
	Reason      string            `json:"reason,omitempty"`
	Destination string            `json:"destination,omitempty"`
}

// Organizable reports whether the member should be handed to the organizer.
func (m *Member) Organizable() bool {
	return m.Status == MemberPending
}

// kind separates videos from each subtitle flavour so that a video and its
// sidecar are never duplicates of each other.
func (m *Member) kind() string {
	if m.File.IsSubtitle {
		return "subtitle:" + m.File.FullExt()
	}
	return "video"
}

// Group is all files believed to be the same series and season.
type Group struct {
	Key        Key                `json:"key"`
	Candidate  *catalog.Candidate `json:"candidate,omitempty"`
	Confidence int                `json:"confidence"`
	Members    []*Member          `json:"members"`
	Status     Status             `json:"status"`
}

// Counts tallies members by status.
func (g *Group) Counts() map[MemberStatus]int {
	out := make(map[MemberStatus]int)
	for _, m := range g.Members {
		out[m.Status]++
	}
	return out
}

func (g *Group) clone() *Group {
	c := *g
	if g.Candidate != nil {
		cand := *g.Candidate
		c.Candidate = &cand
	}
	c.Members = make([]*Member, len(g.Members))
	for i, m := range g.Members {
		mm := *m
		mm.Meta.SeasonRange = slices.Clone(m.Meta.SeasonRange)
		c.Members[i] = &mm
	}
	slices.SortFunc(c.Members, func(a, b *Member) int {
		return strings.Compare(a.File.Path, b.File.Path)
	})
	return &c
}

type dupKey struct {
	episode int
	kind    string
}

// recompute derives duplicate flags and the group status from the current
// members. It depends only on the member set, never on arrival order.
func (g *Group) recompute() {
	byEpisode := make(map[dupKey][]*Member)
	for _, m := range g.Members {
		if m.Status == MemberDuplicate {
			m.Status = MemberPending
			m.Reason = ""
		}
		if m.Meta.Episode == nil {
			continue
		}
		k := dupKey{episode: *m.Meta.Episode, kind: m.kind()}
		byEpisode[k] = append(byEpisode[k], m)
	}
	for k, members := range byEpisode {
		if len(members) < 2 {
			continue
		}
		paths := make([]string, len(members))
		for i, m := range members {
			paths[i] = m.File.Path
		}
		slices.Sort(paths)
		err := &DuplicateEpisodeError{Key: g.Key, Episode: k.episode, Paths: paths}
		for _, m := range members {
			if m.Status == MemberPending {
				m.Status = MemberDuplicate
				m.Reason = err.Error()
			}
		}
	}
	g.Status = g.deriveStatus()
}

func (g *Group) deriveStatus() Status {
	if len(g.Members) == 0 {
		return StatusPending
	}
	counts := g.Counts()
	switch {
	case counts[MemberOrganized] == len(g.Members):
		return StatusCompleted
	case counts[MemberConflict] > 0:
		return StatusConflict
	case counts[MemberDuplicate] > 0:
		return StatusDuplicate
	case g.Candidate != nil:
		return StatusMatched
	default:
		return StatusUnmatched
	}
}

// duplicates lists the duplicate episode sets of the group.
func (g *Group) duplicates() []*DuplicateEpisodeError {
	byEpisode := make(map[dupKey][]string)
	for _, m := range g.Members {
		if m.Status != MemberDuplicate || m.Meta.Episode == nil {
			continue
		}
		k := dupKey{episode: *m.Meta.Episode, kind: m.kind()}
		byEpisode[k] = append(byEpisode[k], m.File.Path)
	}
	var out []*DuplicateEpisodeError
	for k, paths := range byEpisode {
		slices.Sort(paths)
		out = append(out, &DuplicateEpisodeError{Key: g.Key, Episode: k.episode, Paths: paths})
	}
	slices.SortFunc(out, func(a, b *DuplicateEpisodeError) int {
		if a.Episode != b.Episode {
			return a.Episode - b.Episode
		}
		return strings.Compare(a.Paths[0], b.Paths[0])
	})
	return out
}
