package catalog

import (
	"context"
	"strconv"

	"github.com/vmunix/anisort/pkg/release"
)

// staticMinScore filters out obviously unrelated titles.
const staticMinScore = 50

// Static is an in-memory catalog, used offline and in tests.
type Static struct {
	items []Candidate
}

// NewStatic returns a catalog over a fixed candidate list.
func NewStatic(items ...Candidate) *Static {
	return &Static{items: items}
}

// NewStaticTitles builds a Static catalog from bare titles.
func NewStaticTitles(titles []string) *Static {
	items := make([]Candidate, 0, len(titles))
	for i, t := range titles {
		items = append(items, Candidate{ID: "static:" + strconv.Itoa(i+1), DisplayTitle: t})
	}
	return &Static{items: items}
}

// SearchCandidates returns every item loosely similar to query, in insertion order.
func (s *Static) SearchCandidates(ctx context.Context, query, _ string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Candidate
	for _, c := range s.items {
		score := release.Similarity(query, c.DisplayTitle)
		if c.OriginalTitle != "" {
			score = max(score, release.Similarity(query, c.OriginalTitle))
		}
		if score >= staticMinScore {
			out = append(out, c)
		}
	}
	return out, nil
}
