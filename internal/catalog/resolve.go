package catalog

import "github.com/vmunix/anisort/pkg/release"

// Match binds a clean title to the best catalog candidate.
type Match struct {
	Candidate  *Candidate `json:"candidate,omitempty"`
	Confidence int        `json:"confidence"` // 0-100, score of the best candidate
	Matched    bool       `json:"matched"`
	Title      string     `json:"title"` // Group display name
}

// Resolve scores cleanTitle against each candidate's display title and,
// as a fallback, its original title. The highest score wins, the earliest
// candidate on ties. Below release.MatchThreshold the match is rejected and
// cleanTitle is kept as the display name.
func Resolve(cleanTitle string, candidates []Candidate) Match {
	m := Match{Title: cleanTitle}

	titles := make([]string, 0, 2*len(candidates))
	owners := make([]int, 0, 2*len(candidates))
	for i, c := range candidates {
		titles = append(titles, c.DisplayTitle)
		owners = append(owners, i)
		if c.OriginalTitle != "" && c.OriginalTitle != c.DisplayTitle {
			titles = append(titles, c.OriginalTitle)
			owners = append(owners, i)
		}
	}

	result := release.MatchTitle(cleanTitle, titles)
	if result.Index < 0 {
		return m
	}
	m.Confidence = result.Score
	if result.Matched {
		c := candidates[owners[result.Index]]
		m.Candidate = &c
		m.Matched = true
		m.Title = c.DisplayTitle
	}
	return m
}
