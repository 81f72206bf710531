// Package release extracts series metadata from loosely formatted media filenames
// and fuzzy-matches the extracted titles against catalog titles.
package release

import (
	"slices"
	"strconv"
)

// RawTokens is the unprocessed output of a Parser.
type RawTokens struct {
	Title      string
	Seasons    []int // Several values when the name carries a range such as "S1-S4"
	Episode    *int
	Year       int
	Resolution string
	Group      string
	Source     string
}

// Parser guesses structured tokens from a filename stem.
// Implementations must not depend on the filesystem.
type Parser interface {
	Parse(name string) (RawTokens, error)
}

// ParserFunc adapts a plain function to the Parser interface.
type ParserFunc func(name string) (RawTokens, error)

// Parse calls f(name).
func (f ParserFunc) Parse(name string) (RawTokens, error) { return f(name) }

// Metadata is the normalized result for a single file.
type Metadata struct {
	RawTitle     string `json:"raw_title"`
	CleanTitle   string `json:"clean_title"`
	Season       *int   `json:"season,omitempty"`
	Episode      *int   `json:"episode,omitempty"`
	SeasonRange  []int  `json:"season_range,omitempty"` // display only
	Year         int    `json:"year,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
	ReleaseGroup string `json:"release_group,omitempty"`
	Source       string `json:"source,omitempty"`
	ParseError   string `json:"parse_error,omitempty"`
}

// SeasonOrDefault returns the season, or 1 when none was detected.
func (m Metadata) SeasonOrDefault() int {
	if m.Season == nil {
		return 1
	}
	return *m.Season
}

// HasEpisode reports whether an episode number was detected.
func (m Metadata) HasEpisode() bool {
	return m.Episode != nil
}

// SeasonLabel formats the season range for display, e.g. "S1-S4".
func (m Metadata) SeasonLabel() string {
	switch {
	case len(m.SeasonRange) > 1:
		return "S" + strconv.Itoa(slices.Min(m.SeasonRange)) + "-S" + strconv.Itoa(slices.Max(m.SeasonRange))
	case m.Season != nil:
		return "S" + strconv.Itoa(*m.Season)
	default:
		return ""
	}
}

func intPtr(v int) *int {
	return &v
}
