package release

import (
	"strings"

	"github.com/moistari/rls"
)

// RLSParser adapts github.com/moistari/rls to the Parser interface.
// rls only reports a single series number, so season ranges are recovered
// from the name separately.
type RLSParser struct{}

// NewRLSParser returns a parser backed by rls.
func NewRLSParser() *RLSParser {
	return &RLSParser{}
}

// Parse extracts raw tokens using rls.
func (p *RLSParser) Parse(name string) (RawTokens, error) {
	r := rls.ParseString(name)

	tok := RawTokens{
		Title:      strings.TrimSpace(r.Title),
		Year:       r.Year,
		Resolution: r.Resolution,
		Group:      r.Group,
		Source:     r.Source,
	}
	if seasons := SeasonRange(name); len(seasons) > 1 {
		tok.Seasons = seasons
	} else if r.Series > 0 {
		tok.Seasons = []int{r.Series}
	}
	if r.Episode > 0 {
		tok.Episode = intPtr(r.Episode)
	}
	// rls does not know fansub brackets; fall back to the rule parser for the group.
	if tok.Group == "" {
		if m := reLeadingGroup.FindStringSubmatch(name); m != nil {
			tok.Group = strings.TrimSpace(m[1])
		}
	}
	return tok, nil
}
