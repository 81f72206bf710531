package release

import (
	"regexp"
	"strconv"
	"strings"
)

// parseRule pairs a pattern with an extraction function. Rules are evaluated
// in order; the first match wins and the title is everything before it.
type parseRule struct {
	name    string
	pattern *regexp.Regexp
	extract func(m []string) (seasons []int, episode *int)
}

var (
	reLeadingGroup  = regexp.MustCompile(`^\s*\[([^\]]+)\]`)
	reTrailingGroup = regexp.MustCompile(`-([A-Za-z0-9]+)$`)
	reBrackets      = regexp.MustCompile(`\[[^\]]*\]|\{[^}]*\}`)
	reParens        = regexp.MustCompile(`\(([^)]*)\)`)
	reResolution    = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(\d{3,4})([pi])(?:[^a-z0-9]|$)`)
	reUHD           = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(4k|uhd)(?:[^a-z0-9]|$)`)
	reYearOnly      = regexp.MustCompile(`^\s*((?:19|20)\d{2})\s*$`)
	reTrailingYear  = regexp.MustCompile(`\s((?:19|20)\d{2})$`)
	reBareNumber    = regexp.MustCompile(`^(.+?)\s(\d{1,3})(?:v\d+)?$`)
	reWhitespace    = regexp.MustCompile(`\s+`)
	reNotGroup      = regexp.MustCompile(`(?i)^(?:\d+|s\d{1,2}|e\d{1,4}|\d{3,4}[pi]|dl|rip)$`)
)

// Season hints left at the end of a title once the episode token is cut off,
// e.g. "Show S2 - 05" or "Show 2nd Season - 05".
var (
	reHintShort   = regexp.MustCompile(`(?i)(?:^|\s)S(\d{1,2})$`)
	reHintWord    = regexp.MustCompile(`(?i)(?:^|\s)Season\s?(\d{1,2})$`)
	reHintOrdinal = regexp.MustCompile(`(?i)(?:^|\s)(\d{1,2})(?:st|nd|rd|th)\s+Season$`)
)

var sourcePatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)\bweb[ ._-]?dl\b`), "WEB-DL"},
	{regexp.MustCompile(`(?i)\bweb[ ._-]?rip\b`), "WEBRip"},
	{regexp.MustCompile(`(?i)\b(?:blu[ ._-]?ray|bdrip|brrip|bd)\b`), "BluRay"},
	{regexp.MustCompile(`(?i)\bhdtv\b`), "HDTV"},
	{regexp.MustCompile(`(?i)\bdvd(?:rip)?\b`), "DVD"},
	{regexp.MustCompile(`(?i)\bweb\b`), "WEB"},
}

var (
	reSeasonRange     = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])S(\d{1,2})\s?[-~]\s?S(\d{1,2})(?:[^a-z0-9]|$)`)
	reSeasonWordRange = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])Seasons?\s?(\d{1,2})[-~](\d{1,2})(?:[^0-9]|$)`)
)

var episodeRules = []parseRule{
	{"season-range", reSeasonRange, extractRange},
	{"season-word-range", reSeasonWordRange, extractRange},
	{"SxxExx", regexp.MustCompile(`(?i)(?:^|[^a-z0-9])S(\d{1,2})\s?E(\d{1,4})`), extractSeasonEpisode},
	{"1x01", regexp.MustCompile(`(?i)(?:^|[^0-9a-z])(\d{1,2})x(\d{2,3})(?:[^0-9]|$)`), extractSeasonEpisode},
	{"season-episode-words", regexp.MustCompile(`(?i)(?:^|[^a-z0-9])Season\s?(\d{1,2})\s?(?:-\s?)?(?:Episode|Ep|E)\s?(\d{1,4})(?:[^0-9]|$)`), extractSeasonEpisode},
	{"episode-keyword", regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:Episode|Ep|E)\s?(\d{1,4})(?:v\d+)?(?:[^0-9a-z]|$)`), extractEpisode},
	{"anime-dash", regexp.MustCompile(`\s-\s?(\d{1,4})(?:v\d+)?(?:\s|$)`), extractEpisode},
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func extractRange(m []string) ([]int, *int) {
	return expandRange(atoi(m[1]), atoi(m[2])), nil
}

func extractSeasonEpisode(m []string) ([]int, *int) {
	return []int{atoi(m[1])}, intPtr(atoi(m[2]))
}

func extractEpisode(m []string) ([]int, *int) {
	return nil, intPtr(atoi(m[1]))
}

func expandRange(from, to int) []int {
	if from > to {
		from, to = to, from
	}
	seasons := make([]int, 0, to-from+1)
	for s := from; s <= to; s++ {
		seasons = append(seasons, s)
	}
	return seasons
}

// RegexParser is the built-in rule-table parser. It understands scene-style
// dotted names as well as fansub "[Group] Title - 05 [1080p]" names.
type RegexParser struct{}

// NewRegexParser returns the default parser.
func NewRegexParser() *RegexParser {
	return &RegexParser{}
}

// Parse extracts raw tokens from a filename stem.
func (p *RegexParser) Parse(name string) (RawTokens, error) {
	var tok RawTokens
	s := strings.TrimSpace(name)

	hadGroup := false
	if m := reLeadingGroup.FindStringSubmatch(s); m != nil {
		tok.Group = strings.TrimSpace(m[1])
		s = s[len(m[0]):]
		hadGroup = true
	}
	tok.Resolution = findResolution(name)
	tok.Source = findSource(name)

	if tok.Group == "" && !strings.Contains(s, " ") {
		if m := reTrailingGroup.FindStringSubmatchIndex(s); m != nil {
			g := s[m[2]:m[3]]
			if !reNotGroup.MatchString(g) {
				tok.Group = g
				s = s[:m[0]]
			}
		}
	}

	s = reParens.ReplaceAllStringFunc(s, func(match string) string {
		if ym := reYearOnly.FindStringSubmatch(match[1 : len(match)-1]); ym != nil {
			tok.Year = atoi(ym[1])
		}
		return " "
	})
	s = reBrackets.ReplaceAllString(s, " ")
	s = sepsToSpaces(s)
	s = strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))

	title := s
	matched := false
	for _, rule := range episodeRules {
		loc := rule.pattern.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		tok.Seasons, tok.Episode = rule.extract(submatches(s, loc))
		title = s[:loc[0]]
		matched = true
		break
	}

	if !matched && hadGroup {
		if m := reBareNumber.FindStringSubmatch(s); m != nil {
			title = m[1]
			tok.Episode = intPtr(atoi(m[2]))
		}
	}

	title = trimTitle(title)
	if len(tok.Seasons) == 0 {
		var hint int
		title, hint = cutSeasonHint(title)
		if hint > 0 {
			tok.Seasons = []int{hint}
		}
	}
	if m := reTrailingYear.FindStringSubmatchIndex(title); m != nil && m[0] > 0 {
		tok.Year = atoi(title[m[2]:m[3]])
		title = trimTitle(title[:m[0]])
	}
	tok.Title = title
	return tok, nil
}

// SeasonRange returns every season named by a range token ("S1-S4",
// "Seasons 1-3") in name, or nil.
func SeasonRange(name string) []int {
	s := sepsToSpaces(name)
	for _, re := range []*regexp.Regexp{reSeasonRange, reSeasonWordRange} {
		if m := re.FindStringSubmatch(s); m != nil {
			return expandRange(atoi(m[1]), atoi(m[2]))
		}
	}
	return nil
}

func cutSeasonHint(title string) (string, int) {
	for _, re := range []*regexp.Regexp{reHintOrdinal, reHintWord, reHintShort} {
		if loc := re.FindStringSubmatchIndex(title); loc != nil {
			season := atoi(title[loc[2]:loc[3]])
			rest := trimTitle(title[:loc[0]])
			if rest == "" {
				return title, 0
			}
			return rest, season
		}
	}
	return title, 0
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

func findResolution(name string) string {
	if m := reResolution.FindStringSubmatch(name); m != nil {
		return m[1] + strings.ToLower(m[2])
	}
	if reUHD.MatchString(name) {
		return "2160p"
	}
	return ""
}

func findSource(name string) string {
	for _, sp := range sourcePatterns {
		if sp.re.MatchString(name) {
			return sp.name
		}
	}
	return ""
}

var sepReplacer = strings.NewReplacer(".", " ", "_", " ")

func sepsToSpaces(s string) string { return sepReplacer.Replace(s) }

func trimTitle(s string) string {
	return strings.Trim(strings.TrimSpace(s), " -_~,;")
}
