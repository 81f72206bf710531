package release

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// romanNumeralRegex matches Roman numerals II-IX when preceded by a space.
// Standalone "I" and "X" are left alone ("I Robot", "SPY x FAMILY").
var romanNumeralRegex = regexp.MustCompile(`(?i) (ii|iii|iv|v|vi|vii|viii|ix)\b`)

var romanToArabic = map[string]string{
	"II": "2", "III": "3", "IV": "4", "V": "5",
	"VI": "6", "VII": "7", "VIII": "8", "IX": "9",
}

// qualityTagRegex matches release tokens that never belong to a series title.
var qualityTagRegex = regexp.MustCompile(`(?i)\b(?:WEB[ -]?DL|WEB[ -]?Rip|BD[ -]?Rip|BR[ -]?Rip|Blu[ -]?Ray|BD|HDTV|DVD[ -]?Rip|DVD|x264|x265|H[ ]?264|H[ ]?265|HEVC|AVC|AAC|FLAC|10[ -]?bit|8[ -]?bit|Hi10P|\d{3,4}[pi]|4K|UHD|HDR|REPACK|PROPER|Dual[ -]Audio|Multi[ -]?Subs?)\b`)

// trailingTagRegex matches words that are release tags at the end of a
// title but ordinary words inside one ("Nijigasaki TV Anime").
var trailingTagRegex = regexp.MustCompile(`(?i)(?:\s+(?:TV|WEB|Batch))+$`)

// romanTokenRegex matches an upper-case Roman numeral up to XXXIX.
var romanTokenRegex = regexp.MustCompile(`^X{0,3}(?:IX|IV|V?I{0,3})$`)

// keepUpper lists tokens that stay upper case in display titles.
var keepUpper = map[string]bool{"TV": true, "OVA": true, "ONA": true, "OAD": true}

var ordinalRegex = regexp.MustCompile(`(?i)\b\d+(?:st|nd|rd|th)(?:\s+season)?\b`)

// NormalizeRomanNumerals converts Roman numerals (II-IX) to Arabic numbers.
// Numerals at the start of the string are not converted.
func NormalizeRomanNumerals(s string) string {
	return romanNumeralRegex.ReplaceAllStringFunc(s, func(match string) string {
		roman := strings.TrimSpace(match)
		if arabic, ok := romanToArabic[strings.ToUpper(roman)]; ok {
			return " " + arabic
		}
		return match
	})
}

// CleanTitle folds a title into its comparison form: lowercase, no accents,
// no leading articles, no punctuation.
func CleanTitle(title string) string {
	s := strings.ToLower(title)

	// Must run before accent removal.
	s = NormalizeRomanNumerals(s)
	s = removeAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", " ")

	// "Re:Zero" and "Léon: The Professional" style subtitles each lose their article.
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	s = strings.TrimSpace(s)
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}

// DisplayTitle turns a parser title into the human readable series title
// used for grouping and naming. It returns "" when nothing alphanumeric
// survives.
func DisplayTitle(title string) string {
	s := reBrackets.ReplaceAllString(title, " ")
	s = reParens.ReplaceAllString(s, " ")
	s = sepsToSpaces(s)

	s = qualityTagRegex.ReplaceAllString(s, " ")
	s = ordinalRegex.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	if loc := trailingTagRegex.FindStringIndex(s); loc != nil && loc[0] > 0 {
		s = s[:loc[0]]
	}
	s = trimTitle(s)

	if !hasAlnum(s) {
		return ""
	}
	return titleCase(s)
}

// titleCase capitalizes each word, leaving upper-case Roman numerals and
// a few anime acronyms as written.
func titleCase(s string) string {
	caser := cases.Title(language.English)
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 1 && (romanTokenRegex.MatchString(w) || keepUpper[w]) {
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func hasAlnum(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// NormalizeResolution maps resolution spellings onto "NNNp".
func NormalizeResolution(res string) string {
	r := strings.ToLower(strings.TrimSpace(res))
	switch r {
	case "":
		return ""
	case "4k", "uhd", "2160i":
		return "2160p"
	}
	if strings.HasSuffix(r, "i") {
		r = strings.TrimSuffix(r, "i") + "p"
	}
	if !strings.HasSuffix(r, "p") {
		r += "p"
	}
	return r
}

// Normalizer turns filenames into Metadata through a pluggable Parser.
type Normalizer struct {
	parser Parser
}

// NewNormalizer returns a Normalizer backed by p, or by a RegexParser when p
// is nil. The parser is always wrapped in a SafeParser.
func NewNormalizer(p Parser) *Normalizer {
	if p == nil {
		p = NewRegexParser()
	}
	if _, ok := p.(SafeParser); !ok {
		p = SafeParser{Parser: p}
	}
	return &Normalizer{parser: p}
}

// Normalize parses a file name (a path is accepted; only the base is used).
// It never fails: a parser failure yields CleanTitle = stem and no
// season or episode.
func (n *Normalizer) Normalize(filename string) Metadata {
	base := filepath.Base(filename)
	if filename == "" {
		base = ""
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	meta := Metadata{RawTitle: stem}

	tok, err := n.parser.Parse(stem)
	if err != nil {
		meta.CleanTitle = stem
		meta.ParseError = err.Error()
		return meta
	}

	meta.CleanTitle = DisplayTitle(tok.Title)
	if meta.CleanTitle == "" && hasLetter(stem) {
		meta.CleanTitle = DisplayTitle(stem)
	}

	if len(tok.Seasons) > 0 {
		seasons := slices.Clone(tok.Seasons)
		slices.Sort(seasons)
		seasons = slices.Compact(seasons)
		meta.Season = intPtr(seasons[0])
		if len(seasons) > 1 {
			meta.SeasonRange = seasons
		}
	}
	if tok.Episode != nil {
		meta.Episode = intPtr(*tok.Episode)
		if meta.Season == nil {
			meta.Season = intPtr(1)
		}
	}

	meta.Year = tok.Year
	meta.Resolution = NormalizeResolution(tok.Resolution)
	meta.ReleaseGroup = strings.TrimSpace(tok.Group)
	meta.Source = tok.Source
	return meta
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
