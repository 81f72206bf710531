// Package naming builds destination paths for grouped files and detects
// destination collisions.
package naming

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmunix/anisort/internal/grouping"
)

// Scheme selects a filename layout.
type Scheme string

const (
	SchemeStandard Scheme = "standard" // Title S01E01 - 1080p.mkv
	SchemeMinimal  Scheme = "minimal"  // Title S01E01 1080p.mkv
	SchemeDetailed Scheme = "detailed" // Title S01E01 1080p [Group].mkv
)

// Default templates. <...> sections vanish when their value is missing.
var defaultTemplates = map[Scheme]string{
	SchemeStandard: "{title} S{season:02}E{episode:02}< - {resolution}>",
	SchemeMinimal:  "{title} S{season:02}E{episode:02}< {resolution}>",
	SchemeDetailed: "{title} S{season:02}E{episode:02}< {resolution}>< [{group}]>",
}

// ParseScheme validates a scheme name.
func ParseScheme(s string) (Scheme, error) {
	scheme := Scheme(strings.ToLower(strings.TrimSpace(s)))
	if scheme == "" {
		return SchemeStandard, nil
	}
	if _, ok := defaultTemplates[scheme]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
	return scheme, nil
}

// SeasonDir names the directory holding one season.
func SeasonDir(title string, season int) string {
	if season <= 1 {
		return SanitizeName(title)
	}
	return SanitizeName(title + " Season " + strconv.Itoa(season))
}

// Synthesizer renders destination paths.
type Synthesizer struct {
	templates map[Scheme]string
}

// NewSynthesizer returns a Synthesizer with the built-in schemes. A
// non-empty custom template replaces the standard scheme.
func NewSynthesizer(custom string) (*Synthesizer, error) {
	templates := make(map[Scheme]string, len(defaultTemplates))
	for k, v := range defaultTemplates {
		templates[k] = v
	}
	if custom != "" {
		if err := validateTemplate(custom); err != nil {
			return nil, err
		}
		templates[SchemeStandard] = custom
	}
	return &Synthesizer{templates: templates}, nil
}

// Synthesize returns root/<season dir>/<file name> for a group member.
// Synthesis is pure: it neither touches the filesystem nor resolves
// collisions.
func (s *Synthesizer) Synthesize(g *grouping.Group, m *grouping.Member, root string, scheme Scheme) (string, error) {
	tmpl, ok := s.templates[scheme]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	if m.Meta.Episode == nil {
		return "", fmt.Errorf("%s: %w", m.File.Path, ErrNoEpisode)
	}

	vars := map[string]any{
		"title":      g.Key.Title,
		"season":     g.Key.Season,
		"episode":    *m.Meta.Episode,
		"resolution": m.Meta.Resolution,
		"group":      m.Meta.ReleaseGroup,
		"source":     m.Meta.Source,
		"year":       m.Meta.Year,
	}
	stem := applyTemplate(tmpl, vars)

	path := filepath.Join(root, SeasonDir(g.Key.Title, g.Key.Season), SanitizeFilename(stem, m.File.FullExt()))
	if err := ValidatePath(path, root); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return path, nil
}
