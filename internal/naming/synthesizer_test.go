package naming

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/anisort/internal/grouping"
	"github.com/vmunix/anisort/internal/scanner"
	"github.com/vmunix/anisort/pkg/release"
)

func intPtr(v int) *int { return &v }

func member(path string, episode *int, resolution, group string) *grouping.Member {
	f := scanner.MediaFile{Path: path}
	switch filepath.Ext(path) {
	case ".ass", ".srt":
		f.IsSubtitle = true
	}
	return &grouping.Member{
		File: f,
		Meta: release.Metadata{Episode: episode, Resolution: resolution, ReleaseGroup: group},
	}
}

func TestSynthesize_Schemes(t *testing.T) {
	s, err := NewSynthesizer("")
	require.NoError(t, err)
	root := filepath.FromSlash("/library")
	g := &grouping.Group{Key: grouping.Key{Title: "My: Show", Season: 1}}

	tests := []struct {
		name   string
		scheme Scheme
		m      *grouping.Member
		want   string
	}{
		{"standard", SchemeStandard, member("/in/a.mkv", intPtr(2), "1080p", "Grp"), "My- Show/My- Show S01E02 - 1080p.mkv"},
		{"standard without resolution", SchemeStandard, member("/in/a.mkv", intPtr(2), "", "Grp"), "My- Show/My- Show S01E02.mkv"},
		{"minimal", SchemeMinimal, member("/in/a.mkv", intPtr(2), "720p", ""), "My- Show/My- Show S01E02 720p.mkv"},
		{"detailed", SchemeDetailed, member("/in/a.mkv", intPtr(2), "1080p", "SubsPlease"), "My- Show/My- Show S01E02 1080p [SubsPlease].mkv"},
		{"detailed without group", SchemeDetailed, member("/in/a.mkv", intPtr(2), "1080p", ""), "My- Show/My- Show S01E02 1080p.mkv"},
		{"subtitle keeps language", SchemeStandard, member("/in/a.en.ass", intPtr(12), "", ""), "My- Show/My- Show S01E12.en.ass"},
		{"three digit episode", SchemeMinimal, member("/in/a.mkv", intPtr(105), "", ""), "My- Show/My- Show S01E105.mkv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Synthesize(g, tt.m, root, tt.scheme)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
		})
	}
}

func TestSynthesize_SeasonDirectory(t *testing.T) {
	s, err := NewSynthesizer("")
	require.NoError(t, err)
	g := &grouping.Group{Key: grouping.Key{Title: "Attack on Titan", Season: 3}}

	got, err := s.Synthesize(g, member("/in/x.mkv", intPtr(1), "1080p", ""), "/library", SchemeStandard)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/library", "Attack on Titan Season 3", "Attack on Titan S03E01 - 1080p.mkv"), got)
}

func TestSynthesize_Errors(t *testing.T) {
	s, err := NewSynthesizer("")
	require.NoError(t, err)
	g := &grouping.Group{Key: grouping.Key{Title: "Show", Season: 1}}

	_, err = s.Synthesize(g, member("/in/x.mkv", nil, "", ""), "/library", SchemeStandard)
	assert.ErrorIs(t, err, ErrNoEpisode)

	_, err = s.Synthesize(g, member("/in/x.mkv", intPtr(1), "", ""), "/library", Scheme("fancy"))
	assert.ErrorIs(t, err, ErrUnknownScheme)

	// Hostile titles are flattened into a single component.
	g = &grouping.Group{Key: grouping.Key{Title: "../../etc", Season: 1}}
	got, err := s.Synthesize(g, member("/in/x.mkv", intPtr(1), "", ""), "/library", SchemeStandard)
	require.NoError(t, err)
	assert.NoError(t, ValidatePath(got, "/library"))
}

func TestNewSynthesizer_CustomTemplate(t *testing.T) {
	s, err := NewSynthesizer("{title} - {season:02}x{episode:03}< ({year})>")
	require.NoError(t, err)
	g := &grouping.Group{Key: grouping.Key{Title: "Show", Season: 2}}
	m := member("/in/x.mkv", intPtr(7), "", "")

	got, err := s.Synthesize(g, m, "/library", SchemeStandard)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/library", "Show Season 2", "Show - 02x007.mkv"), got)

	_, err = NewSynthesizer("{title} {bogus}")
	assert.Error(t, err)
	_, err = NewSynthesizer("{title} S{season:02}")
	assert.Error(t, err)
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("Detailed")
	require.NoError(t, err)
	assert.Equal(t, SchemeDetailed, s)

	s, err = ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemeStandard, s)

	_, err = ParseScheme("nope")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}
