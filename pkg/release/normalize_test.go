package release

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The Matrix", "matrix"},
		{"A Silent Voice", "silent voice"},
		{"Fast & Furious", "fast and furious"},
		{"Léon: The Professional", "leon professional"},
		{"Re:Zero - Starting Life", "re zero starting life"},
		{"Rocky III", "rocky 3"},
		{"  Extra   Spaces  ", "extra spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTitle(tt.input))
		})
	}
}

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"attack on titan", "Attack On Titan"},
		{"Tokyo Ghoul TV", "Tokyo Ghoul"},
		{"Show 1080p WEB-DL", "Show"},
		{"Show 3rd Season", "Show"},
		{"[Group] Show", "Show"},
		{"Show_Name", "Show Name"},
		{"Hibike Euphonium Opus Ensemble", "Hibike Euphonium Opus Ensemble"},
		{"Love Live Nijigasaki TV Anime Special", "Love Live Nijigasaki TV Anime Special"},
		{"Opus Colors", "Opus Colors"},
		{"Show WEB x264", "Show"},
		{"Show Batch", "Show"},
		{"Sword Art Online II", "Sword Art Online II"},
		{"Mobile Suit Gundam XX", "Mobile Suit Gundam XX"},
		{"Show OVA", "Show OVA"},
		{"1080p", ""},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayTitle(tt.input))
		})
	}
}

func TestNormalizeResolution(t *testing.T) {
	assert.Equal(t, "1080p", NormalizeResolution("1080P"))
	assert.Equal(t, "2160p", NormalizeResolution("4K"))
	assert.Equal(t, "2160p", NormalizeResolution("UHD"))
	assert.Equal(t, "1080p", NormalizeResolution("1080i"))
	assert.Equal(t, "720p", NormalizeResolution("720"))
	assert.Empty(t, NormalizeResolution(""))
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		filename   string
		title      string
		season     *int
		episode    *int
		resolution string
		group      string
	}{
		{"[SubsPlease] Attack on Titan - S01E05 [1080p].mkv", "Attack On Titan", intPtr(1), intPtr(5), "1080p", "SubsPlease"},
		{"[Group] Show 2nd Season - 03 [720p].mkv", "Show", intPtr(2), intPtr(3), "720p", "Group"},
		{"[Group] Show - 07.mkv", "Show", intPtr(1), intPtr(7), "", "Group"},
		{"Show.Name.S02E10.1080p.WEB-DL.x264-GROUP.mkv", "Show Name", intPtr(2), intPtr(10), "1080p", "GROUP"},
		{"/library/incoming/Show 1x05.mkv", "Show", intPtr(1), intPtr(5), "", ""},
		{"Show Season 2 Episode 4.mp4", "Show", intPtr(2), intPtr(4), "", ""},
		{"Show EP05.mkv", "Show", intPtr(1), intPtr(5), "", ""},
		{"Show S01E01 4K.mkv", "Show", intPtr(1), intPtr(1), "2160p", ""},
		{"Show Movie.mkv", "Show Movie", nil, nil, "", ""},
		{"[Grp] Hibike Euphonium Opus Ensemble - 01.mkv", "Hibike Euphonium Opus Ensemble", intPtr(1), intPtr(1), "", "Grp"},
		{"[Grp] Love Live Nijigasaki TV Anime Special - 03.mkv", "Love Live Nijigasaki TV Anime Special", intPtr(1), intPtr(3), "", "Grp"},
		{"[Grp] Opus Colors - 01.mkv", "Opus Colors", intPtr(1), intPtr(1), "", "Grp"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			meta := n.Normalize(tt.filename)
			assert.Equal(t, tt.title, meta.CleanTitle)
			assert.Equal(t, tt.season, meta.Season)
			assert.Equal(t, tt.episode, meta.Episode)
			assert.Equal(t, tt.resolution, meta.Resolution)
			assert.Equal(t, tt.group, meta.ReleaseGroup)
			assert.Empty(t, meta.ParseError)
		})
	}
}

func TestNormalizeYear(t *testing.T) {
	meta := NewNormalizer(nil).Normalize("Show (2019) - 01.mkv")
	assert.Equal(t, "Show", meta.CleanTitle)
	assert.Equal(t, 2019, meta.Year)
	assert.Equal(t, intPtr(1), meta.Episode)
}

func TestNormalizeSeasonRange(t *testing.T) {
	n := NewNormalizer(nil)

	meta := n.Normalize("[Group] Show S1-S4 [BD 1080p].mkv")
	assert.Equal(t, "Show", meta.CleanTitle)
	require.NotNil(t, meta.Season)
	assert.Equal(t, 1, *meta.Season)
	assert.Equal(t, []int{1, 2, 3, 4}, meta.SeasonRange)
	assert.Nil(t, meta.Episode)
	assert.Equal(t, "S1-S4", meta.SeasonLabel())

	meta = n.Normalize("S1-S4")
	require.NotNil(t, meta.Season)
	assert.Equal(t, 1, *meta.Season)
}

func TestNormalizeNeverFails(t *testing.T) {
	n := NewNormalizer(nil)

	for _, name := range []string{"", ".", "!!!???.mkv", "[]", "()()", "-", "S1-S4", "  "} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				meta := n.Normalize(name)
				assert.Empty(t, meta.ParseError)
			})
		})
	}

	assert.Empty(t, n.Normalize("").CleanTitle)
	assert.Empty(t, n.Normalize("!!!???.mkv").CleanTitle)
}

func TestNormalizeParserFailure(t *testing.T) {
	t.Run("panic", func(t *testing.T) {
		n := NewNormalizer(ParserFunc(func(string) (RawTokens, error) {
			panic("boom")
		}))
		meta := n.Normalize("Some Show - 01.mkv")
		assert.Equal(t, "Some Show - 01", meta.CleanTitle)
		assert.Nil(t, meta.Season)
		assert.Nil(t, meta.Episode)
		assert.Contains(t, meta.ParseError, "parser panicked")
	})

	t.Run("error", func(t *testing.T) {
		n := NewNormalizer(ParserFunc(func(string) (RawTokens, error) {
			return RawTokens{Seasons: []int{3}}, errors.New("bad input")
		}))
		meta := n.Normalize("Other.mkv")
		assert.Equal(t, "Other", meta.CleanTitle)
		assert.Nil(t, meta.Season)
		assert.Contains(t, meta.ParseError, "bad input")
	})
}

func TestSafeParser(t *testing.T) {
	p := SafeParser{Parser: ParserFunc(func(string) (RawTokens, error) {
		panic("boom")
	})}
	tok, err := p.Parse("x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParserPanic)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "x", pe.Name)
	assert.Empty(t, tok.Title)
}

func TestRLSParserSeasonRange(t *testing.T) {
	tok, err := NewRLSParser().Parse("Show.S01-S04.1080p.BluRay.x264-GRP")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, tok.Seasons)

	meta := NewNormalizer(NewRLSParser()).Normalize("Show.S01-S04.1080p.BluRay.x264-GRP.mkv")
	require.NotNil(t, meta.Season)
	assert.Equal(t, 1, *meta.Season)
	assert.Equal(t, []int{1, 2, 3, 4}, meta.SeasonRange)
}
