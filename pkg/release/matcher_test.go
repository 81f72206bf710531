package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchConfidenceString(t *testing.T) {
	tests := []struct {
		conf     MatchConfidence
		expected string
	}{
		{ConfidenceHigh, "high"},
		{ConfidenceMedium, "medium"},
		{ConfidenceLow, "low"},
		{ConfidenceNone, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.conf.String())
		})
	}
}

func TestConfidenceFor(t *testing.T) {
	assert.Equal(t, ConfidenceNone, ConfidenceFor(79))
	assert.Equal(t, ConfidenceLow, ConfidenceFor(80))
	assert.Equal(t, ConfidenceMedium, ConfidenceFor(93))
	assert.Equal(t, ConfidenceHigh, ConfidenceFor(100))
}

func TestMatchTitle(t *testing.T) {
	t.Run("misspelling above threshold", func(t *testing.T) {
		result := MatchTitle("Atack on Titan", []string{"Attack on Titan"})
		assert.True(t, result.Matched)
		assert.Equal(t, 0, result.Index)
		assert.Equal(t, "Attack on Titan", result.Title)
		assert.Equal(t, 93, result.Score)
	})

	t.Run("unknown title keeps score but no title", func(t *testing.T) {
		result := MatchTitle("Completely Unknown Show", []string{"Attack on Titan", "Naruto"})
		assert.False(t, result.Matched)
		assert.Empty(t, result.Title)
		assert.Less(t, result.Score, MatchThreshold)
		assert.Equal(t, ConfidenceNone, result.Confidence)
	})

	t.Run("first candidate wins ties", func(t *testing.T) {
		result := MatchTitle("Naruto", []string{"Naruto", "NARUTO"})
		assert.Equal(t, 0, result.Index)
		assert.Equal(t, 100, result.Score)
	})

	t.Run("no candidates", func(t *testing.T) {
		result := MatchTitle("Naruto", nil)
		assert.Equal(t, -1, result.Index)
		assert.False(t, result.Matched)
	})

	t.Run("sequence number prefers numbered sequel", func(t *testing.T) {
		result := MatchTitle("Rocky 3", []string{"Rocky", "Rocky III"})
		assert.Equal(t, 1, result.Index)
		assert.Equal(t, 100, result.Score)
	})
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, Similarity("The Matrix", "matrix"))
	assert.Equal(t, 0, Similarity("", "Naruto"))
	assert.Equal(t, 93, Similarity("Atack on Titan", "Attack on Titan"))
}

func TestMatchTitleFromFilenames(t *testing.T) {
	library := []string{
		"Attack on Titan",
		"Mob Psycho 100",
		"Spy x Family",
		"Jujutsu Kaisen",
	}

	tests := []struct {
		filename string
		want     string
		matched  bool
	}{
		{"[SubsPlease] Jujutsu Kaisen - 05 (1080p) [ABCD1234].mkv", "Jujutsu Kaisen", true},
		{"Mob.Psycho.100.S02E03.1080p.WEB-DL-GRP.mkv", "Mob Psycho 100", true},
		{"[Erai-raws] Spy x Family - 03 [1080p].mkv", "Spy x Family", true},
		{"[Group] Atack on Titan - 12.mkv", "Attack on Titan", true},
		{"[Group] Some Obscure Show - 01.mkv", "", false},
	}

	n := NewNormalizer(nil)
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			meta := n.Normalize(tt.filename)
			result := MatchTitle(meta.CleanTitle, library)
			assert.Equal(t, tt.matched, result.Matched)
			assert.Equal(t, tt.want, result.Title)
		})
	}
}
