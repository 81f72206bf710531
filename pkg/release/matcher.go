package release

import (
	"math"
	"regexp"

	"github.com/hbollon/go-edlib"
)

// MatchThreshold is the minimum score (0-100) for a title to count as a match.
const MatchThreshold = 80

// numberRegex extracts sequence numbers from titles (e.g., "2", "3")
var numberRegex = regexp.MustCompile(`\b(\d+)\b`)

// MatchConfidence represents the confidence level of a title match.
type MatchConfidence int

const (
	ConfidenceNone   MatchConfidence = iota // Score < 80
	ConfidenceLow                           // Score >= 80
	ConfidenceMedium                        // Score >= 90
	ConfidenceHigh                          // Score >= 97
)

func (c MatchConfidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// ConfidenceFor maps a 0-100 score onto a confidence level.
func ConfidenceFor(score int) MatchConfidence {
	switch {
	case score >= 97:
		return ConfidenceHigh
	case score >= 90:
		return ConfidenceMedium
	case score >= MatchThreshold:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// MatchResult represents the result of a fuzzy title match.
type MatchResult struct {
	Index      int    // Position of the best candidate, -1 when there were none
	Title      string // The best candidate title, empty when below threshold
	Score      int    // Levenshtein similarity of the best candidate (0-100)
	Matched    bool
	Confidence MatchConfidence
}

// MatchTitle finds the best match for a parsed title against candidate titles.
// The earliest candidate wins ties. Score is reported even when the best
// candidate falls below MatchThreshold.
func MatchTitle(parsed string, candidates []string) MatchResult {
	best := MatchResult{Index: -1}
	if len(candidates) == 0 {
		return best
	}

	normalizedParsed := CleanTitle(parsed)
	parsedNumbers := extractNumbers(normalizedParsed)

	for i, candidate := range candidates {
		score := similarity(normalizedParsed, CleanTitle(candidate), parsedNumbers)
		if best.Index < 0 || score > best.Score {
			best.Index = i
			best.Title = candidate
			best.Score = score
		}
	}

	best.Confidence = ConfidenceFor(best.Score)
	best.Matched = best.Score >= MatchThreshold
	if !best.Matched {
		best.Title = ""
	}
	return best
}

// Similarity scores two titles 0-100 after CleanTitle folding.
func Similarity(a, b string) int {
	ca := CleanTitle(a)
	return similarity(ca, CleanTitle(b), extractNumbers(ca))
}

func similarity(parsed, candidate string, parsedNumbers []string) int {
	if parsed == "" || candidate == "" {
		return 0
	}
	raw, err := edlib.StringsSimilarity(parsed, candidate, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	score := adjustScoreForNumbers(float64(raw), parsedNumbers, extractNumbers(candidate))
	return int(math.Round(score * 100))
}

// extractNumbers returns all numeric sequences from a normalized title.
func extractNumbers(title string) []string {
	return numberRegex.FindAllString(title, -1)
}

// adjustScoreForNumbers modifies the similarity score based on sequence number matching.
// When the parsed title has numbers:
// - Matching numbers get a bonus
// - Mismatched numbers get a penalty
// - Missing numbers in candidate also get a penalty
func adjustScoreForNumbers(score float64, parsedNums, candidateNums []string) float64 {
	if len(parsedNums) == 0 {
		return score
	}
	if len(candidateNums) == 0 {
		return score * 0.85
	}

	candidateSet := make(map[string]bool, len(candidateNums))
	for _, n := range candidateNums {
		candidateSet[n] = true
	}
	for _, n := range parsedNums {
		if candidateSet[n] {
			return min(score*1.05, 1.0)
		}
	}
	return score * 0.90
}
