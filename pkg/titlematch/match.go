package titlematch

import (
	"regexp"
	"slices"

	"github.com/hbollon/go-edlib"
)

var digits = regexp.MustCompile(`\b\d+\b`)

// Confidence buckets a similarity score.
type Confidence int

const (
	ConfidenceNone   Confidence = iota // < 0.70
	ConfidenceLow                      // >= 0.70
	ConfidenceMedium                   // >= 0.85
	ConfidenceHigh                     // >= 0.95
)

func (c Confidence) String() string {
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

// ConfidenceOf maps a score to its bucket.
func ConfidenceOf(score float64) Confidence {
	switch {
	case score >= 0.95:
		return ConfidenceHigh
	case score >= 0.85:
		return ConfidenceMedium
	case score >= 0.70:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// Match is one scored candidate.
type Match struct {
	Index int // position in the candidate slice
	Title string
	Score float64
}

// Score returns the Jaro-Winkler similarity of the normalized titles,
// adjusted for sequence numbers: "Rocky 2" should not match "Rocky 3".
func Score(query, candidate string) float64 {
	q, c := Normalize(query), Normalize(candidate)
	if q == c {
		return 1
	}
	score := float64(edlib.JaroWinklerSimilarity(q, c))

	want := digits.FindAllString(q, -1)
	if len(want) == 0 {
		return score
	}
	have := digits.FindAllString(c, -1)
	if len(have) == 0 {
		return score * 0.85
	}
	for _, n := range want {
		if slices.Contains(have, n) {
			return min(score*1.05, 1.0)
		}
	}
	return score * 0.90
}

// Rank scores every candidate against query, best first. Equal scores keep
// their input order.
func Rank(query string, candidates []string) []Match {
	matches := make([]Match, len(candidates))
	for i, c := range candidates {
		matches[i] = Match{Index: i, Title: c, Score: Score(query, c)}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return matches
}

// Best returns the top candidate if it reaches at least min confidence.
func Best(query string, candidates []string, atLeast Confidence) (Match, bool) {
	ranked := Rank(query, candidates)
	if len(ranked) == 0 || ConfidenceOf(ranked[0].Score) < atLeast {
		return Match{Index: -1}, false
	}
	return ranked[0], true
}
