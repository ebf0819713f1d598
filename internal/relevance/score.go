package relevance

import (
	"strconv"

	"almanac/internal/core"
)

// ScoreInput is the subset of item fields the scorer looks at. Scoring
// always runs over the original excerpt text, never the rewritten
// title's display form alone.
type ScoreInput struct {
	Title         string
	Summary       string
	Year          string
	Category      core.Category
	CandidateRank int // 0 when the item is not candidate-backed
}

// Score computes the 0-100 ranking score for an item. The adjustments
// are order-independent: they are summed and clamped once at the end.
func (c *Classifier) Score(in ScoreInput) int {
	s := 45
	blob := in.Title + " " + in.Summary

	s += c.SignalScore(blob)
	if c.IsGlobalSignal(blob) {
		s += 6
	}
	if len(in.Summary) > 180 {
		s += 6
	}
	if y, err := strconv.Atoi(in.Year); err == nil && y != 0 && y < 1900 {
		s += 3
	}
	if in.CandidateRank > 0 {
		if boost := 10 - (in.CandidateRank-1)/3; boost > 0 {
			s += boost
		}
	}
	if c.IsNewsworthy(blob) {
		s += 10
	}
	if in.Category.Biographical() {
		s -= 3
	}
	if IsBattleText(blob) && !c.IsRegionallyRelevant(blob) {
		s -= 10
	}

	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
