package pipeline

import (
	"math"
	"sort"

	"almanac/internal/core"
	"almanac/internal/relevance"
)

// SelectionPolicy carries the quota knobs: the regional share band and
// the hard category caps.
type SelectionPolicy struct {
	TargetRatio   float64 // target share of regionally relevant items
	BandHighRatio float64 // upper bound of the acceptable share band
	BirthDeathMax int     // cap on combined birth+death items
	BattleMax     int     // cap on battle-pattern items
}

// Select picks up to total items from the pool, honoring the regional
// share band and the category caps, always preferring higher scores.
// It is a pure function: the input pool is never mutated, and identical
// inputs produce identical output. Membership tests key on the
// (title, year) identity tuple rather than slice positions.
func Select(pool []core.CuratedItem, total int, policy SelectionPolicy) []core.CuratedItem {
	if total <= 0 || len(pool) == 0 {
		return []core.CuratedItem{}
	}

	relevant := filterItems(pool, func(e core.CuratedItem) bool { return e.IsRegionallyRelevant })
	other := filterItems(pool, func(e core.CuratedItem) bool { return !e.IsRegionallyRelevant })
	sortByScoreDesc(relevant)
	sortByScoreDesc(other)

	bandLow := int(math.Round(float64(total) * policy.TargetRatio))
	bandHigh := int(math.Round(float64(total) * policy.BandHighRatio))
	target := clampInt(bandLow, bandLow, bandHigh)

	take := minInt(target, len(relevant))
	selected := append([]core.CuratedItem{}, relevant[:take]...)
	fill := total - take
	if fill > len(other) {
		fill = len(other)
	}
	selected = append(selected, other[:fill]...)

	selected = raiseToBandLow(selected, relevant, bandLow, total)
	selected = lowerToBandHigh(selected, other, bandHigh, total)

	// Sparse days: backfill with whatever is left, accepting
	// under-fill when the pool is exhausted.
	if len(selected) < total {
		chosen := keySet(selected)
		for _, e := range pool {
			if len(selected) >= total {
				break
			}
			if !chosen[e.Key()] {
				selected = append(selected, e)
				chosen[e.Key()] = true
			}
		}
	}

	selected = enforceCap(selected, pool, total, policy.BirthDeathMax,
		func(e core.CuratedItem) bool { return e.Category.Biographical() })
	selected = enforceCap(selected, pool, total, policy.BattleMax, isBattleItem)

	sortByScoreDesc(selected)
	if len(selected) > total {
		selected = selected[:total]
	}
	return selected
}

// raiseToBandLow swaps in next-best unused relevant items when the
// selected relevant share fell below the band, replacing the weakest
// selected items after a re-sort.
func raiseToBandLow(selected, relevant []core.CuratedItem, bandLow, total int) []core.CuratedItem {
	cur := countItems(selected, func(e core.CuratedItem) bool { return e.IsRegionallyRelevant })
	if cur >= bandLow {
		return selected
	}

	chosen := keySet(selected)
	needed := bandLow - cur
	for _, e := range relevant {
		if needed == 0 {
			break
		}
		if !chosen[e.Key()] {
			selected = append(selected, e)
			chosen[e.Key()] = true
			needed--
		}
	}
	sortByScoreDesc(selected)
	if len(selected) > total {
		selected = selected[:total]
	}
	return selected
}

// lowerToBandHigh trades the weakest selected relevant items for the
// next-best unused non-relevant items when the share exceeds the band.
func lowerToBandHigh(selected, other []core.CuratedItem, bandHigh, total int) []core.CuratedItem {
	excess := countItems(selected, func(e core.CuratedItem) bool { return e.IsRegionallyRelevant }) - bandHigh
	if excess <= 0 {
		return selected
	}

	chosen := keySet(selected)
	var replacements []core.CuratedItem
	for _, e := range other {
		if len(replacements) >= excess {
			break
		}
		if !chosen[e.Key()] {
			replacements = append(replacements, e)
		}
	}
	if len(replacements) == 0 {
		return selected
	}

	// Remove the weakest relevant items, one per replacement.
	byScoreAsc := append([]core.CuratedItem{}, selected...)
	sort.SliceStable(byScoreAsc, func(i, j int) bool { return byScoreAsc[i].Score < byScoreAsc[j].Score })
	removed := 0
	remove := make(map[string]bool)
	for _, e := range byScoreAsc {
		if removed >= len(replacements) {
			break
		}
		if e.IsRegionallyRelevant {
			remove[e.Key()] = true
			removed++
		}
	}

	out := filterItems(selected, func(e core.CuratedItem) bool { return !remove[e.Key()] })
	out = append(out, replacements...)
	sortByScoreDesc(out)
	if len(out) > total {
		out = out[:total]
	}
	return out
}

// enforceCap removes the lowest-scored items beyond the cap for the
// given predicate and backfills with non-battle event-category items
// from the pool that are not already selected.
func enforceCap(selected, pool []core.CuratedItem, total, max int, match func(core.CuratedItem) bool) []core.CuratedItem {
	matching := filterItems(selected, match)
	if len(matching) <= max {
		return selected
	}

	sort.SliceStable(matching, func(i, j int) bool { return matching[i].Score < matching[j].Score })
	remove := make(map[string]bool)
	for _, e := range matching[:len(matching)-max] {
		remove[e.Key()] = true
	}
	out := filterItems(selected, func(e core.CuratedItem) bool { return !remove[e.Key()] })

	chosen := keySet(out)
	backfill := filterItems(pool, func(e core.CuratedItem) bool {
		return e.Category == core.CategoryEvent && !isBattleItem(e) && !chosen[e.Key()]
	})
	sortByScoreDesc(backfill)
	for _, e := range backfill {
		if len(out) >= total {
			break
		}
		out = append(out, e)
		chosen[e.Key()] = true
	}
	return out
}

func isBattleItem(e core.CuratedItem) bool {
	return relevance.IsBattleText(e.Title) || relevance.IsBattleText(e.Summary)
}

func filterItems(items []core.CuratedItem, keep func(core.CuratedItem) bool) []core.CuratedItem {
	out := make([]core.CuratedItem, 0, len(items))
	for _, e := range items {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func countItems(items []core.CuratedItem, match func(core.CuratedItem) bool) int {
	n := 0
	for _, e := range items {
		if match(e) {
			n++
		}
	}
	return n
}

func keySet(items []core.CuratedItem) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, e := range items {
		set[e.Key()] = true
	}
	return set
}

func sortByScoreDesc(items []core.CuratedItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
