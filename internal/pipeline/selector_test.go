package pipeline

import (
	"fmt"
	"reflect"
	"testing"

	"almanac/internal/core"
)

func testPolicy() SelectionPolicy {
	return SelectionPolicy{TargetRatio: 0.70, BandHighRatio: 0.85, BirthDeathMax: 6, BattleMax: 3}
}

func selItem(title, year string, score int, regional bool, category core.Category) core.CuratedItem {
	return core.CuratedItem{
		Category:             category,
		Title:                title,
		Year:                 year,
		Summary:              "summary for " + title,
		Score:                score,
		IsRegionallyRelevant: regional,
	}
}

// richPool has 20 regionally relevant and 10 other event items with
// distinct scores.
func richPool() []core.CuratedItem {
	var pool []core.CuratedItem
	for i := 0; i < 20; i++ {
		pool = append(pool, selItem(fmt.Sprintf("Regional item %d", i), "1950", 80-i, true, core.CategoryEvent))
	}
	for i := 0; i < 10; i++ {
		pool = append(pool, selItem(fmt.Sprintf("Other item %d", i), "1960", 60-i, false, core.CategoryEvent))
	}
	return pool
}

func TestSelectFillsLimitFromRichPool(t *testing.T) {
	got := Select(richPool(), 10, testPolicy())
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}

	regional := countItems(got, func(e core.CuratedItem) bool { return e.IsRegionallyRelevant })
	if regional < 7 || regional > 9 {
		t.Errorf("regional count = %d, want within [7, 9]", regional)
	}

	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("output not sorted by score at %d: %d > %d", i, got[i].Score, got[i-1].Score)
		}
	}
}

func TestSelectUnderfilledPool(t *testing.T) {
	pool := []core.CuratedItem{
		selItem("A", "1950", 70, true, core.CategoryEvent),
		selItem("B", "1951", 60, false, core.CategoryEvent),
		selItem("C", "1952", 50, false, core.CategoryBirth),
	}
	got := Select(pool, 10, testPolicy())
	if len(got) != 3 {
		t.Errorf("len = %d, want the whole pool", len(got))
	}
}

func TestSelectEmptyInputs(t *testing.T) {
	if got := Select(nil, 10, testPolicy()); len(got) != 0 {
		t.Errorf("nil pool should select nothing, got %d", len(got))
	}
	if got := Select(richPool(), 0, testPolicy()); len(got) != 0 {
		t.Errorf("zero total should select nothing, got %d", len(got))
	}
}

func TestSelectBiographicalCapWithBackfill(t *testing.T) {
	policy := testPolicy()
	policy.BirthDeathMax = 2

	var pool []core.CuratedItem
	for i := 0; i < 4; i++ {
		pool = append(pool, selItem(fmt.Sprintf("Birthday of Person %d", i), "1900", 90-i, true, core.CategoryBirth))
	}
	for i := 0; i < 6; i++ {
		pool = append(pool, selItem(fmt.Sprintf("Event item %d", i), "1950", 60-i, true, core.CategoryEvent))
	}

	got := Select(pool, 8, policy)
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}

	bio := countItems(got, func(e core.CuratedItem) bool { return e.Category.Biographical() })
	if bio != 2 {
		t.Errorf("biographical count = %d, want 2", bio)
	}
	events := countItems(got, func(e core.CuratedItem) bool { return e.Category == core.CategoryEvent })
	if events != 6 {
		t.Errorf("event count = %d, want all 6 backfilled", events)
	}
}

func TestSelectBattleCapWithBackfill(t *testing.T) {
	var pool []core.CuratedItem
	for i := 0; i < 5; i++ {
		pool = append(pool, selItem(fmt.Sprintf("Battle of Place %d", i), "1700", 90-i, true, core.CategoryEvent))
	}
	for i := 0; i < 5; i++ {
		pool = append(pool, selItem(fmt.Sprintf("Plain event %d", i), "1950", 50-i, true, core.CategoryEvent))
	}

	got := Select(pool, 6, testPolicy())
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}

	battles := countItems(got, isBattleItem)
	if battles != 3 {
		t.Errorf("battle count = %d, want 3", battles)
	}
	// The strongest battles survive the cap.
	keys := keySet(got)
	for _, title := range []string{"Battle of Place 0", "Battle of Place 1", "Battle of Place 2"} {
		if !keys[title+"|1700"] {
			t.Errorf("missing %q from selection", title)
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	a := Select(richPool(), 10, testPolicy())
	b := Select(richPool(), 10, testPolicy())
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different selections")
	}
}

func TestSelectDoesNotMutatePool(t *testing.T) {
	pool := richPool()
	snapshot := append([]core.CuratedItem{}, pool...)
	_ = Select(pool, 10, testPolicy())
	if !reflect.DeepEqual(pool, snapshot) {
		t.Error("Select mutated its input pool")
	}
}
