package pipeline

import (
	"context"
	"sync"

	"almanac/internal/core"
	"almanac/internal/textutil"
)

// noteKey normalizes a title for candidate-note lookups so rewritten
// and raw spellings of the same subject collide.
func noteKey(title string) string {
	return textutil.Norm(textutil.StripKnownPrefixes(title))
}

// enrichSummaries best-effort replaces each selected item's summary
// with the page lead when that is longer, and appends the candidate
// note to short summaries. Fetch failures leave the summary unchanged;
// this stage never fails the pipeline.
func (r *Runner) enrichSummaries(ctx context.Context, selected []core.CuratedItem, notes map[string]string) {
	concurrency := r.cfg.EnrichConcurrency
	if concurrency <= 0 {
		concurrency = 6
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i := range selected {
		wg.Add(1)
		sem <- struct{}{}
		go func(e *core.CuratedItem) {
			defer wg.Done()
			defer func() { <-sem }()
			r.enrichOne(ctx, e, notes)
		}(&selected[i])
	}
	wg.Wait()
}

func (r *Runner) enrichOne(ctx context.Context, e *core.CuratedItem, notes map[string]string) {
	title := textutil.StripKnownPrefixes(e.Title)

	if sum, err := r.feed.SummaryByTitle(ctx, title); err == nil {
		if len(sum.Extract) > len(e.Summary) {
			e.Summary = textutil.TrimSummary(sum.Extract, r.cfg.SummaryMax)
		}
	}

	if note, ok := notes[noteKey(e.Title)]; ok && note != "" && len(e.Summary) < r.cfg.NoteAppendUnder {
		e.Summary = textutil.TrimSummary(e.Summary+" "+note, r.cfg.SummaryMax)
	}
}
