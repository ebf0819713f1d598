// Package pipeline implements the curation pipeline: date
// normalization, concurrent source fetching, date-consensus merging,
// quota-bounded selection and summary enrichment.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"almanac/internal/candidates"
	"almanac/internal/config"
	"almanac/internal/core"
	"almanac/internal/logger"
	"almanac/internal/relevance"
	"almanac/internal/wiki"
	"almanac/internal/wikidata"

	"github.com/google/uuid"
)

// FeedSource is the encyclopedic feed the pipeline reads from.
type FeedSource interface {
	OnThisDay(ctx context.Context, mm, dd string, feed wiki.FeedType) ([]core.RawRecord, error)
	SummaryByTitle(ctx context.Context, title string) (*wiki.PageSummary, error)
	ArticleText(ctx context.Context, title string) (string, error)
}

// FactSource is the structured fact store used for corroboration.
type FactSource interface {
	ReferencedDate(ctx context.Context, qid string) (*wikidata.TimeFact, error)
	CountryCodes(ctx context.Context, qid string) (map[string]bool, error)
}

// Runner wires the pipeline stages to their collaborators. One Runner
// serves many invocations; it holds no per-request state.
type Runner struct {
	cfg        config.Curation
	feed       FeedSource
	facts      FactSource
	provider   candidates.Provider // nil when the provider is absent
	classifier *relevance.Classifier
	regionCode string
	log        *slog.Logger
}

// NewRunner creates a pipeline runner. provider may be nil; the
// pipeline then runs in single-source mode.
func NewRunner(cfg config.Curation, feed FeedSource, facts FactSource, provider candidates.Provider, classifier *relevance.Classifier, regionCode string) *Runner {
	if classifier == nil {
		classifier = relevance.NewClassifier()
	}
	if regionCode == "" {
		regionCode = "IN"
	}
	return &Runner{
		cfg:        cfg,
		feed:       feed,
		facts:      facts,
		provider:   provider,
		classifier: classifier,
		regionCode: regionCode,
		log:        logger.Get(),
	}
}

// Curate runs the full pipeline for one date. It never panics across
// this boundary: a catastrophic stage failure produces a
// failure-flagged result instead.
func (r *Runner) Curate(ctx context.Context, date string, limit int) (result core.CurationResult) {
	runID := uuid.NewString()

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Pipeline panicked", "run_id", runID, "panic", fmt.Sprint(rec))
			result = core.CurationResult{
				Success:   false,
				RunID:     runID,
				Error:     "pipeline stage failed",
				ErrorCode: core.ErrorCodePipeline,
				Events:    []core.CuratedItem{},
			}
		}
	}()

	norm, err := NormalizeDate(date, limit, r.cfg.DefaultLimit, r.cfg.MinLimit, r.cfg.MaxLimit)
	if err != nil {
		return core.CurationResult{
			Success:   false,
			RunID:     runID,
			Error:     err.Error(),
			ErrorCode: core.ErrorCodeInvalidDate,
			Events:    []core.CuratedItem{},
		}
	}

	r.log.Info("Curation started", "run_id", runID, "date", norm.Date, "limit", norm.Limit)

	sources := r.fetchSources(ctx, norm)
	r.log.Info("Sources fetched",
		"run_id", runID,
		"records", len(sources.Records),
		"candidates", len(sources.Candidates),
	)

	merged := r.verifyAndMerge(ctx, norm, sources)
	r.log.Info("Consensus merge completed", "run_id", runID, "survivors", len(merged))

	selected := Select(merged, norm.Limit, SelectionPolicy{
		TargetRatio:   r.cfg.TargetRatio,
		BandHighRatio: r.cfg.BandHighRatio,
		BirthDeathMax: r.cfg.BirthDeathMax,
		BattleMax:     r.cfg.BattleMax,
	})

	r.enrichSummaries(ctx, selected, sources.Notes)

	totals := core.Totals{Returned: len(selected)}
	for _, e := range selected {
		if e.IsRegionallyRelevant {
			totals.RegionallyRelevant++
		} else {
			totals.Other++
		}
		if e.Category.Biographical() {
			totals.Biographical++
		}
		if relevance.IsBattleText(e.Title + " " + e.Summary) {
			totals.Battles++
		}
	}

	r.log.Info("Curation completed",
		"run_id", runID,
		"returned", totals.Returned,
		"regionally_relevant", totals.RegionallyRelevant,
		"biographical", totals.Biographical,
		"battles", totals.Battles,
	)

	return core.CurationResult{
		Success: true,
		Date:    norm.Date,
		RunID:   runID,
		Totals:  totals,
		Events:  selected,
	}
}

// fetchedSources is the SourceFetcher output: the flat record list,
// the concatenated candidate lists and the candidate notes keyed by
// normalized prefix-stripped title.
type fetchedSources struct {
	Records    []core.RawRecord
	Candidates []core.CandidateRecord
	Notes      map[string]string
}

// fetchSources retrieves the three feed categories and the optional
// candidate lists concurrently. Each sub-fetch fails independently to
// an empty result; the batch never aborts.
func (r *Runner) fetchSources(ctx context.Context, norm NormalizedDate) fetchedSources {
	feeds := []wiki.FeedType{wiki.FeedEvents, wiki.FeedBirths, wiki.FeedDeaths}
	recordsByFeed := make([][]core.RawRecord, len(feeds))
	candidateLists := make([][]core.CandidateRecord, 2)

	var wg sync.WaitGroup
	for i, ft := range feeds {
		wg.Add(1)
		go func(i int, ft wiki.FeedType) {
			defer wg.Done()
			recs, err := r.feed.OnThisDay(ctx, norm.MM, norm.DD, ft)
			if err != nil {
				r.log.Warn("Feed fetch failed, continuing without it", "feed", string(ft), "error", err.Error())
				return
			}
			recordsByFeed[i] = recs
		}(i, ft)
	}

	if r.provider != nil {
		for i, regionOnly := range []bool{false, true} {
			wg.Add(1)
			go func(i int, regionOnly bool) {
				defer wg.Done()
				items, err := r.provider.Rank(ctx, norm.Readable, norm.MM, norm.DD, regionOnly)
				if err != nil {
					r.log.Warn("Candidate fetch failed, continuing without it", "region_only", regionOnly, "error", err.Error())
					return
				}
				candidateLists[i] = items
			}(i, regionOnly)
		}
	}

	wg.Wait()

	out := fetchedSources{Notes: make(map[string]string)}
	for _, recs := range recordsByFeed {
		out.Records = append(out.Records, recs...)
	}
	for _, items := range candidateLists {
		out.Candidates = append(out.Candidates, items...)
	}
	for _, c := range out.Candidates {
		if c.Title != "" {
			out.Notes[noteKey(c.Title)] = c.Note
		}
	}
	return out
}
