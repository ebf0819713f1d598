package pipeline

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"almanac/internal/core"
	"almanac/internal/relevance"
	"almanac/internal/textutil"
)

const (
	candidateMatchThreshold = 0.60
	dedupeThreshold         = 0.72
)

var signedYearRe = regexp.MustCompile(`^-?\d+$`)

// verifyAndMerge is the ConsensusMerger: it gates every feed record on
// date consensus, merges in fuzzy-matched candidates, rewrites titles,
// scores and deduplicates.
func (r *Runner) verifyAndMerge(ctx context.Context, norm NormalizedDate, sources fetchedSources) []core.CuratedItem {
	fromFeed := r.verifyFeedRecords(ctx, norm, sources.Records)
	fromCandidates := r.matchCandidates(ctx, norm, sources)

	// Candidate-backed items lead so they win position on ties.
	merged := dedupe(append(fromCandidates, fromFeed...))

	sort.SliceStable(merged, func(i, j int) bool {
		iBacked := merged[i].CandidateRank > 0
		jBacked := merged[j].CandidateRank > 0
		if iBacked != jBacked {
			return iBacked
		}
		if iBacked && jBacked && merged[i].CandidateRank != merged[j].CandidateRank {
			return merged[i].CandidateRank < merged[j].CandidateRank
		}
		return merged[i].Score > merged[j].Score
	})
	return merged
}

// verifyFeedRecords corroborates each raw record concurrently, bounded
// by the configured verification concurrency. Order is preserved; a
// failed corroboration simply drops the record.
func (r *Runner) verifyFeedRecords(ctx context.Context, norm NormalizedDate, records []core.RawRecord) []core.CuratedItem {
	concurrency := r.cfg.VerifyConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	results := make([]*core.CuratedItem, len(records))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, rec := range records {
		if rec.DisplayTitle == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rec core.RawRecord) {
			defer wg.Done()
			defer func() { <-sem }()
			if item := r.verifyOne(ctx, norm, rec, 0, ""); item != nil {
				results[i] = item
			}
		}(i, rec)
	}
	wg.Wait()

	out := make([]core.CuratedItem, 0, len(records))
	for _, item := range results {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

// verifyOne runs the date-consensus gate for one record and, on a
// pass, builds the curated item. candidateRank and note are non-zero
// only for candidate-matched records.
func (r *Runner) verifyOne(ctx context.Context, norm NormalizedDate, rec core.RawRecord, candidateRank int, note string) *core.CuratedItem {
	strict := r.isStrict(rec.DisplayTitle, rec.Excerpt)
	gate := r.requireDateConsensus(ctx, rec.PageTitle, rec.DisplayTitle, rec.Category, norm.MM, norm.DD, strict)
	if !gate.OK {
		r.log.Debug("Record rejected by date consensus", "title", rec.DisplayTitle, "via", gate.Via)
		return nil
	}

	year := ""
	if rec.Year != nil {
		year = strconv.Itoa(*rec.Year)
	}

	summary := rec.Excerpt
	if note != "" {
		summary = textutil.TrimSummary(rec.Excerpt+" "+note, r.cfg.SummaryMax)
	}

	blob := rec.DisplayTitle + " " + rec.Excerpt
	if note != "" {
		blob += " " + note
	}
	regional := r.classifier.IsRegionallyRelevant(blob)
	if !regional && gate.QID != "" {
		regional = r.countrySecondOpinion(ctx, gate.QID)
	}

	item := core.CuratedItem{
		Category:             rec.Category,
		Title:                SemanticTitle(rec.Category, rec.DisplayTitle, rec.Excerpt),
		Year:                 year,
		Summary:              summary,
		DateISO:              gate.ISO,
		DisplayDate:          textutil.ISOToDisplay(gate.ISO),
		VerifiedDay:          gate.ISO != "",
		IsRegionallyRelevant: regional,
		CandidateRank:        candidateRank,
		SourceURL:            rec.PageURL,
	}
	item.Score = r.classifier.Score(relevance.ScoreInput{
		Title:         rec.DisplayTitle,
		Summary:       summary,
		Year:          year,
		Category:      rec.Category,
		CandidateRank: candidateRank,
	})
	return &item
}

// countrySecondOpinion consults the fact store's country claims when
// the keyword classifier said "not relevant" but an entity is known.
// Any lookup failure leaves the keyword verdict in place.
func (r *Runner) countrySecondOpinion(ctx context.Context, qid string) bool {
	if r.facts == nil {
		return false
	}
	codes, err := r.facts.CountryCodes(ctx, qid)
	if err != nil {
		return false
	}
	return codes[r.regionCode]
}

// matchCandidates merges generative candidates that fuzzy-match a feed
// record. Unmatched candidates are discarded: they cannot be
// corroborated against the trusted feed and never stand alone.
func (r *Runner) matchCandidates(ctx context.Context, norm NormalizedDate, sources fetchedSources) []core.CuratedItem {
	var out []core.CuratedItem
	for _, cand := range sources.Candidates {
		best, sim := bestFeedMatch(cand, sources.Records)
		if best == nil || sim < candidateMatchThreshold {
			continue
		}
		rec := *best
		if rec.Year == nil {
			if y, ok := parseSignedYear(cand.Year); ok {
				rec.Year = &y
			}
		}
		if item := r.verifyOne(ctx, norm, rec, cand.Rank, cand.Note); item != nil {
			out = append(out, *item)
		}
	}
	return out
}

// bestFeedMatch finds the record with the highest token overlap
// against the candidate title, over both title and excerpt. Records
// whose numeric year disagrees with the candidate's are excluded.
func bestFeedMatch(cand core.CandidateRecord, records []core.RawRecord) (*core.RawRecord, float64) {
	candYear, hasYear := parseSignedYear(cand.Year)

	var best *core.RawRecord
	bestSim := 0.0
	for i := range records {
		rec := &records[i]
		if hasYear && rec.Year != nil && *rec.Year != candYear {
			continue
		}
		sim := textutil.Jaccard(cand.Title, rec.DisplayTitle)
		if s := textutil.Jaccard(cand.Title, rec.Excerpt); s > sim {
			sim = s
		}
		if sim > bestSim {
			bestSim = sim
			best = rec
		}
	}
	return best, bestSim
}

func parseSignedYear(s string) (int, bool) {
	if !signedYearRe.MatchString(s) {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	return y, err == nil
}

// dedupe collapses near-identical items: same year string and a
// prefix-stripped title similarity above the threshold. Each incoming
// item is checked against every survivor, and all of its duplicates
// collapse into the one with the highest preference key, so the output
// is pairwise distinct and a second pass is a no-op.
func dedupe(items []core.CuratedItem) []core.CuratedItem {
	var out []core.CuratedItem
	for _, e := range items {
		best := e
		kept := make([]core.CuratedItem, 0, len(out)+1)
		for _, o := range out {
			if !isDuplicateItem(e, o) {
				kept = append(kept, o)
				continue
			}
			if preferenceKey(o) > preferenceKey(best) {
				best = o
			}
		}
		out = append(kept, best)
	}
	return out
}

func isDuplicateItem(a, b core.CuratedItem) bool {
	return a.Year != "" && b.Year != "" && a.Year == b.Year &&
		textutil.Jaccard(textutil.StripKnownPrefixes(a.Title), textutil.StripKnownPrefixes(b.Title)) > dedupeThreshold
}

// preferenceKey ranks duplicate candidates: candidate-backed and
// regionally relevant items win over raw feed items of similar score.
func preferenceKey(e core.CuratedItem) float64 {
	k := float64(e.Score) / 100
	if e.CandidateRank > 0 {
		k++
	}
	if e.IsRegionallyRelevant {
		k++
	}
	return k
}
