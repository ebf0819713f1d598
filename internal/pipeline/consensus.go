package pipeline

import (
	"context"
	"strings"

	"almanac/internal/core"
	"almanac/internal/textutil"
	"almanac/internal/wiki"
)

// gateResult is the outcome of corroborating one record's calendar day.
type gateResult struct {
	OK  bool
	ISO string // full corroborated ISO date, empty on a lenient pass
	Via string // evidence source, for logs
	QID string // entity ID resolved along the way, may be empty
}

// isStrict reports whether a record belongs to a strict corroboration
// category: such records are error-prone against day-based feeds, so a
// failed corroboration is a hard reject with no lenient fallback.
func (r *Runner) isStrict(title, excerpt string) bool {
	t := strings.ToLower(title)
	x := strings.ToLower(excerpt)
	for _, kw := range r.cfg.StrictKeywords {
		kw = strings.ToLower(kw)
		if kw != "" && (strings.Contains(t, kw) || strings.Contains(x, kw)) {
			return true
		}
	}
	return false
}

// isLenient reports whether the category is trusted to pass when no
// date evidence exists at all (biographical subjects frequently lack
// day-level public facts). A lenient category never excuses evidence
// that contradicts the requested day.
func (r *Runner) isLenient(category core.Category) bool {
	for _, c := range r.cfg.LenientCategories {
		if core.Category(strings.ToLower(c)) == category {
			return true
		}
	}
	return false
}

// requireDateConsensus corroborates that the record's true month/day
// equals the requested one, independent of the feed's year field.
// Evidence sources, in order: article text scanned for a verb-anchored
// date phrase, then referenced point-in-time facts from the fact
// store. Each is tried against the exact page title first, then the
// display title. Every network failure counts as "no evidence found".
func (r *Runner) requireDateConsensus(ctx context.Context, pageTitle, displayTitle string, category core.Category, mm, dd string, strict bool) gateResult {
	titles := make([]string, 0, 2)
	seen := make(map[string]bool)
	for _, t := range []string{pageTitle, displayTitle} {
		t = textutil.StripHTML(t)
		if t != "" && !seen[t] {
			titles = append(titles, t)
			seen[t] = true
		}
	}

	qid := ""
	sawDate := false
	for _, title := range titles {
		if audit := r.articleDateAudit(ctx, title); audit.ISO != "" {
			sawDate = true
			if matchesDay(audit.ISO, mm, dd) {
				return gateResult{OK: true, ISO: audit.ISO, Via: "article", QID: qid}
			}
		}

		fact, factQID := r.factDateAudit(ctx, title)
		if factQID != "" && qid == "" {
			qid = factQID
		}
		if fact != "" {
			sawDate = true
			if matchesDay(fact, mm, dd) {
				return gateResult{OK: true, ISO: fact, Via: "facts", QID: qid}
			}
		}
	}

	if strict {
		return gateResult{Via: "strict-mismatch", QID: qid}
	}
	if !sawDate && r.isLenient(category) {
		return gateResult{OK: true, Via: "lenient-no-day-found", QID: qid}
	}
	return gateResult{Via: "mismatch", QID: qid}
}

func (r *Runner) articleDateAudit(ctx context.Context, title string) wiki.DateAudit {
	text, err := r.feed.ArticleText(ctx, title)
	if err != nil {
		return wiki.DateAudit{}
	}
	return wiki.ScanArticleDate(text)
}

// factDateAudit resolves the page to its entity and returns the
// highest-priority referenced time fact, plus the entity ID.
func (r *Runner) factDateAudit(ctx context.Context, title string) (string, string) {
	sum, err := r.feed.SummaryByTitle(ctx, title)
	if err != nil || sum.WikibaseItem == "" {
		return "", ""
	}
	fact, err := r.facts.ReferencedDate(ctx, sum.WikibaseItem)
	if err != nil || fact == nil {
		return "", sum.WikibaseItem
	}
	return fact.ISO, sum.WikibaseItem
}

func matchesDay(iso, mm, dd string) bool {
	return len(iso) == 10 && iso[5:7] == mm && iso[8:10] == dd
}
