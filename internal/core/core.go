package core

// Category classifies a historical record from the encyclopedic feed.
type Category string

const (
	CategoryEvent Category = "event"
	CategoryBirth Category = "birth"
	CategoryDeath Category = "death"
)

// Biographical reports whether the category describes a person's birth or death.
func (c Category) Biographical() bool {
	return c == CategoryBirth || c == CategoryDeath
}

// RawRecord is a single entry from the encyclopedic "on this day" feed,
// as fetched. Records are produced fresh per request and discarded after
// the merge stage.
type RawRecord struct {
	Category     Category `json:"category"`
	Year         *int     `json:"year"`          // nil when the feed omits the year
	DisplayTitle string   `json:"display_title"` // sanitized title for display
	PageTitle    string   `json:"page_title"`    // exact page title for corroboration, may be empty
	Excerpt      string   `json:"excerpt"`
	PageURL      string   `json:"page_url"`
}

// CandidateRecord is one entry from the generative candidate provider's
// ranked list. Year is kept as a string because the provider may emit
// signed years ("-44") or leave it empty.
type CandidateRecord struct {
	Rank  int    `json:"rank"`
	Title string `json:"title"`
	Year  string `json:"year"`
	Note  string `json:"note"`
}

// CuratedItem is the pipeline's working unit: a record that survived
// date corroboration, carrying its rewritten title and relevance score.
// Items are replaced rather than mutated during dedupe; only Summary is
// rewritten in place during enrichment.
type CuratedItem struct {
	Category             Category `json:"category"`
	Title                string   `json:"title"`
	Year                 string   `json:"year"`
	Summary              string   `json:"summary"`
	DateISO              string   `json:"date_iso,omitempty"` // omitted when no corroborated day exists
	DisplayDate          string   `json:"display_date,omitempty"`
	VerifiedDay          bool     `json:"verified_day"`
	IsRegionallyRelevant bool     `json:"is_regionally_relevant"`
	Score                int      `json:"score"`
	CandidateRank        int      `json:"candidate_rank,omitempty"` // 0 when not candidate-backed
	SourceURL            string   `json:"source_url,omitempty"`
}

// Key returns the (title, year) identity tuple used for membership
// tests during selection, so copies of an item compare equal.
func (e CuratedItem) Key() string {
	return e.Title + "|" + e.Year
}

// Totals summarizes the composition of a curated set.
type Totals struct {
	Returned           int `json:"returned"`
	RegionallyRelevant int `json:"regionally_relevant"`
	Other              int `json:"other"`
	Biographical       int `json:"biographical"`
	Battles            int `json:"battles"`
}

// Error codes carried by a failed CurationResult so callers can
// classify failures without parsing the message.
const (
	ErrorCodeInvalidDate = "INVALID_DATE"
	ErrorCodePipeline    = "UPSTREAM_OR_PIPELINE_FAILURE"
)

// CurationResult is the pipeline's boundary shape. It is always
// well-formed: internal failures set Success=false and Error rather
// than propagating.
type CurationResult struct {
	Success   bool          `json:"success"`
	Date      string        `json:"date,omitempty"` // YYYY-MM-DD actually used
	RunID     string        `json:"run_id,omitempty"`
	Totals    Totals        `json:"totals"`
	Events    []CuratedItem `json:"events"`
	Error     string        `json:"error,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
}

// IsInvalidInput reports whether the failure was the caller's fault
// rather than an internal or upstream fault.
func (r CurationResult) IsInvalidInput() bool {
	return r.ErrorCode == ErrorCodeInvalidDate
}
