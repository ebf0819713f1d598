// Package candidates adapts the generative provider into a ranked list
// of title/year/note suggestions for a date. The provider is optional:
// every failure mode degrades to an empty list so the pipeline can run
// on encyclopedic data alone.
package candidates

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"almanac/internal/core"
)

// Outcome tags how a provider payload was interpreted.
type Outcome int

const (
	// OutcomeEmpty means nothing usable was extracted.
	OutcomeEmpty Outcome = iota
	// OutcomeParsed means the strict JSON shape was accepted.
	OutcomeParsed
	// OutcomeRecovered means the lenient line-oriented fallback
	// salvaged entries from malformed output.
	OutcomeRecovered
)

// ParseResult carries the extracted candidate list and how it was
// obtained. No parse path returns an error: malformed payloads resolve
// to OutcomeEmpty.
type ParseResult struct {
	Outcome Outcome
	Items   []core.CandidateRecord
}

type payload struct {
	Events []payloadEvent `json:"events"`
}

type payloadEvent struct {
	Year  json.RawMessage `json:"year"`
	Title string          `json:"title"`
	Note  string          `json:"note"`
}

var (
	fencedJSONRe = regexp.MustCompile("(?i)```json|```")
	objectRe     = regexp.MustCompile(`(?s)\{.*?"events"\s*:\s*\[.*\}\s*$`)

	// Line shapes the lenient parser recognizes: a year-led entry
	// ("1947 — Title: note", BCE years allowed) and a biographical
	// entry ("Birthday of X: note"), each with a note-less variant.
	// Bullets, bold markers and numbered-list indices are tolerated.
	yearNoteLineRe = regexp.MustCompile(`(?i)^[-*\s]*(?:\d{1,2}[.)]\s+)?\*{0,2}(-?\d{1,4}\s*BCE|\d{3,4})\W+(.+?)\s*:\s*(.+)$`)
	yearLineRe     = regexp.MustCompile(`(?i)^[-*\s]*(?:\d{1,2}[.)]\s+)?\*{0,2}(-?\d{1,4}\s*BCE|\d{3,4})\W+(.+)$`)
	bioNoteLineRe  = regexp.MustCompile(`(?i)^[-*\s]*(?:\d{1,2}[.)]\s+)?\*{0,2}(Birthday of|Death of)\s+(.+?)\s*:\s*(.+)$`)
	bioLineRe      = regexp.MustCompile(`(?i)^[-*\s]*(?:\d{1,2}[.)]\s+)?\*{0,2}(Birthday of|Death of)\s+(.+)$`)
	numericYearRe  = regexp.MustCompile(`^-?\d+$`)
	boldMarkersRe  = regexp.MustCompile(`\*\*`)
)

// Parse interprets raw provider output: a strict JSON attempt first,
// then a fenced-JSON extraction, then line-oriented recovery.
// maxItems bounds the returned list; rank is the 1-based position.
func Parse(raw string, maxItems int) ParseResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ParseResult{Outcome: OutcomeEmpty}
	}

	if items := parseJSON(raw, maxItems); len(items) > 0 {
		return ParseResult{Outcome: OutcomeParsed, Items: items}
	}
	if items := parseLines(raw, maxItems); len(items) > 0 {
		return ParseResult{Outcome: OutcomeRecovered, Items: items}
	}
	return ParseResult{Outcome: OutcomeEmpty}
}

func parseJSON(raw string, maxItems int) []core.CandidateRecord {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// The provider sometimes wraps the object in a code fence or
		// leads with prose; retry on the extracted object literal.
		stripped := fencedJSONRe.ReplaceAllString(raw, "")
		m := objectRe.FindString(stripped)
		if m == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(m), &p); err != nil {
			return nil
		}
	}
	return toRecords(p.Events, maxItems)
}

func toRecords(events []payloadEvent, maxItems int) []core.CandidateRecord {
	out := make([]core.CandidateRecord, 0, len(events))
	for _, e := range events {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			continue
		}
		out = append(out, core.CandidateRecord{
			Rank:  len(out) + 1,
			Title: title,
			Year:  decodeYear(e.Year),
			Note:  strings.TrimSpace(e.Note),
		})
		if maxItems > 0 && len(out) >= maxItems {
			break
		}
	}
	return out
}

// decodeYear accepts the year as a JSON string or bare number.
func decodeYear(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.Itoa(n)
	}
	return ""
}

func parseLines(raw string, maxItems int) []core.CandidateRecord {
	var out []core.CandidateRecord
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var year, title, note string
		if m := yearNoteLineRe.FindStringSubmatch(line); m != nil {
			year, title, note = m[1], m[2], m[3]
		} else if m := yearLineRe.FindStringSubmatch(line); m != nil {
			year, title = m[1], m[2]
		} else if m := bioNoteLineRe.FindStringSubmatch(line); m != nil {
			title, note = m[1]+" "+m[2], m[3]
		} else if m := bioLineRe.FindStringSubmatch(line); m != nil {
			title = m[1] + " " + m[2]
		} else {
			continue
		}

		yStr := strings.TrimSpace(strings.TrimSuffix(strings.ToUpper(year), "BCE"))
		if !numericYearRe.MatchString(yStr) {
			yStr = ""
		}
		title = strings.TrimSpace(boldMarkersRe.ReplaceAllString(title, ""))
		note = strings.TrimSpace(boldMarkersRe.ReplaceAllString(note, ""))
		if title != "" {
			out = append(out, core.CandidateRecord{Rank: len(out) + 1, Title: title, Year: yStr, Note: note})
		}

		if maxItems > 0 && len(out) >= maxItems {
			break
		}
	}
	return out
}
