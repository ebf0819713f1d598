// Package textutil holds the text normalization and similarity helpers
// shared by the matching, dedupe and title-rewrite stages.
package textutil

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MonthsFull has display month names, January first.
var MonthsFull = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthsLower has lowercase month names for parsing and regexes.
var MonthsLower = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var (
	nonWordRe     = regexp.MustCompile(`[^\w\s]`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
	parensRe      = regexp.MustCompile(`\s*\(.*?\)\s*`)
	knownPrefixRe = regexp.MustCompile(`(?i)^(?:birthday of|birth of|death of|event:|launch of|founding of|start of|independence of|treaty of|victory:|swearing-in/election of|major event:)\s+`)
	isoDateRe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
)

// Norm lowercases, strips punctuation and collapses whitespace so two
// spellings of the same phrase compare equal token-wise.
func Norm(s string) string {
	x := strings.ToLower(s)
	x = nonWordRe.ReplaceAllString(x, " ")
	x = multiSpaceRe.ReplaceAllString(x, " ")
	return strings.TrimSpace(x)
}

// StripParens removes parenthetical segments like " (politician)".
func StripParens(s string) string {
	return strings.TrimSpace(parensRe.ReplaceAllString(s, ""))
}

// StripKnownPrefixes removes the title-rewrite prefixes ("Birthday of",
// "Event:", ...) so rewritten titles can be compared against raw ones.
// Repeat-safe: stacked prefixes are all removed.
func StripKnownPrefixes(s string) string {
	out := StripParens(s)
	for knownPrefixRe.MatchString(out) {
		out = strings.TrimSpace(knownPrefixRe.ReplaceAllString(out, ""))
	}
	return out
}

// StripHTML drops markup tags, leaving text content.
func StripHTML(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

// Tokens returns the normalized token set used for Jaccard similarity.
// Tokens of one or two characters are ignored.
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(Norm(s)) {
		if len(t) > 2 {
			set[t] = struct{}{}
		}
	}
	return set
}

// Jaccard computes token-set Jaccard similarity between two strings.
func Jaccard(a, b string) float64 {
	ta := Tokens(a)
	tb := Tokens(b)
	inter := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// TrimSummary collapses whitespace and trims text to roughly max
// characters, preferring to cut at a sentence boundary.
func TrimSummary(text string, max int) string {
	if text == "" {
		return ""
	}
	clean := strings.TrimSpace(multiSpaceRe.ReplaceAllString(text, " "))
	if len(clean) <= max {
		return clean
	}
	if max < 40 {
		return cutRuneSafe(clean, max)
	}
	soft := strings.LastIndex(clean[:max-30], ". ")
	if alt := strings.LastIndex(clean[:max*7/10], ". "); alt > soft {
		soft = alt
	}
	if soft > 80 {
		return clean[:soft+1]
	}
	return cutRuneSafe(clean, max)
}

// cutRuneSafe truncates s to at most n bytes without splitting a
// multi-byte rune, backing the cut up to the nearest rune boundary.
func cutRuneSafe(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ToISO formats a calendar date as zero-padded YYYY-MM-DD.
func ToISO(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ISOToDisplay renders "1947-08-15" as "August 15, 1947". Inputs that
// are not ISO dates pass through unchanged.
func ISOToDisplay(iso string) string {
	m := isoDateRe.FindStringSubmatch(iso)
	if m == nil {
		return iso
	}
	var month, day int
	fmt.Sscanf(m[2], "%d", &month)
	fmt.Sscanf(m[3], "%d", &day)
	if month < 1 || month > 12 {
		return iso
	}
	return fmt.Sprintf("%s %d, %s", MonthsFull[month-1], day, m[1])
}
