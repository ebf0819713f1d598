package wiki

import (
	"regexp"
	"strconv"
	"strings"

	"almanac/internal/textutil"
)

var (
	// verbCueDateRe finds a "15 August 1947" style phrase within a few
	// characters of an event verb. The proximity bound keeps matches
	// anchored to the verb instead of picking up unrelated dates.
	verbCueDateRe = regexp.MustCompile(
		`(?i)(?:signed|born|died|launched|declared|independence|assassinated|founded|started|arrested|storming|crash(?:ed|es)?)[^\w]{0,30}(\d{1,2})\s+(` +
			strings.Join(textutil.MonthsLower, "|") + `)\s+(\d{3,4})`)

	// signingDateRe is a narrower fallback for treaty and signing
	// phrasing ("date signed", "date of signing").
	signingDateRe = regexp.MustCompile(
		`(?i)(?:date\s*(?:signed|of\s*signing)|signed)[^A-Za-z0-9]{0,10}(\d{1,2})\s+(` +
			strings.Join(textutil.MonthsLower, "|") + `)\s+(\d{3,4})`)
)

// DateAudit is the outcome of scanning article text for a
// date-bearing phrase.
type DateAudit struct {
	ISO      string // YYYY-MM-DD, empty when nothing was found
	Evidence string // the matched phrase
}

// ScanArticleDate extracts the first verb-anchored date from article
// text. It returns a zero DateAudit when no candidate phrase exists.
func ScanArticleDate(text string) DateAudit {
	m := verbCueDateRe.FindStringSubmatch(text)
	if m == nil {
		m = signingDateRe.FindStringSubmatch(text)
	}
	if m == nil {
		return DateAudit{}
	}

	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	month := 0
	lower := strings.ToLower(m[2])
	for i, name := range textutil.MonthsLower {
		if name == lower {
			month = i + 1
			break
		}
	}
	if month == 0 || day < 1 || day > 31 {
		return DateAudit{}
	}
	return DateAudit{ISO: textutil.ToISO(year, month, day), Evidence: m[0]}
}
