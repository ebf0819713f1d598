package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"almanac/internal/textutil"
)

// ErrInvalidDate is returned when the input date string is not a valid
// YYYY-MM-DD calendar date. This is the pipeline's only validation
// boundary: every later stage assumes a valid (mm, dd) pair.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

var isoInputRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizedDate is the canonical calendar key for one pipeline run.
type NormalizedDate struct {
	Date     string // YYYY-MM-DD actually used
	MM       string // zero-padded month
	DD       string // zero-padded day
	Readable string // e.g. "August 15"
	Limit    int    // clamped requested count
}

// NormalizeDate resolves the input date (empty means the current UTC
// day) and clamps the requested limit into [minLimit, maxLimit].
func NormalizeDate(date string, limit, defaultLimit, minLimit, maxLimit int) (NormalizedDate, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var t time.Time
	if date == "" {
		t = time.Now().UTC()
	} else {
		if !isoInputRe.MatchString(date) {
			return NormalizedDate{}, ErrInvalidDate
		}
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return NormalizedDate{}, fmt.Errorf("%w: %s", ErrInvalidDate, date)
		}
		t = parsed.UTC()
	}

	return NormalizedDate{
		Date:     t.Format("2006-01-02"),
		MM:       fmt.Sprintf("%02d", int(t.Month())),
		DD:       fmt.Sprintf("%02d", t.Day()),
		Readable: fmt.Sprintf("%s %d", textutil.MonthsFull[int(t.Month())-1], t.Day()),
		Limit:    limit,
	}, nil
}
