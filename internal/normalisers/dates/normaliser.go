package dates

import (
	"strconv"
	"strings"
	"time"

	"github.com/caldera-ops/opsync/internal/logger"
)

// generalLayouts are tried first, in order. They cover the shapes the
// external source emits when it behaves.
var generalLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// dayFirstLayouts cover the source's legacy day/month shapes. The
// two-digit-year layout comes first so its correction rules apply
// before the four-digit layout gets a chance to misread.
var dayFirstLayouts = []string{
	"2/1/06",
	"2/1/2006",
	"2/1/06 15:04",
	"2/1/2006 15:04",
}

// Normalise parses an arbitrary date string into a UTC instant. It
// never fails: unparseable input yields the current instant. See
// NormaliseAt for the full algorithm.
func Normalise(s string) time.Time {
	return NormaliseAt(s, time.Now())
}

// NormaliseAt is Normalise with an explicit "now" for the fallback,
// which keeps tests deterministic.
//
// The algorithm, in order:
//  1. try the general layouts; first match wins.
//  2. try the day/month layouts. A two-digit-year match below 2000
//     gets 100 years added; if that still lands below 2000, the year
//     is force-substituted with 2000 plus the raw two-digit value from
//     the input.
//  3. fall back to now. The fallback is deliberately lossy and silent;
//     upgrading it to a failure is a product decision, not a bug fix.
func NormaliseAt(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.UTC()
	}

	for _, layout := range generalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}

	for _, layout := range dayFirstLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if twoDigitYear(layout) {
			t = correctCentury(t, s)
		}
		return t.UTC()
	}

	logger.Debug("dates: unparseable %q, defaulting to now", s)
	return now.UTC()
}

// twoDigitYear reports whether the layout carries a two-digit year.
func twoDigitYear(layout string) bool {
	return strings.Contains(layout, "/06") && !strings.Contains(layout, "/2006")
}

// correctCentury applies the legacy two-digit-year rules: years parsed
// below 2000 gain a century, and if that is not enough the year is
// rebuilt as 2000 plus the raw two-digit value taken from the input.
func correctCentury(t time.Time, raw string) time.Time {
	if t.Year() >= 2000 {
		return t
	}
	t = t.AddDate(100, 0, 0)
	if t.Year() >= 2000 {
		return t
	}
	yy, ok := rawYearDigits(raw)
	if !ok {
		return t
	}
	return time.Date(2000+yy, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// rawYearDigits extracts the two-digit year token from a d/m/yy string.
func rawYearDigits(s string) (int, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return 0, false
	}
	year := strings.TrimSpace(parts[2])
	if i := strings.IndexByte(year, ' '); i >= 0 {
		year = year[:i]
	}
	if len(year) != 2 {
		return 0, false
	}
	yy, err := strconv.Atoi(year)
	if err != nil {
		return 0, false
	}
	return yy, true
}
