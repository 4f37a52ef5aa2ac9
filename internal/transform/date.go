package transform

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/AngelCh415/campaign-metrics/internal/models"
)

// Explicit date formats understood by ParseDateWithFormat.
const (
	DateISO       = "YYYY-MM-DD"
	DateUS        = "MM/DD/YYYY"
	DateUSShort   = "M/D/YYYY"
	DateUSTwoYear = "M/D/YY"
	DateEU        = "DD/MM/YYYY"
	DateUSDash    = "MM-DD-YYYY"
	DateEUDash    = "DD-MM-YYYY"
)

type dateLayout struct {
	name         string
	re           *regexp.Regexp
	y, m, d      int // submatch indexes
	twoDigitYear bool
}

// dateLayouts is in auto-detection priority order.
var dateLayouts = []dateLayout{
	{name: DateISO, re: regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`), y: 1, m: 2, d: 3},
	{name: DateUS, re: regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`), m: 1, d: 2, y: 3},
	{name: DateUSShort, re: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), m: 1, d: 2, y: 3},
	{name: DateUSTwoYear, re: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`), m: 1, d: 2, y: 3, twoDigitYear: true},
	{name: DateEU, re: regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`), d: 1, m: 2, y: 3},
	{name: DateUSDash, re: regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`), m: 1, d: 2, y: 3},
	{name: DateEUDash, re: regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`), d: 1, m: 2, y: 3},
}

// DateFormats lists the explicit formats in auto-detection order.
func DateFormats() []string {
	out := make([]string, len(dateLayouts))
	for i, l := range dateLayouts {
		out[i] = l.name
	}
	return out
}

// looseLayouts back the generic fallback used when no explicit format matches.
var looseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/06",
	"1-2-2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Mon, 02 Jan 2006",
	"Mon Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
	"Jan 2006",
	"January 2006",
}

// ParseDateWithFormat parses s with an explicit format, or with "auto". Dates
// that do not exist on the calendar (Feb 30) are rejected.
func ParseDateWithFormat(s, format string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if IsAbsent(s) {
		return time.Time{}, false
	}
	if format == "" || format == models.FormatAuto {
		for _, l := range dateLayouts {
			if t, ok := l.parse(s); ok {
				return t, true
			}
		}
		if !looksLikeDate(s) {
			return time.Time{}, false
		}
		return ParseLooseDate(s)
	}
	for _, l := range dateLayouts {
		if l.name == format {
			return l.parse(s)
		}
	}
	return time.Time{}, false
}

func (l dateLayout) parse(s string) (time.Time, bool) {
	m := l.re.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(m[l.y])
	mo, _ := strconv.Atoi(m[l.m])
	d, _ := strconv.Atoi(m[l.d])
	if l.twoDigitYear {
		y = expandYear(y)
	}
	return calendarDate(y, mo, d)
}

// calendarDate builds a date and rejects components time.Date had to normalize.
func calendarDate(y, m, d int) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// expandYear follows the time package pivot: 69-99 are 19xx, 00-68 are 20xx.
func expandYear(yy int) int {
	if yy >= 69 {
		return 1900 + yy
	}
	return 2000 + yy
}

// looksLikeDate guards the generic fallback: bare numbers like "185" are never dates.
func looksLikeDate(s string) bool {
	for _, r := range s {
		if r == '/' || r == '-' || r == '.' || r == ' ' || unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// ParseLooseDate accepts any of a broad set of common layouts without
// requiring a declared format.
func ParseLooseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
