// Package itdate parses the Italian, locale-formatted dates found in the
// time-tracking exports ("31/dicembre/2024", "05/03/2025").
package itdate

import (
	"strings"
	"time"

	"github.com/zulandar/consuntivo/internal/lenient"
)

// Fallback is returned for any input that cannot be parsed. It lies far in
// the future so unparseable entries sort after every real date.
var Fallback = time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)

// months maps lowercase Italian month names to calendar months.
var months = map[string]time.Month{
	"gennaio":   time.January,
	"febbraio":  time.February,
	"marzo":     time.March,
	"aprile":    time.April,
	"maggio":    time.May,
	"giugno":    time.June,
	"luglio":    time.July,
	"agosto":    time.August,
	"settembre": time.September,
	"ottobre":   time.October,
	"novembre":  time.November,
	"dicembre":  time.December,
}

// maxSeconds bounds parsed dates to 100,000,000 days either side of the
// Unix epoch, the range of an ECMAScript time value.
const maxSeconds = 8.64e12

// Parse converts "day/month-name/year" into a UTC date. The month name is
// matched case-insensitively. Out-of-range days roll over the way
// time.Date normalizes them, and years 0-99 are read as 1900-1999. Empty
// input, a segment count other than three, an unknown month, a non-numeric
// day or a non-numeric year (after leading zeros are stripped) all yield
// Fallback, as does a date outside the representable range.
func Parse(s string) time.Time {
	if s == "" {
		return Fallback
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Fallback
	}

	month, ok := months[strings.ToLower(parts[1])]
	if !ok {
		return Fallback
	}
	day, ok := lenient.Int(parts[0])
	if !ok {
		return Fallback
	}
	year, ok := lenient.Int(strings.TrimLeft(parts[2], "0"))
	if !ok {
		return Fallback
	}
	// Reject before time.Date so huge components cannot wrap around.
	if year < -maxYear || year > maxYear || day < -maxDays || day > maxDays {
		return Fallback
	}
	if year >= 0 && year <= 99 {
		year += 1900
	}
	t := time.Date(int(year), month, int(day), 0, 0, 0, 0, time.UTC)
	if u := t.Unix(); u < -maxSeconds || u > maxSeconds {
		return Fallback
	}
	return t
}

const (
	maxYear = 300000
	maxDays = 2e8
)

// ParsePtr is Parse for nullable fields; nil yields Fallback.
func ParsePtr(s *string) time.Time {
	if s == nil {
		return Fallback
	}
	return Parse(*s)
}

// IsFallback reports whether t is the Fallback sentinel.
func IsFallback(t time.Time) bool {
	return t.Equal(Fallback)
}

// numericLayout is the dd/MM/yyyy layout used by activity reports.
const numericLayout = "02/01/2006"

// ParseNumeric parses a "dd/MM/yyyy" date. Single-digit days and months
// are accepted. ok is false for anything else.
func ParseNumeric(s string) (t time.Time, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, bad := atoiStrict(parts[0])
	if bad || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, bad := atoiStrict(parts[1])
	if bad || month < 1 || month > 12 {
		return time.Time{}, false
	}
	year, bad := atoiStrict(parts[2])
	if bad || len(parts[2]) != 4 {
		return time.Time{}, false
	}
	t = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject dates time.Date had to normalize, such as 31/02.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// FormatNumeric renders t as dd/MM/yyyy.
func FormatNumeric(t time.Time) string {
	return t.Format(numericLayout)
}

// atoiStrict parses an all-digit string; failed is true otherwise.
func atoiStrict(s string) (n int, failed bool) {
	if s == "" || len(s) > 4 {
		return 0, true
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, true
		}
		n = n*10 + int(c-'0')
	}
	return n, false
}
