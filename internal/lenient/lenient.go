// Package lenient parses numbers out of loosely formatted operational text.
//
// Upstream time-tracking exports carry values such as "7,5", " 12h" or
// "2.3" in fields that are nominally numeric. The parsers here accept the
// longest numeric prefix of the input and report failure instead of
// returning an error, so callers can degrade to a documented fallback.
package lenient

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

const infinity = "Infinity"

// Float parses the longest leading decimal number in s, ignoring leading
// whitespace. It returns NaN when s does not start with a number.
func Float(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := floatPrefix(s)
	if end == 0 {
		return math.NaN()
	}
	prefix := s[:end]
	switch strings.TrimLeft(prefix, "+-") {
	case infinity:
		if strings.HasPrefix(prefix, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	// ParseFloat returns ±Inf alongside ErrRange, which is the value we want.
	v, _ := strconv.ParseFloat(prefix, 64)
	return v
}

// FloatOr is Float with NaN replaced by def.
func FloatOr(s string, def float64) float64 {
	v := Float(s)
	if math.IsNaN(v) {
		return def
	}
	return v
}

// Int parses the longest leading base-10 integer in s, ignoring leading
// whitespace. ok is false when s does not start with a digit (after an
// optional sign) or the value does not fit in an int64.
func Int(s string) (n int64, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Integer is Int without the int64 bound: the leading integer of s as a
// float64, NaN when there is none. Digits beyond float64 precision round
// and very long runs become ±Inf.
func Integer(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return math.NaN()
	}
	v, _ := strconv.ParseFloat(s[:i], 64)
	return v
}

// floatPrefix returns the length of the numeric prefix of s, or 0.
func floatPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], infinity) {
		return i + len(infinity)
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}

	// Exponent only counts when at least one digit follows it.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
