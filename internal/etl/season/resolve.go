// Package season normalizes the season representations the providers use
// into the canonical start year. fbref labels a season with a compact
// 4-digit code ("1920" for 2019/20) or a span ("2019-2020"); understat
// uses the bare first calendar year.
package season

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind selects the source-specific decoding preference.
type Kind string

const (
	KindFBref     Kind = "fbref"
	KindUnderstat Kind = "understat"
)

// centuryPivot decides the century of a two-digit compact year: values
// below it are 2000s, the rest 1900s.
const centuryPivot = 50

var yearRunRegex = regexp.MustCompile(`\d{4}`)

// ResolveStartYear decodes a raw season value into the first calendar
// year of the season. The bool result is false when no 4-digit run is
// present; callers must exclude or flag such rows instead of letting an
// unresolved season leak into joins.
func ResolveStartYear(raw string, kind Kind) (int, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, false
	}

	runs := yearRunRegex.FindAllString(value, -1)
	if len(runs) == 0 {
		return 0, false
	}

	// Span form: two 4-digit runs, the first is the start year.
	if len(runs) >= 2 {
		return mustAtoi(runs[0]), true
	}

	// A lone 4-digit value is ambiguous between a compact code and a
	// calendar year. Compact codes are two consecutive 2-digit halves
	// ("1920", "2223"); anything else is read as a calendar year.
	if kind != KindUnderstat && len(value) == 4 && runs[0] == value {
		if year, ok := decodeCompact(value); ok {
			return year, true
		}
	}

	return mustAtoi(runs[0]), true
}

// CompactCode is the inverse of the compact decoding: 2019 -> "1920".
func CompactCode(startYear int) string {
	first := startYear % 100
	second := (startYear + 1) % 100
	return pad2(first) + pad2(second)
}

func decodeCompact(value string) (int, bool) {
	first := mustAtoi(value[:2])
	second := mustAtoi(value[2:])
	if (first+1)%100 != second {
		return 0, false
	}
	if first < centuryPivot {
		return 2000 + first, true
	}
	return 1900 + first, true
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

func mustAtoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
