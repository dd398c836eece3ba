package dataset

// infer.go decides the kind of each column from its raw cell text.
//
// The rules mirror what a dataframe library reports after reading a CSV
// without hints: a column is numeric when every present cell parses as a
// float, boolean when every present cell is True/False, datetime when every
// present cell matches a known date layout, and categorical otherwise.
// Columns with no present cells are numeric (all NaN).

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// naValues are the cell texts read as missing.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are
// assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	fourDigitYearLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02 15:04:05",
		"2006/01/02",
		"01/02/2006 15:04:05",
		"01/02/2006 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"01/02/2006",
		"1/2/2006",
		"2006.01.02",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"02-Jan-2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06",
	}
)

// isMissing reports whether a raw cell should be treated as a missing value.
func isMissing(s string) bool {
	return naValues[strings.TrimSpace(s)]
}

// parseNumber parses a cell as a float. Hex and underscore forms that
// strconv accepts are rejected since CSV readers do not treat them as numbers.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "0x") || strings.Contains(s, "_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseBool accepts the spellings a CSV reader maps to a boolean dtype.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// parseTime tries every known layout, four-digit years first.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// inferKind classifies one column from its raw cells. A column with no rows
// is categorical; one whose cells are all missing is numeric.
func inferKind(cells []string) Kind {
	if len(cells) == 0 {
		return KindCategorical
	}

	numeric, boolean, datetime := true, true, true
	present := 0

	for _, c := range cells {
		if isMissing(c) {
			continue
		}
		present++
		if numeric {
			if _, ok := parseNumber(c); !ok {
				numeric = false
			}
		}
		if boolean {
			if _, ok := parseBool(c); !ok {
				boolean = false
			}
		}
		if datetime {
			if _, ok := parseTime(c); !ok {
				datetime = false
			}
		}
		if !numeric && !boolean && !datetime {
			return KindCategorical
		}
	}

	switch {
	case present == 0 || numeric:
		return KindNumeric
	case boolean:
		return KindBoolean
	case datetime:
		return KindDatetime
	default:
		return KindCategorical
	}
}

// isIntegral reports whether every finite value is a whole number.
func isIntegral(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}
