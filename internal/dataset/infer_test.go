package dataset

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// parseNumber Tests
// ----------------------------------------------------------------------------

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   float64
	}{
		{name: "integer", input: "42", wantOK: true, want: 42},
		{name: "negative decimal", input: "-3.5", wantOK: true, want: -3.5},
		{name: "leading decimal point", input: ".25", wantOK: true, want: 0.25},
		{name: "exponent", input: "1e3", wantOK: true, want: 1000},
		{name: "surrounding spaces", input: "  7 ", wantOK: true, want: 7},

		{name: "empty", input: "", wantOK: false},
		{name: "word", input: "apple", wantOK: false},
		{name: "hex literal", input: "0x1F", wantOK: false},
		{name: "underscore digits", input: "1_000", wantOK: false},
		{name: "thousands separator", input: "1,000", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// parseTime Tests
// ----------------------------------------------------------------------------

func TestParseTime(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15 08:30:00", time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)},
		{"03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"3/5/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"Mar 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"3/15/24", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseTime(tt.input)
			if !ok {
				t.Fatalf("parseTime(%q) failed", tt.input)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if _, ok := parseTime("not a date"); ok {
		t.Error("parseTime accepted free text")
	}
}

func TestParseTime_TwoDigitYearPivot(t *testing.T) {
	got, ok := parseTime("1/1/95")
	if !ok {
		t.Fatal("parseTime(1/1/95) failed")
	}
	if got.Year() != 1995 {
		t.Errorf("year = %d, want 1995", got.Year())
	}
}

// ----------------------------------------------------------------------------
// inferKind Tests
// ----------------------------------------------------------------------------

func TestInferKind(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  Kind
	}{
		{"all numbers", []string{"1", "2.5", "-3"}, KindNumeric},
		{"numbers with missing", []string{"1", "", "NA", "4"}, KindNumeric},
		{"all missing", []string{"", "", "NaN"}, KindNumeric},
		{"no rows", nil, KindCategorical},
		{"booleans", []string{"True", "false", "TRUE"}, KindBoolean},
		{"booleans with missing", []string{"True", "", "False"}, KindBoolean},
		{"dates", []string{"2024-01-01", "2024-02-01", ""}, KindDatetime},
		{"words", []string{"north", "south"}, KindCategorical},
		{"mixed numbers and words", []string{"1", "two", "3"}, KindCategorical},
		{"mixed dates and words", []string{"2024-01-01", "soon"}, KindCategorical},
		{"mixed numbers and dates", []string{"2024-01-01", "12"}, KindCategorical},
		{"zero and one", []string{"0", "1", "1"}, KindNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferKind(tt.cells); got != tt.want {
				t.Errorf("inferKind(%q) = %s, want %s", tt.cells, got, tt.want)
			}
		})
	}
}
