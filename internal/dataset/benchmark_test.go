package dataset

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Cell Parsing Benchmarks
// ============================================================================

// BenchmarkParseNumber benchmarks numeric cell parsing.
// Every cell of every column goes through it during kind inference.
func BenchmarkParseNumber(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"1e6",
		"  999.99  ",
		"NaN",
		"North",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			parseNumber(tc)
		}
	}
}

// BenchmarkParseTime benchmarks datetime cell parsing across layouts.
func BenchmarkParseTime(b *testing.B) {
	testCases := []string{
		"2024-01-15",
		"2024-01-15 10:30:00",
		"01/15/2024",
		"1/5/24",
		"not a date",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			parseTime(tc)
		}
	}
}

// BenchmarkParseTime_ISO benchmarks the most common layout.
func BenchmarkParseTime_ISO(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		parseTime("2024-01-15")
	}
}

// BenchmarkInferKind benchmarks kind inference on a large categorical
// column, the slowest case since every parser is tried.
func BenchmarkInferKind(b *testing.B) {
	cells := make([]string, 10000)
	for i := range cells {
		cells[i] = fmt.Sprintf("category-%d", i%40)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inferKind(cells)
	}
}

// ============================================================================
// Load Benchmarks
// ============================================================================

func benchmarkCSV(rows int) []byte {
	var sb strings.Builder
	sb.WriteString("region,product,units,price,date,active\n")
	regions := []string{"North", "South", "East", "West"}
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "%s,item-%d,%d,%.2f,2024-01-%02d,%t\n",
			regions[i%len(regions)], i%25, i%100, float64(i%1000)/7, i%28+1, i%2 == 0)
	}
	return []byte(sb.String())
}

// BenchmarkLoad benchmarks a full upload parse: decode, CSV read, inference
// and DataFrame construction.
func BenchmarkLoad(b *testing.B) {
	for _, rows := range []int{1000, 50000} {
		data := benchmarkCSV(rows)
		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Load(context.Background(), "bench.csv", data, LoadOptions{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkDecode_Latin1 benchmarks the fallback decoding path.
func BenchmarkDecode_Latin1(b *testing.B) {
	data := []byte(strings.Repeat("caf\xe9,na\xefve,12\n", 2000))

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Decode(data)
	}
}

// BenchmarkSummarize benchmarks the KPI statistics on a numeric column.
func BenchmarkSummarize(b *testing.B) {
	ds, err := Load(context.Background(), "bench.csv", benchmarkCSV(50000), LoadOptions{})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ds.Summarize("price"); err != nil {
			b.Fatal(err)
		}
	}
}
