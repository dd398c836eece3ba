package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds aggregate statistics for a numeric column. Missing values
// are skipped; with no present values Mean, Min and Max are NaN and Sum is 0.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes the summary for a numeric column.
func (d *Dataset) Summarize(name string) (Summary, error) {
	vals, err := d.Float64s(name)
	if err != nil {
		return Summary{}, err
	}

	present := Present(vals)
	s := Summary{Column: name, Count: len(present)}
	if len(present) == 0 {
		s.Mean, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN()
		return s, nil
	}

	s.Sum = floats.Sum(present)
	s.Mean = stat.Mean(present, nil)
	s.Min = floats.Min(present)
	s.Max = floats.Max(present)
	return s, nil
}

// Present returns the non-NaN values of vals in order.
func Present(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// ValueCount is one distinct value and its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts counts distinct values of a categorical, boolean or datetime
// column, most frequent first. Ties keep first-appearance order. Missing values are
// not counted.
func (d *Dataset) ValueCounts(name string) ([]ValueCount, error) {
	vals, err := d.Labels(name)
	if err != nil {
		return nil, err
	}

	pos := make(map[string]int)
	var counts []ValueCount
	for _, v := range vals {
		if v == nil {
			continue
		}
		if i, ok := pos[*v]; ok {
			counts[i].Count++
			continue
		}
		pos[*v] = len(counts)
		counts = append(counts, ValueCount{Value: *v, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, nil
}

// CorrelationMatrix is a symmetric matrix of Pearson coefficients.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Correlation computes pairwise Pearson correlation for the named numeric
// columns. Each pair uses only rows where both values are present. Pairs
// with fewer than two complete rows or zero variance are NaN.
func (d *Dataset) Correlation(names []string) (*CorrelationMatrix, error) {
	cols := make([][]float64, len(names))
	for i, n := range names {
		vals, err := d.Float64s(n)
		if err != nil {
			return nil, err
		}
		cols[i] = vals
	}

	m := &CorrelationMatrix{
		Columns: append([]string(nil), names...),
		Values:  make([][]float64, len(names)),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(names))
	}

	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairwiseCorrelation(cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

func pairwiseCorrelation(a, b []float64) float64 {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for k := range a {
		if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
			continue
		}
		x = append(x, a[k])
		y = append(y, b[k])
	}
	if len(x) < 2 {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}
