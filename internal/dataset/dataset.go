// Package dataset turns an uploaded CSV file into typed, column-oriented
// data that the chart renderers and KPI summaries read from.
//
// Columns are stored in a dataframe-go DataFrame. Numeric columns become
// float64 series (missing cells are NaN), datetime columns become time
// series, and categorical and boolean columns become string series.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
	KindBoolean     Kind = "boolean"
)

var (
	// ErrColumnNotFound is returned when a column name is not in the dataset.
	ErrColumnNotFound = errors.New("column not found")
	// ErrWrongKind is returned when a column exists but has the wrong kind
	// for the requested accessor.
	ErrWrongKind = errors.New("wrong column kind")
)

// Column describes one column of a dataset.
type Column struct {
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Missing int    `json:"missing"`
	// Integral is set on numeric columns whose values are all whole numbers.
	Integral bool `json:"integral,omitempty"`
}

// Dataset is an immutable, parsed CSV upload.
type Dataset struct {
	name     string
	encoding Encoding
	size     int
	rows     int
	columns  []Column
	index    map[string]int
	frame    *dataframe.DataFrame
	loadedAt time.Time
}

// Name returns the uploaded file name.
func (d *Dataset) Name() string { return d.name }

// Encoding returns the encoding the file was decoded with.
func (d *Dataset) Encoding() Encoding { return d.encoding }

// Size returns the raw upload size in bytes.
func (d *Dataset) Size() int { return d.size }

// Rows returns the number of data rows, excluding the header.
func (d *Dataset) Rows() int { return d.rows }

// LoadedAt returns when the dataset was parsed.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Frame exposes the underlying DataFrame. Callers must not mutate it.
func (d *Dataset) Frame() *dataframe.DataFrame { return d.frame }

// Columns returns the columns in file order.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// ColumnsOfKind returns the names of columns matching any of kinds, in file order.
func (d *Dataset) ColumnsOfKind(kinds ...Kind) []string {
	var names []string
	for _, c := range d.columns {
		for _, k := range kinds {
			if c.Kind == k {
				names = append(names, c.Name)
				break
			}
		}
	}
	return names
}

// NumericColumns returns the numeric column names.
func (d *Dataset) NumericColumns() []string { return d.ColumnsOfKind(KindNumeric) }

// CategoricalColumns returns the categorical column names.
func (d *Dataset) CategoricalColumns() []string { return d.ColumnsOfKind(KindCategorical) }

// DatetimeColumns returns the datetime column names.
func (d *Dataset) DatetimeColumns() []string { return d.ColumnsOfKind(KindDatetime) }

func (d *Dataset) series(name string, want ...Kind) (dataframe.Series, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	col := d.columns[i]
	for _, k := range want {
		if col.Kind == k {
			return d.frame.Series[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s is %s", ErrWrongKind, name, col.Kind)
}

// Float64s returns the values of a numeric column. Missing values are NaN.
// The returned slice is shared and must not be modified.
func (d *Dataset) Float64s(name string) ([]float64, error) {
	s, err := d.series(name, KindNumeric)
	if err != nil {
		return nil, err
	}
	return s.(*dataframe.SeriesFloat64).Values, nil
}

// Strings returns a copy of the values of a categorical or boolean column.
// Missing values are nil.
func (d *Dataset) Strings(name string) ([]*string, error) {
	s, err := d.series(name, KindCategorical, KindBoolean)
	if err != nil {
		return nil, err
	}
	ss := s.(*dataframe.SeriesString)
	out := make([]*string, ss.NRows())
	for row := range out {
		out[row] = stringAt(ss, row)
	}
	return out, nil
}

// Labels returns the values of a column that can act as a category:
// categorical, boolean or datetime. Datetimes are rendered with FormatTime,
// so date columns group by their text the way they appear in the file.
// Missing values are nil.
func (d *Dataset) Labels(name string) ([]*string, error) {
	s, err := d.series(name, KindCategorical, KindBoolean, KindDatetime)
	if err != nil {
		return nil, err
	}
	ts, ok := s.(*dataframe.SeriesTime)
	if !ok {
		return d.Strings(name)
	}
	out := make([]*string, len(ts.Values))
	for row, t := range ts.Values {
		if t != nil {
			v := FormatTime(*t)
			out[row] = &v
		}
	}
	return out, nil
}

func stringAt(s *dataframe.SeriesString, row int) *string {
	v, ok := s.Value(row).(string)
	if !ok {
		return nil
	}
	return &v
}

// Times returns the values of a datetime column. Missing values are nil.
// The returned slice must not be modified.
func (d *Dataset) Times(name string) ([]*time.Time, error) {
	s, err := d.series(name, KindDatetime)
	if err != nil {
		return nil, err
	}
	return s.(*dataframe.SeriesTime).Values, nil
}

// Header returns the column names in file order.
func (d *Dataset) Header() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Head returns up to n rows formatted for display. Missing cells are empty.
func (d *Dataset) Head(n int) [][]string {
	if n > d.rows {
		n = d.rows
	}
	if n < 0 {
		n = 0
	}

	out := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(d.columns))
		for c := range d.columns {
			row[c] = d.cell(c, r)
		}
		out[r] = row
	}
	return out
}

func (d *Dataset) cell(col, row int) string {
	switch s := d.frame.Series[col].(type) {
	case *dataframe.SeriesFloat64:
		return FormatNumber(s.Values[row], d.columns[col].Integral)
	case *dataframe.SeriesString:
		if v := stringAt(s, row); v != nil {
			return *v
		}
	case *dataframe.SeriesTime:
		if v := s.Values[row]; v != nil {
			return FormatTime(*v)
		}
	}
	return ""
}

// FormatNumber renders a cell value. Whole-number columns print without a
// fractional part.
func FormatNumber(v float64, integral bool) string {
	if math.IsNaN(v) {
		return ""
	}
	if integral && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatTime renders a datetime cell, dropping the clock when it is midnight.
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
