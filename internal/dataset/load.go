package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

var (
	// ErrEmptyFile is returned when the upload has no header row.
	ErrEmptyFile = errors.New("empty file")
	// ErrInvalidCSV wraps tokenizer failures and ragged rows.
	ErrInvalidCSV = errors.New("invalid csv")
	// ErrTooManyRows is returned when the row limit is exceeded.
	ErrTooManyRows = errors.New("too many rows")
	// ErrEncoding is returned when the bytes cannot be decoded as text.
	ErrEncoding = errors.New("encoding error")
)

// cancelCheckInterval is how many rows are read between context checks.
const cancelCheckInterval = 1000

// LoadOptions controls parsing.
type LoadOptions struct {
	// MaxRows caps the number of data rows; zero means unlimited.
	MaxRows int
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// Load decodes and parses a CSV upload into a Dataset.
func Load(ctx context.Context, name string, data []byte, opts LoadOptions) (*Dataset, error) {
	text, enc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, ErrEmptyFile
	}

	header, records, err := readRecords(ctx, text, opts)
	if err != nil {
		return nil, err
	}

	names := dedupeHeader(header)
	ds := &Dataset{
		name:     name,
		encoding: enc,
		size:     len(data),
		rows:     len(records),
		columns:  make([]Column, len(names)),
		index:    make(map[string]int, len(names)),
		loadedAt: time.Now(),
	}

	series := make([]dataframe.Series, len(names))
	cells := make([]string, len(records))
	for c, colName := range names {
		for r, rec := range records {
			cells[r] = rec[c]
		}

		kind := inferKind(cells)
		col := Column{Name: colName, Kind: kind}
		series[c], col.Missing, col.Integral = buildSeries(colName, kind, cells)

		ds.columns[c] = col
		ds.index[colName] = c
	}

	ds.frame = dataframe.NewDataFrame(series...)
	return ds, nil
}

// readRecords tokenizes the text, returning the header and the data rows
// padded to the header width.
func readRecords(ctx context.Context, text []byte, opts LoadOptions) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	width := len(header)
	var records [][]string
	for {
		if len(records)%cancelCheckInterval == 0 && ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}

		if len(rec) > width {
			line, _ := r.FieldPos(0)
			return nil, nil, fmt.Errorf("%w: expected %d fields in line %d, saw %d",
				ErrInvalidCSV, width, line, len(rec))
		}
		for len(rec) < width {
			rec = append(rec, "")
		}

		records = append(records, rec)
		if opts.MaxRows > 0 && len(records) > opts.MaxRows {
			return nil, nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, opts.MaxRows)
		}
	}

	return header, records, nil
}

// dedupeHeader names blank headers "Unnamed: i" and suffixes repeats with
// ".1", ".2" and so on, skipping any suffix that collides with a real name.
func dedupeHeader(header []string) []string {
	names := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		names[i] = h
	}

	for i, base := range names {
		name := base
		for taken[name] {
			counts[base]++
			name = base + "." + strconv.Itoa(counts[base])
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// buildSeries converts raw cells into a typed series, returning the missing
// count and, for numeric columns, whether every value is whole. Values go
// through the series constructors so the frame tracks its own nil counts.
func buildSeries(name string, kind Kind, cells []string) (dataframe.Series, int, bool) {
	missing := 0
	si := &dataframe.SeriesInit{Capacity: len(cells)}

	switch kind {
	case KindNumeric:
		vals := make([]float64, len(cells))
		for i, c := range cells {
			if isMissing(c) {
				vals[i] = math.NaN()
				missing++
				continue
			}
			v, _ := parseNumber(c)
			vals[i] = v
		}
		return dataframe.NewSeriesFloat64(name, si, vals), missing, isIntegral(vals)

	case KindDatetime:
		vals := make([]interface{}, len(cells))
		for i, c := range cells {
			if isMissing(c) {
				missing++
				continue
			}
			if t, ok := parseTime(c); ok {
				vals[i] = t
			}
		}
		return dataframe.NewSeriesTime(name, si, vals...), missing, false

	case KindBoolean:
		vals := make([]interface{}, len(cells))
		for i, c := range cells {
			if isMissing(c) {
				missing++
				continue
			}
			if b, _ := parseBool(c); b {
				vals[i] = "True"
			} else {
				vals[i] = "False"
			}
		}
		return dataframe.NewSeriesString(name, si, vals...), missing, false

	default:
		vals := make([]interface{}, len(cells))
		for i, c := range cells {
			if isMissing(c) {
				missing++
				continue
			}
			vals[i] = c
		}
		return dataframe.NewSeriesString(name, si, vals...), missing, false
	}
}
