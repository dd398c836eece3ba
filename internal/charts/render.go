package charts

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/JonMunkholm/vizboard/internal/dataset"
)

// pixelsPerInch matches the default DPI of gonum/plot's raster canvas.
const pixelsPerInch = 96

// Render draws one chart. The dataset must satisfy the chart's requirements.
func Render(ctx context.Context, def Definition, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !Available(def, ds) {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, def.Kind)
	}

	opts = opts.withDefaults()
	if opts.Format != FormatPNG && opts.Format != FormatSVG {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, opts.Format)
	}

	img, err := def.Draw(ctx, ds, sel, opts)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", def.Kind, err)
	}
	img.Kind = def.Kind
	img.Format = opts.Format
	if img.Title == "" && def.Title != nil {
		img.Title = def.Title(sel)
	}
	return img, nil
}

// encodePlot writes a gonum plot in the requested format.
func encodePlot(p *plot.Plot, title string, opts Options) (*Image, error) {
	w := vg.Length(opts.Width) * vg.Inch / pixelsPerInch
	h := vg.Length(opts.Height) * vg.Inch / pixelsPerInch

	wt, err := p.WriterTo(w, h, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("create %s writer: %w", opts.Format, err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %s: %w", opts.Format, err)
	}

	return &Image{Title: title, Data: buf.Bytes()}, nil
}

// newPlot returns a plot with the title and axis labels set.
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// numericPairs returns the (x, y) rows where both values are finite, in data
// order, capped at max points.
func numericPairs(ds *dataset.Dataset, xCol, yCol string, max int) ([]float64, []float64, error) {
	xs, err := ds.Float64s(xCol)
	if err != nil {
		return nil, nil, err
	}
	ys, err := ds.Float64s(yCol)
	if err != nil {
		return nil, nil, err
	}

	outX := make([]float64, 0, len(xs))
	outY := make([]float64, 0, len(ys))
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
		if len(outX) == max {
			break
		}
	}
	return outX, outY, nil
}

// finiteValues returns the finite values of a numeric column.
func finiteValues(ds *dataset.Dataset, col string) ([]float64, error) {
	vals, err := ds.Float64s(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if finite(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// category is an aggregated value for one distinct label.
type category struct {
	Label string
	Value float64
}

// topCategories keeps the max largest categories, preserving their original
// order, and reports whether any were dropped.
func topCategories(cats []category, max int) ([]category, bool) {
	if len(cats) <= max {
		return cats, false
	}

	idx := make([]int, len(cats))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return cats[idx[a]].Value > cats[idx[b]].Value
	})
	idx = idx[:max]
	sort.Ints(idx)

	out := make([]category, len(idx))
	for i, j := range idx {
		out[i] = cats[j]
	}
	return out, true
}

// valueCountCategories converts value counts into categories.
func valueCountCategories(counts []dataset.ValueCount) []category {
	cats := make([]category, len(counts))
	for i, c := range counts {
		cats[i] = category{Label: c.Value, Value: float64(c.Count)}
	}
	return cats
}

func truncatedCaption(shown, total int) string {
	return fmt.Sprintf("Showing the %d largest of %d categories.", shown, total)
}
