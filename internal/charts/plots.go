package charts

import (
	"context"
	"image/color"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/JonMunkholm/vizboard/internal/dataset"
)

// rotateLabelsAbove is the category count past which x tick labels are slanted.
const rotateLabelsAbove = 8

// barAggregate groups rows by the x column in first-appearance order. A
// numeric y is summed per group; any other y counts rows where y is present.
func barAggregate(ds *dataset.Dataset, xCol, yCol string) ([]category, string, error) {
	xs, err := ds.Labels(xCol)
	if err != nil {
		return nil, "", err
	}

	yc, _ := ds.Column(yCol)
	var (
		nums   []float64
		labels []*string
		yLabel string
	)
	if yc.Kind == dataset.KindNumeric {
		nums, err = ds.Float64s(yCol)
		yLabel = "sum of " + yCol
	} else {
		labels, err = ds.Labels(yCol)
		yLabel = "count of " + yCol
	}
	if err != nil {
		return nil, "", err
	}

	pos := make(map[string]int)
	var cats []category
	for i, x := range xs {
		if x == nil {
			continue
		}
		j, ok := pos[*x]
		if !ok {
			j = len(cats)
			pos[*x] = j
			cats = append(cats, category{Label: *x})
		}
		switch {
		case nums != nil:
			if finite(nums[i]) {
				cats[j].Value += nums[i]
			}
		case labels[i] != nil:
			cats[j].Value++
		}
	}
	return cats, yLabel, nil
}

func drawBar(_ context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	xCol, yCol := sel.Column("x"), sel.Column("y")
	cats, yLabel, err := barAggregate(ds, xCol, yCol)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, ErrNoData
	}

	total := len(cats)
	cats, truncated := topCategories(cats, opts.MaxCategories)

	title := "Bar Chart for " + xCol + " vs " + yCol
	p := newPlot(title, xCol, yLabel)

	vals := make(plotter.Values, len(cats))
	names := make([]string, len(cats))
	for i, c := range cats {
		vals[i] = c.Value
		names[i] = c.Label
	}

	bars, err := plotter.NewBarChart(vals, barWidth(opts.Width, len(cats)))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars, plotter.NewGrid())
	p.NominalX(names...)
	if len(names) > rotateLabelsAbove {
		slantTicks(p)
	}

	img, err := encodePlot(p, title, opts)
	if err != nil {
		return nil, err
	}
	if truncated {
		img.Caption = truncatedCaption(len(cats), total)
	}
	return img, nil
}

// barWidth spreads bars across roughly 70% of the canvas width.
func barWidth(widthPx, n int) vg.Length {
	w := float64(widthPx) * 0.7 / float64(n) * vg.Inch.Points() / pixelsPerInch
	w = math.Max(2, math.Min(w, 48))
	return vg.Points(w)
}

func slantTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// drawLine renders y against x in data order; fill shades the area under the line.
func drawLine(fill bool) DrawFunc {
	return func(_ context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
		xCol, yCol := sel.Column("x"), sel.Column("y")
		xs, ys, err := numericPairs(ds, xCol, yCol, opts.MaxPoints)
		if err != nil {
			return nil, err
		}
		if len(xs) == 0 {
			return nil, ErrNoData
		}

		kind := "Line Chart"
		if fill {
			kind = "Area Chart"
		}
		title := kind + " for " + xCol + " vs " + yCol
		p := newPlot(title, xCol, yCol)

		line, err := plotter.NewLine(toXYs(xs, ys))
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(0)
		if fill {
			line.FillColor = translucent(plotutil.Color(0), 0x66)
		}

		p.Add(plotter.NewGrid(), line)
		return encodePlot(p, title, opts)
	}
}

func drawScatter(_ context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	xCol, yCol := sel.Column("x"), sel.Column("y")
	xs, ys, err := numericPairs(ds, xCol, yCol, opts.MaxPoints)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, ErrNoData
	}

	title := "Scatter Plot: " + xCol + " vs " + yCol
	p := newPlot(title, xCol, yCol)

	sc, err := plotter.NewScatter(toXYs(xs, ys))
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = plotutil.Color(0)
	sc.GlyphStyle.Radius = vg.Points(2.5)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(plotter.NewGrid(), sc)
	return encodePlot(p, title, opts)
}

// sturgesBins returns ceil(log2(n)) + 1.
func sturgesBins(n int) int {
	if n < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// histogramBins counts values into n equal-width bins spanning their range.
func histogramBins(vals []float64, n int) []plotter.HistogramBin {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	lo, hi := floats.Min(sorted), floats.Max(sorted)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := make([]float64, n+1)
	floats.Span(dividers, lo, hi)
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	bins := make([]plotter.HistogramBin, n)
	for i := range bins {
		bins[i] = plotter.HistogramBin{Min: dividers[i], Max: dividers[i+1], Weight: counts[i]}
	}
	bins[n-1].Max = hi
	return bins
}

func drawHistogram(_ context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	col := sel.Column("column")
	vals, err := finiteValues(ds, col)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, ErrNoData
	}

	n := sel.Param("bins")
	if n <= 0 {
		n = sturgesBins(len(vals))
	}
	bins := histogramBins(vals, n)

	title := "Histogram for " + col
	p := newPlot(title, col, "count")

	hist := &plotter.Histogram{
		Bins:      bins,
		Width:     bins[0].Max - bins[0].Min,
		FillColor: plotutil.Color(0),
		LineStyle: plotter.DefaultLineStyle,
	}
	hist.LineStyle.Color = color.White

	p.Add(plotter.NewGrid(), hist)
	return encodePlot(p, title, opts)
}

func drawBox(_ context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	col := sel.Column("column")
	vals, err := finiteValues(ds, col)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, ErrNoData
	}

	title := "Box Plot for " + col
	p := newPlot(title, "", col)

	box, err := plotter.NewBoxPlot(vg.Points(60), 0, plotter.Values(vals))
	if err != nil {
		return nil, err
	}
	box.FillColor = plotutil.Color(0)

	p.Add(plotter.NewGrid(), box)
	p.NominalX(col)
	return encodePlot(p, title, opts)
}

type timePoint struct {
	t time.Time
	v float64
}

func drawTimeSeries(_ context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	tCol, vCol := sel.Column("time"), sel.Column("value")
	times, err := ds.Times(tCol)
	if err != nil {
		return nil, err
	}
	vals, err := ds.Float64s(vCol)
	if err != nil {
		return nil, err
	}

	pts := make([]timePoint, 0, len(times))
	for i, t := range times {
		if t == nil || !finite(vals[i]) {
			continue
		}
		pts = append(pts, timePoint{t: *t, v: vals[i]})
		if len(pts) == opts.MaxPoints {
			break
		}
	}
	if len(pts) == 0 {
		return nil, ErrNoData
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].t.Before(pts[j].t) })

	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X = float64(pt.t.Unix())
		xys[i].Y = pt.v
	}

	title := "Time Series of " + vCol + " by " + tCol
	p := newPlot(title, tCol, vCol)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(1)

	p.Add(plotter.NewGrid(), line)
	return encodePlot(p, title, opts)
}

// translucent returns c with alpha a, non-premultiplied.
func translucent(c color.Color, a uint8) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = a
	return n
}

func toXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}
