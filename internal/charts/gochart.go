package charts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"

	"github.com/JonMunkholm/vizboard/internal/dataset"
)

// otherLabel collects categories past the display limit.
const otherLabel = "Other"

// missingLabel names rows whose color column is empty.
const missingLabel = "(missing)"

func rendererFor(format string) chart.RendererProvider {
	if format == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

func drawPie(_ context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	col := sel.Column("names")
	counts, err := ds.ValueCounts(col)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return nil, ErrNoData
	}

	title := "Pie Chart for " + col
	values, truncated := pieValues(counts, opts.MaxCategories)

	pie := chart.PieChart{
		Title:  title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(rendererFor(opts.Format), &buf); err != nil {
		return nil, fmt.Errorf("render pie: %w", err)
	}

	img := &Image{Title: title, Data: buf.Bytes()}
	if truncated {
		img.Caption = truncatedCaption(len(values)-1, len(counts))
	}
	return img, nil
}

// pieValues converts value counts to slices, folding everything past the
// first max-1 into a single "Other" slice.
func pieValues(counts []dataset.ValueCount, max int) ([]chart.Value, bool) {
	truncated := len(counts) > max
	keep := counts
	if truncated {
		keep = counts[:max-1]
	}

	values := make([]chart.Value, 0, len(keep)+1)
	for _, c := range keep {
		values = append(values, chart.Value{Label: c.Value, Value: float64(c.Count)})
	}
	if truncated {
		var rest int
		for _, c := range counts[max-1:] {
			rest += c.Count
		}
		values = append(values, chart.Value{Label: otherLabel, Value: float64(rest)})
	}
	return values, truncated
}

// scatterGroup is one colored series of the go-chart scatter.
type scatterGroup struct {
	name   string
	xs, ys []float64
}

// groupByColor splits finite (x, y) rows by the color column. Without a
// color column every row lands in one group named after y.
func groupByColor(ds *dataset.Dataset, xCol, yCol, colorCol string, maxGroups, maxPoints int) ([]*scatterGroup, error) {
	xs, err := ds.Float64s(xCol)
	if err != nil {
		return nil, err
	}
	ys, err := ds.Float64s(yCol)
	if err != nil {
		return nil, err
	}

	var colors []*string
	if colorCol != "" {
		if colors, err = ds.Labels(colorCol); err != nil {
			return nil, err
		}
	}

	index := make(map[string]*scatterGroup)
	var groups []*scatterGroup
	points := 0
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}

		name := yCol
		if colors != nil {
			name = missingLabel
			if colors[i] != nil {
				name = *colors[i]
			}
		}

		g, ok := index[name]
		if !ok {
			if len(groups) >= maxGroups-1 && colors != nil {
				name = otherLabel
				g = index[name]
			}
			if g == nil {
				g = &scatterGroup{name: name}
				index[name] = g
				groups = append(groups, g)
			}
		}
		g.xs = append(g.xs, xs[i])
		g.ys = append(g.ys, ys[i])

		if points++; points == maxPoints {
			break
		}
	}
	return groups, nil
}

// axisRange pads a degenerate range so go-chart can scale it.
func axisRange(groups []*scatterGroup, pick func(*scatterGroup) []float64) *chart.ContinuousRange {
	var all []float64
	for _, g := range groups {
		all = append(all, pick(g)...)
	}
	lo, hi := floats.Min(all), floats.Max(all)
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func drawAltScatter(_ context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	xCol, yCol, colorCol := sel.Column("x"), sel.Column("y"), sel.Column("color")
	groups, err := groupByColor(ds, xCol, yCol, colorCol, opts.MaxCategories, opts.MaxPoints)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNoData
	}

	title := xCol + " vs " + yCol
	if colorCol != "" {
		title += " by " + colorCol
	}

	series := make([]chart.Series, len(groups))
	for i, g := range groups {
		series[i] = chart.ContinuousSeries{
			Name: g.name,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    3,
				DotColor:    chart.GetDefaultColor(i),
			},
			XValues: g.xs,
			YValues: g.ys,
		}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  xCol,
			Range: axisRange(groups, func(g *scatterGroup) []float64 { return g.xs }),
		},
		YAxis: chart.YAxis{
			Name:  yCol,
			Range: axisRange(groups, func(g *scatterGroup) []float64 { return g.ys }),
		},
		Series: series,
	}
	if colorCol != "" {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	var buf bytes.Buffer
	if err := graph.Render(rendererFor(opts.Format), &buf); err != nil {
		return nil, fmt.Errorf("render scatter: %w", err)
	}
	return &Image{Title: title, Data: buf.Bytes()}, nil
}
