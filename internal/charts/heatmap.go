package charts

import (
	"context"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"

	"github.com/JonMunkholm/vizboard/internal/dataset"
)

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row 0 of the
// matrix is drawn at the top.
type corrGrid struct {
	m *dataset.CorrelationMatrix
}

func (g corrGrid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	n := len(g.m.Columns)
	return g.m.Values[n-1-r][c]
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func drawHeatmap(_ context.Context, ds *dataset.Dataset, _ Selection, opts Options) (*Image, error) {
	cols := ds.NumericColumns()
	if len(cols) > opts.MaxCategories {
		cols = cols[:opts.MaxCategories]
	}

	m, err := ds.Correlation(cols)
	if err != nil {
		return nil, err
	}
	grid := corrGrid{m: m}
	n := len(cols)

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Transparent

	xys := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			labels = append(labels, corrLabel(grid.Z(c, r)))
		}
	}
	values, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range values.TextStyle {
		values.TextStyle[i].XAlign = draw.XCenter
		values.TextStyle[i].YAlign = draw.YCenter
	}

	xTicks := make([]plot.Tick, n)
	yTicks := make([]plot.Tick, n)
	for i, name := range cols {
		xTicks[i] = plot.Tick{Value: float64(i), Label: name}
		yTicks[n-1-i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
	}

	title := "Heatmap of Correlations"
	p := newPlot(title, "", "")
	p.Add(hm, values)
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	if n > rotateLabelsAbove/2 {
		slantTicks(p)
	}

	return encodePlot(p, title, opts)
}

// corrLabel formats a coefficient the way auto text on a heatmap cell does:
// two decimals without trailing zeros.
func corrLabel(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
