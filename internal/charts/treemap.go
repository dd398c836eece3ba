package charts

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg/draw"

	"github.com/JonMunkholm/vizboard/internal/dataset"
)

// rect is an axis-aligned rectangle in plot data coordinates.
type rect struct {
	X, Y, W, H float64
}

func (r rect) area() float64 { return r.W * r.H }

// squarify lays out values (sorted descending, all positive) inside bounds
// so each rectangle's area is proportional to its value and aspect ratios
// stay close to 1. Rectangles are returned in input order.
func squarify(values []float64, bounds rect) []rect {
	out := make([]rect, 0, len(values))
	total := 0.0
	for _, v := range values {
		total += v
	}
	if total <= 0 || len(values) == 0 {
		return out
	}

	scale := bounds.area() / total
	areas := make([]float64, len(values))
	for i, v := range values {
		areas[i] = v * scale
	}

	free := bounds
	for start := 0; start < len(areas); {
		side := math.Min(free.W, free.H)

		end := start + 1
		best := worstRatio(areas[start:end], side)
		for end < len(areas) {
			next := worstRatio(areas[start:end+1], side)
			if next > best {
				break
			}
			best = next
			end++
		}

		var rowArea float64
		for _, a := range areas[start:end] {
			rowArea += a
		}

		if free.W >= free.H {
			// Column along the left edge.
			colW := rowArea / free.H
			y := free.Y
			for _, a := range areas[start:end] {
				h := a / colW
				out = append(out, rect{X: free.X, Y: y, W: colW, H: h})
				y += h
			}
			free.X += colW
			free.W -= colW
		} else {
			// Row along the bottom edge.
			rowH := rowArea / free.W
			x := free.X
			for _, a := range areas[start:end] {
				w := a / rowH
				out = append(out, rect{X: x, Y: free.Y, W: w, H: rowH})
				x += w
			}
			free.Y += rowH
			free.H -= rowH
		}
		start = end
	}
	return out
}

// worstRatio returns the largest aspect ratio of a row of areas laid along
// a side of the given length.
func worstRatio(areas []float64, side float64) float64 {
	var sum, lo, hi float64
	lo = math.Inf(1)
	for _, a := range areas {
		sum += a
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	if sum == 0 || lo == 0 {
		return math.Inf(1)
	}
	s2 := side * side
	sum2 := sum * sum
	return math.Max(s2*hi/sum2, sum2/(s2*lo))
}

func drawTreemap(_ context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	col := sel.Column("path")
	counts, err := ds.ValueCounts(col)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return nil, ErrNoData
	}

	total := len(counts)
	cats := valueCountCategories(counts)
	truncated := false
	if len(cats) > opts.MaxCategories {
		cats, truncated = cats[:opts.MaxCategories], true
	}

	values := make([]float64, len(cats))
	for i, c := range cats {
		values[i] = c.Value
	}
	bounds := rect{W: float64(opts.Width), H: float64(opts.Height)}
	rects := squarify(values, bounds)

	title := "Treemap for " + col
	p := newPlot(title, "", "")
	p.HideAxes()
	p.X.Min, p.X.Max = 0, bounds.W
	p.Y.Min, p.Y.Max = 0, bounds.H

	xys := make(plotter.XYs, 0, len(rects))
	labels := make([]string, 0, len(rects))
	for i, r := range rects {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: r.X, Y: r.Y},
			{X: r.X + r.W, Y: r.Y},
			{X: r.X + r.W, Y: r.Y + r.H},
			{X: r.X, Y: r.Y + r.H},
		})
		if err != nil {
			return nil, err
		}
		poly.Color = plotutil.Color(i)
		poly.LineStyle.Color = color.White
		poly.LineStyle.Width = 1
		p.Add(poly)

		xys = append(xys, plotter.XY{X: r.X + r.W/2, Y: r.Y + r.H/2})
		labels = append(labels, fmt.Sprintf("%s\n%.0f", cats[i].Label, cats[i].Value))
	}

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range names.TextStyle {
		names.TextStyle[i].XAlign = draw.XCenter
		names.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(names)

	img, err := encodePlot(p, title, opts)
	if err != nil {
		return nil, err
	}
	if truncated {
		img.Caption = truncatedCaption(len(cats), total)
	}
	return img, nil
}
