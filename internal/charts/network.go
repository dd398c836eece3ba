package charts

import (
	"context"
	"image/color"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/JonMunkholm/vizboard/internal/dataset"
)

// network is an undirected co-occurrence graph of column values.
type network struct {
	g     *simple.UndirectedGraph
	names []string
	// Total distinct values before truncation.
	total int
}

// buildNetwork links the source and target value of every row. Only the
// maxNodes most frequent values become nodes. Rows whose source equals
// their target add the node without a self-loop.
func buildNetwork(ds *dataset.Dataset, srcCol, dstCol string, maxNodes int) (*network, error) {
	srcs, err := ds.Labels(srcCol)
	if err != nil {
		return nil, err
	}
	dsts, err := ds.Labels(dstCol)
	if err != nil {
		return nil, err
	}

	freq := make(map[string]int)
	var order []string
	bump := func(v *string) {
		if v == nil {
			return
		}
		if _, ok := freq[*v]; !ok {
			order = append(order, *v)
		}
		freq[*v]++
	}
	for i := range srcs {
		if srcs[i] == nil || dsts[i] == nil {
			continue
		}
		bump(srcs[i])
		bump(dsts[i])
	}

	cats := make([]category, len(order))
	for i, name := range order {
		cats[i] = category{Label: name, Value: float64(freq[name])}
	}
	kept, _ := topCategories(cats, maxNodes)

	n := &network{g: simple.NewUndirectedGraph(), total: len(order)}
	ids := make(map[string]int64, len(kept))
	for i, c := range kept {
		ids[c.Label] = int64(i)
		n.names = append(n.names, c.Label)
		n.g.AddNode(simple.Node(i))
	}

	for i := range srcs {
		if srcs[i] == nil || dsts[i] == nil {
			continue
		}
		a, okA := ids[*srcs[i]]
		b, okB := ids[*dsts[i]]
		if !okA || !okB || a == b {
			continue
		}
		if n.g.HasEdgeBetween(a, b) {
			continue
		}
		n.g.SetEdge(n.g.NewEdge(simple.Node(a), simple.Node(b)))
	}
	return n, nil
}

// positions runs an Eades force-directed layout and returns node coordinates
// indexed by node ID.
func (n *network) positions(ctx context.Context, iterations int) plotter.XYs {
	pts := make(plotter.XYs, len(n.names))
	if len(n.names) < 2 {
		return pts
	}

	eades := &layout.EadesR2{
		Updates:   iterations,
		Repulsion: 1,
		Rate:      0.05,
		Theta:     0.2,
	}
	opt := layout.NewOptimizerR2(n.g, eades.Update)
	for opt.Update() {
		if ctx.Err() != nil {
			break
		}
	}

	nodes := n.g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		v := opt.Coord2(id)
		pts[id] = plotter.XY{X: v.X, Y: v.Y}
	}
	return pts
}

func drawNetwork(ctx context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error) {
	srcCol, dstCol := sel.Column("source"), sel.Column("target")
	net, err := buildNetwork(ds, srcCol, dstCol, opts.MaxCategories)
	if err != nil {
		return nil, err
	}
	if len(net.names) == 0 {
		return nil, ErrNoData
	}

	pts := net.positions(ctx, opts.NetworkIterations)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := "Network of " + srcCol + " to " + dstCol
	p := newPlot(title, "", "")
	p.HideAxes()

	edges := graph.EdgesOf(net.g.Edges())
	for _, e := range edges {
		from, to := e.From().ID(), e.To().ID()
		line, err := plotter.NewLine(plotter.XYs{pts[from], pts[to]})
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = color.Gray{Y: 0xb0}
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
	}

	nodes, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	nodes.GlyphStyle.Shape = draw.CircleGlyph{}
	nodes.GlyphStyle.Radius = vg.Points(5)
	nodes.GlyphStyle.Color = plotutil.Color(2)
	p.Add(nodes)

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: net.names})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
	}
	labels.Offset = vg.Point{Y: vg.Points(7)}
	p.Add(labels)

	img, err := encodePlot(p, title, opts)
	if err != nil {
		return nil, err
	}
	if net.total > len(net.names) {
		img.Caption = truncatedCaption(len(net.names), net.total)
	}
	return img, nil
}
