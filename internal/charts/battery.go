package charts

import (
	"fmt"

	"github.com/JonMunkholm/vizboard/internal/dataset"
)

var (
	numeric  = []dataset.Kind{dataset.KindNumeric}
	datetime = []dataset.Kind{dataset.KindDatetime}
	// Date columns can also group rows by their text.
	grouping = []dataset.Kind{dataset.KindCategorical, dataset.KindDatetime}

	bothVariants = []Variant{VariantSimple, VariantFull}
	fullOnly     = []Variant{VariantFull}
)

func init() {
	registerBar()
	registerLine()
	registerPie()
	registerArea()
	registerScatter()
	registerHistogram()
	registerBox()
	registerTreemap()
	registerHeatmap()
	registerTimeSeries()
	registerNetwork()
	registerAltScatter()
}

func needs(kinds []dataset.Kind, n int) Requirement {
	return Requirement{Kinds: kinds, Min: n}
}

func registerBar() {
	Register(Definition{
		Kind:     "bar",
		Heading:  "Bar Chart",
		Order:    10,
		Variants: bothVariants,
		Slots: []Slot{
			{Name: "x", Label: "Select X-axis for Bar Chart", Kinds: grouping},
			{Name: "y", Label: "Select Y-axis for Bar Chart", Kinds: []dataset.Kind{dataset.KindCategorical, dataset.KindDatetime, dataset.KindNumeric}},
		},
		Requires: []Requirement{needs(grouping, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Bar Chart for %s vs %s", sel.Column("x"), sel.Column("y"))
		},
		Draw: drawBar,
	})
}

func registerLine() {
	Register(Definition{
		Kind:     "line",
		Heading:  "Line Chart",
		Order:    20,
		Variants: bothVariants,
		Slots: []Slot{
			{Name: "x", Label: "Select X-axis for Line Chart", Kinds: numeric},
			{Name: "y", Label: "Select Y-axis for Line Chart", Kinds: numeric},
		},
		Requires: []Requirement{needs(numeric, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Line Chart for %s vs %s", sel.Column("x"), sel.Column("y"))
		},
		Draw: drawLine(false),
	})
}

func registerPie() {
	Register(Definition{
		Kind:     "pie",
		Heading:  "Pie Chart",
		Order:    30,
		Variants: bothVariants,
		Slots: []Slot{
			{Name: "names", Label: "Select a column for Pie Chart", Kinds: grouping},
		},
		Requires: []Requirement{needs(grouping, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Pie Chart for %s", sel.Column("names"))
		},
		Draw: drawPie,
	})
}

func registerArea() {
	Register(Definition{
		Kind:     "area",
		Heading:  "Area Chart",
		Order:    40,
		Variants: bothVariants,
		Slots: []Slot{
			{Name: "x", Label: "Select X-axis for Area Chart", Kinds: numeric},
			{Name: "y", Label: "Select Y-axis for Area Chart", Kinds: numeric},
		},
		Requires: []Requirement{needs(numeric, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Area Chart for %s vs %s", sel.Column("x"), sel.Column("y"))
		},
		Draw: drawLine(true),
	})
}

func registerScatter() {
	Register(Definition{
		Kind:     "scatter",
		Heading:  "Scatter Plot",
		Order:    50,
		Variants: bothVariants,
		Slots: []Slot{
			{Name: "x", Label: "Select X-axis for Scatter Plot", Kinds: numeric},
			{Name: "y", Label: "Select Y-axis for Scatter Plot", Kinds: numeric},
		},
		Requires: []Requirement{needs(numeric, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Scatter Plot: %s vs %s", sel.Column("x"), sel.Column("y"))
		},
		Draw: drawScatter,
	})
}

func registerHistogram() {
	Register(Definition{
		Kind:     "histogram",
		Heading:  "Histogram",
		Order:    60,
		Variants: bothVariants,
		Slots: []Slot{
			{Name: "column", Label: "Select a column for Histogram", Kinds: numeric},
		},
		Params: []Param{
			{Name: "bins", Label: "Number of bins (0 for automatic)", Min: 0, Max: 200},
		},
		Requires: []Requirement{needs(numeric, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Histogram for %s", sel.Column("column"))
		},
		Draw: drawHistogram,
	})
}

func registerBox() {
	Register(Definition{
		Kind:     "box",
		Heading:  "Box Plot",
		Order:    70,
		Variants: bothVariants,
		Slots: []Slot{
			{Name: "column", Label: "Select a column for Box Plot", Kinds: numeric},
		},
		Requires: []Requirement{needs(numeric, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Box Plot for %s", sel.Column("column"))
		},
		Draw: drawBox,
	})
}

func registerTreemap() {
	Register(Definition{
		Kind:     "treemap",
		Heading:  "Treemap",
		Order:    80,
		Variants: bothVariants,
		Slots: []Slot{
			{Name: "path", Label: "Select a column for Treemap", Kinds: grouping},
		},
		Requires: []Requirement{needs(grouping, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Treemap for %s", sel.Column("path"))
		},
		Draw: drawTreemap,
	})
}

func registerHeatmap() {
	Register(Definition{
		Kind:     "heatmap",
		Heading:  "Heatmap",
		Order:    90,
		Variants: bothVariants,
		Requires: []Requirement{needs(numeric, 2)},
		Notice:   "Not enough numeric data available for heatmap.",
		Title: func(Selection) string {
			return "Heatmap of Correlations"
		},
		Draw: drawHeatmap,
	})
}

func registerTimeSeries() {
	Register(Definition{
		Kind:     "timeseries",
		Heading:  "Time Series",
		Order:    100,
		Variants: fullOnly,
		Slots: []Slot{
			{Name: "time", Label: "Select a date column for Time Series", Kinds: datetime},
			{Name: "value", Label: "Select a value column for Time Series", Kinds: numeric},
		},
		Requires: []Requirement{needs(datetime, 1), needs(numeric, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Time Series of %s by %s", sel.Column("value"), sel.Column("time"))
		},
		Draw: drawTimeSeries,
	})
}

func registerNetwork() {
	Register(Definition{
		Kind:     "network",
		Heading:  "Network Graph",
		Order:    110,
		Variants: fullOnly,
		Slots: []Slot{
			{Name: "source", Label: "Select a source column for Network Graph", Kinds: grouping},
			{Name: "target", Label: "Select a target column for Network Graph", Kinds: grouping},
		},
		Requires: []Requirement{needs(grouping, 1)},
		Title: func(sel Selection) string {
			return fmt.Sprintf("Network of %s to %s", sel.Column("source"), sel.Column("target"))
		},
		Draw: drawNetwork,
	})
}

func registerAltScatter() {
	Register(Definition{
		Kind:     "altscatter",
		Heading:  "Scatter Plot (go-chart)",
		Order:    120,
		Variants: fullOnly,
		Slots: []Slot{
			{Name: "x", Label: "Select X-axis for go-chart Scatter", Kinds: numeric},
			{Name: "y", Label: "Select Y-axis for go-chart Scatter", Kinds: numeric},
			{Name: "color", Label: "Color by (optional)", Kinds: grouping, Optional: true},
		},
		Requires: []Requirement{needs(numeric, 1)},
		Title: func(sel Selection) string {
			if c := sel.Column("color"); c != "" {
				return fmt.Sprintf("%s vs %s by %s", sel.Column("x"), sel.Column("y"), c)
			}
			return fmt.Sprintf("%s vs %s", sel.Column("x"), sel.Column("y"))
		},
		Draw: drawAltScatter,
	})
}
