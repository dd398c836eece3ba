// Package charts defines the dashboard's chart battery.
//
// Each chart is a Definition registered at init time. A Definition names the
// column slots a user can pick, the column kinds the dataset must contain for
// the chart to be shown, and a Draw function that renders the chart with
// gonum/plot or go-chart.
package charts

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/JonMunkholm/vizboard/internal/dataset"
)

// Variant selects which subset of the battery a dashboard shows.
type Variant string

const (
	VariantSimple Variant = "simple"
	VariantFull   Variant = "full"
)

// Image formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

var (
	// ErrUnavailable is returned when the dataset lacks the columns a chart needs.
	ErrUnavailable = errors.New("chart unavailable for this dataset")
	// ErrNoData is returned when the selected columns have no plottable values.
	ErrNoData = errors.New("no plottable values")
	// ErrInvalidParam is returned for a malformed chart parameter.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrUnknownChart is returned for a chart kind that is not registered.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrUnsupportedFormat is returned for image formats other than png and svg.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Slot is one column input of a chart.
type Slot struct {
	Name     string         // Query key suffix: "x", "y", "column"
	Label    string         // Control label: "Select X-axis for Bar Chart"
	Kinds    []dataset.Kind // Eligible column kinds
	Optional bool           // Optional slots default to no column
}

// Accepts reports whether a column of kind k may fill the slot.
func (s Slot) Accepts(k dataset.Kind) bool {
	for _, want := range s.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

// Param is an integer chart setting such as a bin count. Zero means automatic.
type Param struct {
	Name  string
	Label string
	Min   int
	Max   int
}

// Requirement is a minimum count of columns of the given kinds.
type Requirement struct {
	Kinds []dataset.Kind
	Min   int
}

// DrawFunc renders a resolved selection.
type DrawFunc func(ctx context.Context, ds *dataset.Dataset, sel Selection, opts Options) (*Image, error)

// Definition describes one chart of the battery.
type Definition struct {
	Kind     string
	Heading  string
	Order    int
	Variants []Variant
	Slots    []Slot
	Params   []Param
	Requires []Requirement
	// Notice replaces the chart when requirements are unmet. Empty means the
	// section is skipped silently.
	Notice string
	Title  func(sel Selection) string
	Draw   DrawFunc
}

// InVariant reports whether the chart belongs to variant v.
func (d Definition) InVariant(v Variant) bool {
	for _, have := range d.Variants {
		if have == v {
			return true
		}
	}
	return false
}

// Options controls rendering.
type Options struct {
	Width             int
	Height            int
	Format            string
	MaxCategories     int
	MaxPoints         int
	NetworkIterations int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Width:             720,
		Height:            420,
		Format:            FormatPNG,
		MaxCategories:     40,
		MaxPoints:         20000,
		NetworkIterations: 60,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Format == "" {
		o.Format = def.Format
	}
	if o.MaxCategories <= 0 {
		o.MaxCategories = def.MaxCategories
	}
	if o.MaxPoints <= 0 {
		o.MaxPoints = def.MaxPoints
	}
	if o.NetworkIterations <= 0 {
		o.NetworkIterations = def.NetworkIterations
	}
	return o
}

// Image is a rendered chart.
type Image struct {
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Format string `json:"format"`
	// Caption notes data reductions such as category truncation.
	Caption string `json:"caption,omitempty"`
	Data    []byte `json:"data"`
}

// ContentType returns the MIME type of the image data.
func (img *Image) ContentType() string {
	if img.Format == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// DataURI returns the image as a base64 data URI for inline embedding.
func (img *Image) DataURI() string {
	return "data:" + img.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
