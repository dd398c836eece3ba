package core

import (
	"time"

	"github.com/JonMunkholm/vizboard/internal/charts"
	"github.com/JonMunkholm/vizboard/internal/dataset"
)

// DatasetSummary describes the session's dataset for the preview table and
// the /api/dataset endpoint.
type DatasetSummary struct {
	Name       string           `json:"name"`
	Encoding   string           `json:"encoding"`
	SizeBytes  int              `json:"size_bytes"`
	Rows       int              `json:"rows"`
	Columns    []dataset.Column `json:"columns"`
	Header     []string         `json:"header"`
	Preview    [][]string       `json:"preview"`
	UploadedAt time.Time        `json:"uploaded_at"`
}

// Summarize builds the summary of ds with up to previewRows preview rows.
func Summarize(ds *dataset.Dataset, previewRows int) *DatasetSummary {
	return &DatasetSummary{
		Name:       ds.Name(),
		Encoding:   string(ds.Encoding()),
		SizeBytes:  ds.Size(),
		Rows:       ds.Rows(),
		Columns:    ds.Columns(),
		Header:     ds.Header(),
		Preview:    ds.Head(previewRows),
		UploadedAt: ds.LoadedAt(),
	}
}

// Metric is one KPI card.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// KPI holds the KPI cards for one numeric column.
type KPI struct {
	Column  string   `json:"column"`
	Control Control  `json:"control"`
	Metrics []Metric `json:"metrics"`
}

// Control is one sidebar input: a column select box or a numeric setting.
type Control struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Options  []string `json:"options,omitempty"`
	Selected string   `json:"selected"`
	Optional bool     `json:"optional,omitempty"`
	// Param controls are free numeric inputs bounded by Min and Max.
	Param bool `json:"param,omitempty"`
	Min   int  `json:"min,omitempty"`
	Max   int  `json:"max,omitempty"`
}

// Section is one chart slot of the dashboard.
type Section struct {
	Kind     string        `json:"kind"`
	Heading  string        `json:"heading"`
	Controls []Control     `json:"controls,omitempty"`
	Image    *charts.Image `json:"image,omitempty"`
	// Notice replaces the chart when the dataset cannot support it.
	Notice string `json:"notice,omitempty"`
	// Skipped sections are not shown at all.
	Skipped bool `json:"skipped,omitempty"`
	// Err is the user-facing message when resolving or rendering failed.
	Err     string `json:"error,omitempty"`
	ErrCode string `json:"error_code,omitempty"`
}

// Dashboard is everything the page renders for one request.
type Dashboard struct {
	Title    string          `json:"title"`
	Variant  charts.Variant  `json:"variant"`
	Dataset  *DatasetSummary `json:"dataset"`
	Sections []Section       `json:"sections"`
	// KPI is nil when the dataset has no numeric columns.
	KPI    *KPI   `json:"kpi,omitempty"`
	KPIErr string `json:"kpi_error,omitempty"`
}
