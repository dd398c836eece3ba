package core

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/vizboard/internal/charts"
	"github.com/JonMunkholm/vizboard/internal/dataset"
	"github.com/JonMunkholm/vizboard/internal/logging"
)

// KPIKey is the query parameter that selects the KPI column.
const KPIKey = "kpi.column"

// renderOptions maps render configuration onto chart options.
func (s *Service) renderOptions(format string) charts.Options {
	r := s.cfg.Render
	return charts.Options{
		Width:             r.Width,
		Height:            r.Height,
		Format:            format,
		MaxCategories:     r.MaxCategories,
		MaxPoints:         r.MaxPoints,
		NetworkIterations: r.NetworkIterations,
	}
}

// Dashboard renders every chart of the configured variant against the
// session's dataset. raw carries the sidebar selections as query values.
// Failures of individual charts are reported on their sections.
func (s *Service) Dashboard(ctx context.Context, sessionID string, raw url.Values) (*Dashboard, error) {
	return s.DashboardAs(ctx, sessionID, raw, charts.FormatPNG)
}

// DashboardAs is Dashboard with images encoded in format.
func (s *Service) DashboardAs(ctx context.Context, sessionID string, raw url.Values, format string) (*Dashboard, error) {
	if format != charts.FormatPNG && format != charts.FormatSVG {
		return nil, fmt.Errorf("%w: %s", charts.ErrUnsupportedFormat, format)
	}

	ds, err := s.Dataset(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	flat := flatten(raw)
	defs := charts.ForVariant(s.variant)
	sections := make([]Section, len(defs))

	renderCtx, cancel := context.WithTimeout(ctx, s.cfg.Render.Timeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(s.cfg.Render.Workers)

	start := time.Now()
	opts := s.renderOptions(format)
	logger := logging.FromContext(ctx)

	for i, def := range defs {
		sec := &sections[i]
		sec.Kind = def.Kind
		sec.Heading = def.Heading

		if !charts.Available(def, ds) {
			sec.Notice = def.Notice
			sec.Skipped = def.Notice == ""
			continue
		}

		sel, err := charts.Resolve(def, ds, flat)
		sec.Controls = controlsFor(def, ds, sel, flat)
		if err != nil {
			setSectionError(sec, err)
			continue
		}

		g.Go(func() error {
			img, err := charts.Render(renderCtx, def, ds, sel, opts)
			if err != nil {
				logger.Warn("chart render failed", "chart", def.Kind, "error", err)
				setSectionError(sec, err)
				return nil
			}
			sec.Image = img
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dash := &Dashboard{
		Title:    s.cfg.Dashboard.Title,
		Variant:  s.variant,
		Dataset:  Summarize(ds, s.cfg.Upload.PreviewRows),
		Sections: sections,
	}

	kpi, err := buildKPI(ds, flat[KPIKey])
	switch {
	case err == nil:
		dash.KPI = kpi
	case len(ds.NumericColumns()) > 0:
		dash.KPI = &KPI{Control: kpiControl(ds, flat[KPIKey])}
		dash.KPIErr = FormatUserError(err)
	}

	logger.Debug("dashboard rendered",
		"variant", s.variant,
		"charts", len(defs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return dash, nil
}

// RenderChart renders a single chart of the configured variant.
func (s *Service) RenderChart(ctx context.Context, sessionID, kind string, raw url.Values, format string) (*charts.Image, error) {
	def, ok := charts.Get(kind)
	if !ok || !def.InVariant(s.variant) {
		return nil, fmt.Errorf("%w: %s", charts.ErrUnknownChart, kind)
	}

	ds, err := s.Dataset(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sel, err := charts.Resolve(def, ds, flatten(raw))
	if err != nil {
		return nil, err
	}

	renderCtx, cancel := context.WithTimeout(ctx, s.cfg.Render.Timeout)
	defer cancel()

	return charts.Render(renderCtx, def, ds, sel, s.renderOptions(format))
}

// KPI returns the KPI cards for column, or for the first numeric column when
// column is empty.
func (s *Service) KPI(ctx context.Context, sessionID, column string) (*KPI, error) {
	ds, err := s.Dataset(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return buildKPI(ds, column)
}

func buildKPI(ds *dataset.Dataset, column string) (*KPI, error) {
	numeric := ds.NumericColumns()
	if len(numeric) == 0 {
		return nil, ErrNotEnoughData
	}
	if column == "" {
		column = numeric[0]
	}

	sum, err := ds.Summarize(column)
	if err != nil {
		return nil, err
	}

	return &KPI{
		Column:  column,
		Control: kpiControl(ds, column),
		Metrics: []Metric{
			{Label: "Mean of " + column, Value: formatMetric(sum.Mean)},
			{Label: "Sum of " + column, Value: formatMetric(sum.Sum)},
			{Label: "Max of " + column, Value: formatMetric(sum.Max)},
			{Label: "Min of " + column, Value: formatMetric(sum.Min)},
		},
	}, nil
}

func kpiControl(ds *dataset.Dataset, selected string) Control {
	options := ds.NumericColumns()
	if selected == "" && len(options) > 0 {
		selected = options[0]
	}
	return Control{
		Key:      KPIKey,
		Label:    "Select a column for KPI",
		Options:  options,
		Selected: selected,
	}
}

// formatMetric formats a KPI value with two decimals, writing NaN as "nan"
// and infinities as "inf" and "-inf".
func formatMetric(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// controlsFor builds the sidebar inputs of a chart. When the selection did
// not resolve, the raw values are echoed back so the user sees what failed.
func controlsFor(def charts.Definition, ds *dataset.Dataset, sel charts.Selection, raw map[string]string) []Control {
	controls := make([]Control, 0, len(def.Slots)+len(def.Params))

	for _, slot := range def.Slots {
		key := charts.Key(def.Kind, slot.Name)
		options := charts.Eligible(ds, slot)
		if slot.Optional {
			options = append([]string{charts.NoneValue}, options...)
		}

		selected := sel.Column(slot.Name)
		if selected == "" {
			selected = raw[key]
		}
		if selected == "" && slot.Optional {
			selected = charts.NoneValue
		}

		controls = append(controls, Control{
			Key:      key,
			Label:    slot.Label,
			Options:  options,
			Selected: selected,
			Optional: slot.Optional,
		})
	}

	for _, p := range def.Params {
		key := charts.Key(def.Kind, p.Name)
		selected := raw[key]
		if v := sel.Param(p.Name); v != 0 {
			selected = strconv.Itoa(v)
		}
		controls = append(controls, Control{
			Key:      key,
			Label:    p.Label,
			Selected: selected,
			Param:    true,
			Min:      p.Min,
			Max:      p.Max,
		})
	}

	return controls
}

func setSectionError(sec *Section, err error) {
	msg := MapError(err)
	sec.Err = FormatUserError(err)
	sec.ErrCode = msg.Code
}

// flatten keeps the first value of every query parameter.
func flatten(v url.Values) map[string]string {
	out := make(map[string]string, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			out[k] = vals[0]
		}
	}
	return out
}
