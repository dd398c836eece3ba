package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/vizboard/internal/core"
	"github.com/JonMunkholm/vizboard/internal/history"
)

// DashboardPage renders the preview, chart sections and KPI cards.
func DashboardPage(sidebar SidebarParams, d *core.Dashboard) templ.Component {
	sidebar.HasDataset = true
	sidebar.Controls = SelectionForm(d)

	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(w)
		h.raw(`<h2>Visualization Dashboard</h2>`)
		h.child(ctx, Preview(d.Dataset))

		for _, sec := range d.Sections {
			if sec.Skipped {
				continue
			}
			h.child(ctx, ChartSection(sec))
		}

		h.child(ctx, KPICards(d.KPI, d.KPIErr))
		return h.err
	})
	return Layout(sidebar.Title, sidebar, body)
}

// Preview is the data preview table.
func Preview(s *core.DatasetSummary) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTML(w)
		h.raw(`<section class="preview"><h3>Data Preview</h3>`)
		h.rawf(`<p class="meta">%s &middot; %d rows &middot; %d columns &middot; %s</p>`,
			esc(s.Name), s.Rows, len(s.Columns), esc(s.Encoding))

		h.raw(`<div class="table-wrap"><table><thead><tr><th></th>`)
		for _, col := range s.Columns {
			h.rawf(`<th title="%s">%s</th>`, esc(string(col.Kind)), esc(col.Name))
		}
		h.raw(`</tr></thead><tbody>`)
		for i, row := range s.Preview {
			h.rawf(`<tr><th>%d</th>`, i)
			for _, cell := range row {
				h.rawf(`<td>%s</td>`, esc(cell))
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></div></section>`)
		return h.err
	})
}

// ChartSection renders one chart with its notice or error.
func ChartSection(sec core.Section) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(w)
		h.rawf(`<section class="chart" id="%s"><h3>%s</h3>`, esc(sec.Kind), esc(sec.Heading))

		switch {
		case sec.Notice != "":
			h.rawf(`<p class="notice">%s</p>`, esc(sec.Notice))
		case sec.Err != "":
			h.child(ctx, ErrorAlert(sec.Err, "", ""))
		case sec.Image != nil:
			h.rawf(`<img src="%s" alt="%s">`, esc(sec.Image.DataURI()), esc(sec.Image.Title))
			if sec.Image.Caption != "" {
				h.rawf(`<p class="caption">%s</p>`, esc(sec.Image.Caption))
			}
			h.rawf(`<p class="downloads"><a href="%s">PNG</a> <a href="%s">SVG</a></p>`,
				esc(ChartURL(sec, "png")), esc(ChartURL(sec, "svg")))
		}

		h.raw(`</section>`)
		return h.err
	})
}

// ChartURL links to the standalone image of a section with its selections.
func ChartURL(sec core.Section, format string) string {
	q := url.Values{}
	for _, c := range sec.Controls {
		if c.Selected != "" {
			q.Set(c.Key, c.Selected)
		}
	}
	q.Set("format", format)
	q.Set("download", "1")
	return "/chart/" + url.PathEscape(sec.Kind) + "?" + q.Encode()
}

// KPICards renders the KPI metrics. Nothing is shown without numeric columns.
func KPICards(kpi *core.KPI, errMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if kpi == nil {
			return nil
		}
		h := newHTML(w)
		h.raw(`<section class="kpi"><h3>KPI Cards</h3>`)
		if errMsg != "" {
			h.child(ctx, ErrorAlert(errMsg, "", ""))
		}
		h.raw(`<div class="cards">`)
		for _, m := range kpi.Metrics {
			h.rawf(`<div class="card"><span class="label">%s</span><span class="value">%s</span></div>`,
				esc(m.Label), esc(m.Value))
		}
		h.raw(`</div></section>`)
		return h.err
	})
}

// SelectionForm holds every chart control. Submitting it re-renders the
// whole dashboard with the new selections.
func SelectionForm(d *core.Dashboard) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(w)
		h.raw(`<form class="selections" method="get" action="/">`)
		for _, sec := range d.Sections {
			if len(sec.Controls) == 0 {
				continue
			}
			h.rawf(`<fieldset><legend>%s</legend>`, esc(sec.Heading))
			for _, c := range sec.Controls {
				h.child(ctx, ControlInput(c))
			}
			h.raw(`</fieldset>`)
		}
		if d.KPI != nil {
			h.raw(`<fieldset><legend>KPI Cards</legend>`)
			h.child(ctx, ControlInput(d.KPI.Control))
			h.raw(`</fieldset>`)
		}
		h.raw(`<button type="submit">Apply</button></form>`)
		return h.err
	})
}

// ControlInput renders a select box, or a number input for parameters.
func ControlInput(c core.Control) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTML(w)
		id := "ctl-" + c.Key
		h.rawf(`<label for="%s">%s</label>`, esc(id), esc(c.Label))

		if c.Param {
			value := c.Selected
			if value == "" {
				value = "0"
			}
			h.rawf(`<input id="%s" type="number" name="%s" min="%s" max="%s" value="%s">`,
				esc(id), esc(c.Key), strconv.Itoa(c.Min), strconv.Itoa(c.Max), esc(value))
			return h.err
		}

		h.rawf(`<select id="%s" name="%s" data-autosubmit>`, esc(id), esc(c.Key))
		for _, opt := range c.Options {
			selected := ""
			if opt == c.Selected {
				selected = " selected"
			}
			h.rawf(`<option value="%s"%s>%s</option>`, esc(opt), selected, esc(opt))
		}
		h.raw(`</select>`)
		return h.err
	})
}

// HistoryPage lists recent uploads.
func HistoryPage(sidebar SidebarParams, entries []history.Entry) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTML(w)
		h.raw(`<h2>Upload History</h2>`)
		if len(entries) == 0 {
			h.raw(`<p class="empty">No uploads recorded yet.</p>`)
			return h.err
		}
		h.raw(`<table><thead><tr><th>File</th><th>Rows</th><th>Columns</th><th>Encoding</th><th>Size</th><th>Uploaded</th></tr></thead><tbody>`)
		for _, e := range entries {
			h.rawf(`<tr><td>%s</td><td>%d</td><td>%d</td><td>%s</td><td>%d</td><td>%s</td></tr>`,
				esc(e.FileName), e.Rows, e.Columns, esc(e.Encoding), e.SizeBytes,
				esc(e.UploadedAt.Format("2006-01-02 15:04:05")))
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
	return Layout(sidebar.Title, sidebar, body)
}
