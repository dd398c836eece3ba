package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// SidebarParams configures the sidebar shared by every page.
type SidebarParams struct {
	Title       string
	MaxUploadMB int64
	HasDataset  bool
	// Controls is the selections form; nil before an upload.
	Controls templ.Component
}

// Layout wraps body in the page shell with the sidebar.
func Layout(title string, sidebar SidebarParams, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.rawf(`<title>%s</title>`, esc(title))
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="/static/app.js" defer></script>`)
		h.raw(`</head><body><div class="shell">`)

		h.raw(`<aside class="sidebar">`)
		h.rawf(`<h1>%s</h1>`, esc(sidebar.Title))
		h.child(ctx, UploadForm(sidebar.MaxUploadMB, sidebar.HasDataset))
		if sidebar.Controls != nil {
			h.child(ctx, sidebar.Controls)
		}
		h.raw(`</aside>`)

		h.raw(`<main class="content">`)
		h.child(ctx, body)
		h.raw(`</main></div></body></html>`)
		return h.err
	})
}

// UploadForm is the CSV file picker. A dataset can be discarded once one is
// loaded.
func UploadForm(maxMB int64, hasDataset bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTML(w)
		h.raw(`<form class="upload" method="post" action="/upload" enctype="multipart/form-data">`)
		h.raw(`<label for="file">Upload your Dataset (CSV format)</label>`)
		h.raw(`<input id="file" type="file" name="file" accept=".csv,text/csv" required>`)
		h.rawf(`<p class="hint">Limit %dMB per file</p>`, maxMB)
		h.raw(`<button type="submit">Upload</button></form>`)
		if hasDataset {
			h.raw(`<form method="post" action="/discard"><button type="submit" class="secondary">Remove dataset</button></form>`)
		}
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTML(w)
		h.raw(`<div class="alert" role="alert">`)
		h.rawf(`<strong>%s</strong>`, esc(message))
		if action != "" {
			h.rawf(` <span>%s</span>`, esc(action))
		}
		if code != "" {
			h.rawf(` <code>%s</code>`, esc(code))
		}
		h.raw(`</div>`)
		return h.err
	})
}

// ErrorPage is a full page around an ErrorAlert.
func ErrorPage(sidebar SidebarParams, message, action, code string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(w)
		h.raw(`<h2>Visualization Dashboard</h2>`)
		h.child(ctx, ErrorAlert(message, action, code))
		h.raw(`<p><a href="/">Back to the dashboard</a></p>`)
		return h.err
	})
	return Layout(sidebar.Title, sidebar, body)
}

// LandingPage is shown until a CSV has been uploaded.
func LandingPage(sidebar SidebarParams) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTML(w)
		h.raw(`<h2>Visualization Dashboard</h2>`)
		h.raw(`<p class="empty">Upload a CSV file in the sidebar to generate the dashboard.</p>`)
		return h.err
	})
	return Layout(sidebar.Title, sidebar, body)
}
