package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/vizboard/internal/charts"
	"github.com/JonMunkholm/vizboard/internal/core"
	"github.com/JonMunkholm/vizboard/internal/history"
	"github.com/JonMunkholm/vizboard/internal/web/templates"
)

const bytesPerMB = 1024 * 1024

// sidebar builds the sidebar shared by every page.
func (s *Server) sidebar(r *http.Request, hasDataset bool) templates.SidebarParams {
	return templates.SidebarParams{
		Title:       s.service.Title(),
		MaxUploadMB: s.cfg.Upload.MaxFileSize / bytesPerMB,
		HasDataset:  hasDataset,
	}
}

// handleDashboard renders the dashboard for the current selections, or the
// landing page before anything has been uploaded.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dash, err := s.service.Dashboard(ctx, s.sessionID(r), r.URL.Query())
	if errors.Is(err, core.ErrNoDataset) {
		templates.LandingPage(s.sidebar(r, false)).Render(ctx, w)
		return
	}
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.DashboardPage(s.sidebar(r, true), dash).Render(ctx, w)
}

// handleChart serves one chart image. Selections come from the query string
// as on the dashboard; format is png (default) or svg.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = charts.FormatPNG
	}

	img, err := s.service.RenderChart(r.Context(), s.sessionID(r), kind, q, format)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", img.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	if q.Get("download") != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+kind+"."+img.Format+`"`)
	}
	w.Write(img.Data)
}

// handleHistoryPage lists recent uploads.
func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context(), parseIntParam(r, "limit", history.DefaultLimit))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	templates.HistoryPage(s.sidebar(r, s.sessionID(r) != ""), entries).Render(r.Context(), w)
}

// handleHealth reports liveness and upload slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"variant":         s.service.Variant(),
		"uploads":         s.service.UploadLimiterStatus(),
		"cached_datasets": s.service.CachedDatasets(),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
