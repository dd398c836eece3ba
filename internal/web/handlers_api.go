package web

import (
	"net/http"

	"github.com/JonMunkholm/vizboard/internal/charts"
	"github.com/JonMunkholm/vizboard/internal/dataset"
	"github.com/JonMunkholm/vizboard/internal/history"
)

// handleAPIDataset returns the dataset summary: columns, kinds and preview.
func (s *Server) handleAPIDataset(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(r.Context(), s.sessionID(r))
	if err != nil {
		respondErrorJSON(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleAPIKPI returns the KPI cards for ?column=, defaulting to the first
// numeric column.
func (s *Server) handleAPIKPI(w http.ResponseWriter, r *http.Request) {
	kpi, err := s.service.KPI(r.Context(), s.sessionID(r), r.URL.Query().Get("column"))
	if err != nil {
		respondErrorJSON(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, kpi)
}

// handleAPIDashboard returns every section with base64 image data.
func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.service.Dashboard(r.Context(), s.sessionID(r), r.URL.Query())
	if err != nil {
		respondErrorJSON(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// chartInfo describes a chart of the battery for API clients.
type chartInfo struct {
	Kind     string        `json:"kind"`
	Heading  string        `json:"heading"`
	Slots    []slotInfo    `json:"slots"`
	Params   []paramInfo   `json:"params,omitempty"`
	Requires []requireInfo `json:"requires,omitempty"`
}

type requireInfo struct {
	Kinds []dataset.Kind `json:"kinds"`
	Min   int            `json:"min"`
}

type slotInfo struct {
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	Kinds    []dataset.Kind `json:"kinds"`
	Optional bool           `json:"optional,omitempty"`
}

type paramInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

func newChartInfo(def charts.Definition) chartInfo {
	info := chartInfo{Kind: def.Kind, Heading: def.Heading, Slots: make([]slotInfo, len(def.Slots))}
	for i, sl := range def.Slots {
		info.Slots[i] = slotInfo{Name: sl.Name, Label: sl.Label, Kinds: sl.Kinds, Optional: sl.Optional}
	}
	for _, p := range def.Params {
		info.Params = append(info.Params, paramInfo{Name: p.Name, Label: p.Label, Min: p.Min, Max: p.Max})
	}
	for _, req := range def.Requires {
		info.Requires = append(info.Requires, requireInfo{Kinds: req.Kinds, Min: req.Min})
	}
	return info
}

// handleAPICharts lists the charts of the configured variant.
func (s *Server) handleAPICharts(w http.ResponseWriter, r *http.Request) {
	defs := charts.ForVariant(s.service.Variant())
	out := make([]chartInfo, len(defs))
	for i, def := range defs {
		out[i] = newChartInfo(def)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAPIHistory lists recent uploads when history is enabled.
func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context(), parseIntParam(r, "limit", history.DefaultLimit))
	if err != nil {
		respondErrorJSON(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
