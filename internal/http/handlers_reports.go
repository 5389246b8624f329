package http

import (
	"net/http"
	"strings"
	"time"

	"cassa/internal/log"
	"cassa/internal/report"
)

// viewResponse carries a view for charting. Values are exact integers in Unit
// (cents or pieces); Series holds the same buckets in currency units.
type viewResponse struct {
	Name   string    `json:"name"`
	Title  string    `json:"title"`
	Unit   string    `json:"unit"`
	Labels []string  `json:"labels"`
	Values []int64   `json:"values"`
	Series []float64 `json:"series"`
}

type reportsResponse struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Views       []viewResponse `json:"views"`
}

func newViewResponse(v report.View) viewResponse {
	labels, series := v.Series()
	return viewResponse{
		Name:   v.Name,
		Title:  v.Title,
		Unit:   string(v.Unit),
		Labels: orEmpty(labels),
		Values: orEmpty(v.Values),
		Series: orEmpty(series),
	}
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	snap, err := s.reports.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	resp := reportsResponse{GeneratedAt: snap.GeneratedAt}
	for _, v := range snap.Views() {
		resp.Views = append(resp.Views, newViewResponse(v))
	}
	NewJSONResponse().Data(resp).WarningText(strings.Join(snap.Warnings, "; ")).Write(w)
}

func (s *Server) handleReportView(w http.ResponseWriter, r *http.Request) {
	v, warnings, err := s.reports.View(r.Context(), r.PathValue("view"))
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().Data(newViewResponse(v)).WarningText(strings.Join(warnings, "; ")).Write(w)
}
