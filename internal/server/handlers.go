package server

import (
	"net/http"
	"time"

	"autoai-dashboard/internal/charts"
	"autoai-dashboard/internal/dashboard"
	"autoai-dashboard/internal/view"
)

// handlePage renders the full dashboard. ?model= preselects a model.
// GET /
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, view.TmplPage, s.ctrl.Page(r.URL.Query().Get("model")))
}

// handleHealthz reports that the dashboard process is up, along with what it
// last saw from the prediction API.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	inFlight, lastRun := s.ctrl.HealthCheckState()
	var lastPoll any
	if !lastRun.IsZero() {
		lastPoll = lastRun.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, map[string]any{
		"status":                 "ok",
		"started":                s.ctrl.Bound(),
		"api_connected":          s.ctrl.Connected(),
		"api_health":             s.ctrl.LastHealth(),
		"health_check_in_flight": inFlight,
		"last_health_poll":       lastPoll,
	})
}

// GET /ui/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, view.TmplStatus, s.ctrl.Status())
}

// GET /ui/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, view.TmplMetrics, s.ctrl.Metrics())
}

// GET /ui/models
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, view.TmplModels, s.ctrl.ModelViews())
}

// GET /ui/model-options?selected=
func (s *Server) handleModelOptions(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, view.TmplOptions, view.Options{
		Models:   s.ctrl.ModelViews(),
		Selected: r.URL.Query().Get("selected"),
	})
}

// GET /ui/domains
func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, view.TmplDomains, s.ctrl.Domains())
}

// handleRefresh reloads the model list and re-initializes the charts.
// POST /ui/models/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Refresh(r.Context())
	s.render(w, http.StatusOK, view.TmplModels, s.ctrl.ModelViews())
}

// GET /ui/fields?domain=
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, view.TmplFields, dashboard.InputFields(r.URL.Query().Get("domain")))
}

// handlePredict submits the prediction form. Both outcomes render with 200;
// the fragment itself says whether the prediction failed.
// POST /ui/predict
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, view.TmplFailure, view.Failure{Message: "Invalid form: " + err.Error()})
		return
	}

	out := s.ctrl.Predict(r.Context(), dashboard.PredictionForm{
		Domain:    r.PostForm.Get("domain"),
		ModelName: r.PostForm.Get("model_name"),
		Inputs:    r.PostForm["input"],
	})
	if out.Failure != nil {
		s.render(w, http.StatusOK, view.TmplFailure, out.Failure)
		return
	}
	s.render(w, http.StatusOK, view.TmplResult, out.Result)
}

// predictLimitReached answers a rate-limited submission with the failure
// fragment so the result panel shows it like any other failed prediction.
func (s *Server) predictLimitReached(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusTooManyRequests, view.TmplFailure, view.Failure{
		Message: "Too many prediction requests, try again shortly",
	})
}

type chartsResponse struct {
	Performance  *charts.Config `json:"performance"`
	Distribution *charts.Config `json:"distribution"`
}

// handleCharts returns both Chart.js configs. A chart that is not
// initialized yet is null.
// GET /ui/charts
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	perf, dist := s.ctrl.Charts()
	s.writeJSON(w, chartsResponse{Performance: perf, Distribution: dist})
}

// handleStats passes the API's system stats through, or null when they are
// unavailable. Only successful fetches are cached.
// GET /ui/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats != nil {
		if cached, ok := s.stats.Get(statsCacheKey); ok {
			s.writeJSON(w, cached)
			return
		}
	}

	stats := s.ctrl.SystemStats(r.Context())
	if stats != nil && s.stats != nil {
		s.stats.SetDefault(statsCacheKey, stats)
	}
	s.writeJSON(w, stats)
}
