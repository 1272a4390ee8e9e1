// Package server exposes the dashboard over HTTP: the page, the fragment
// endpoints the browser glue calls, static assets and /metrics.
package server

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	limiter "github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"

	"autoai-dashboard/internal/config"
	"autoai-dashboard/internal/dashboard"
	"autoai-dashboard/internal/view"
)

const (
	// maxFormBytes caps a prediction form body.
	maxFormBytes = 64 * 1024

	statsCacheKey = "system_stats"
)

// Server handles dashboard requests.
type Server struct {
	ctrl     *dashboard.Controller
	views    *view.Renderer
	cfg      config.Config
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	static   fs.FS

	// Stats responses are cached to keep page refreshes off the API.
	stats *cache.Cache

	predictLimit *stdlib.Middleware
	handler      http.Handler
}

// New builds the server and its routes. gatherer may be nil when metrics
// are disabled.
func New(ctrl *dashboard.Controller, views *view.Renderer, static fs.FS, cfg config.Config, gatherer prometheus.Gatherer, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rate, err := limiter.NewRateFromFormatted(cfg.PredictRate)
	if err != nil {
		return nil, fmt.Errorf("predict rate: %w", err)
	}

	s := &Server{
		ctrl:         ctrl,
		views:        views,
		cfg:          cfg,
		logger:       logger,
		gatherer:     gatherer,
		static:       static,
	}
	s.predictLimit = stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate),
		stdlib.WithLimitReachedHandler(s.predictLimitReached))
	if cfg.StatsCacheTTL > 0 {
		s.stats = cache.New(cfg.StatsCacheTTL, 2*cfg.StatsCacheTTL)
	}
	s.handler = s.accessLog(s.cors(s.routes()))
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("GET /ui/status", s.handleStatus)
	mux.HandleFunc("GET /ui/metrics", s.handleMetrics)
	mux.HandleFunc("GET /ui/models", s.handleModels)
	mux.HandleFunc("GET /ui/model-options", s.handleModelOptions)
	mux.HandleFunc("GET /ui/domains", s.handleDomains)
	mux.HandleFunc("GET /ui/charts", s.handleCharts)
	mux.HandleFunc("GET /ui/stats", s.handleStats)

	mux.Handle("POST /ui/models/refresh", s.requireBound(http.HandlerFunc(s.handleRefresh)))
	mux.Handle("GET /ui/fields", s.requireBound(http.HandlerFunc(s.handleFields)))
	mux.Handle("POST /ui/predict", s.requireBound(s.predictLimit.Handler(http.HandlerFunc(s.handlePredict))))

	if s.static != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))
	}
	if s.cfg.MetricsEnabled && s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Helper functions

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "err", err)
	}
}

func (s *Server) render(w http.ResponseWriter, code int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := s.views.Render(w, name, data); err != nil {
		s.logger.Error("failed to render template", "template", name, "err", err)
	}
}
