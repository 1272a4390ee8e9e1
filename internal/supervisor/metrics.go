package supervisor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for the dashboard.
type Metrics struct {
	upstreamRequests    *prometheus.CounterVec
	upstreamDuration    *prometheus.HistogramVec
	apiConnected        prometheus.Gauge
	modelsLoaded        prometheus.Gauge
	predictions         *prometheus.CounterVec
	healthChecksSkipped prometheus.Counter
}

// NewMetrics registers the dashboard collectors on reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		upstreamRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoai_dashboard_upstream_requests_total",
				Help: "Total number of calls made to the prediction API",
			},
			[]string{"operation", "outcome"},
		),
		upstreamDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoai_dashboard_upstream_request_duration_seconds",
				Help:    "Prediction API call duration in seconds",
				Buckets: prometheus.DefBuckets, // 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10
			},
			[]string{"operation"},
		),
		apiConnected: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "autoai_dashboard_api_connected",
				Help: "Prediction API connectivity (1 = connected, 0 = disconnected)",
			},
		),
		modelsLoaded: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "autoai_dashboard_models_loaded",
				Help: "Number of models in the current listing",
			},
		),
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoai_dashboard_predictions_total",
				Help: "Prediction submissions by outcome",
			},
			[]string{"outcome"},
		),
		healthChecksSkipped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "autoai_dashboard_health_checks_skipped_total",
				Help: "Poller ticks skipped because a health check was still running",
			},
		),
	}
}

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// ObserveCall records one prediction API call.
func (m *Metrics) ObserveCall(op string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	m.upstreamRequests.WithLabelValues(op, outcomeLabel(ok)).Inc()
	m.upstreamDuration.WithLabelValues(op).Observe(d.Seconds())
}

// SetConnected updates the connectivity gauge.
func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.apiConnected.Set(1)
	} else {
		m.apiConnected.Set(0)
	}
}

// SetModelsLoaded updates the model listing gauge.
func (m *Metrics) SetModelsLoaded(n int) {
	if m == nil {
		return
	}
	m.modelsLoaded.Set(float64(n))
}

// RecordPrediction records a submission outcome.
func (m *Metrics) RecordPrediction(ok bool) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcomeLabel(ok)).Inc()
}

// RecordSkippedCheck records a poller tick dropped by the overlap guard.
func (m *Metrics) RecordSkippedCheck() {
	if m == nil {
		return
	}
	m.healthChecksSkipped.Inc()
}
