package supervisor

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveCall(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveCall("predict", true, 120*time.Millisecond)
	m.ObserveCall("predict", false, 5*time.Millisecond)
	m.ObserveCall("predict", true, 80*time.Millisecond)
	m.ObserveCall("", true, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("predict", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("predict", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("unknown", "success")))
}

func TestMetrics_Gauges(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetConnected(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiConnected))
	m.SetConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.apiConnected))

	m.SetModelsLoaded(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.modelsLoaded))
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordPrediction(true)
	m.RecordPrediction(true)
	m.RecordPrediction(false)
	m.RecordSkippedCheck()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.predictions.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.healthChecksSkipped))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	// None of these should panic.
	m.ObserveCall("health", true, time.Second)
	m.SetConnected(true)
	m.SetModelsLoaded(1)
	m.RecordPrediction(false)
	m.RecordSkippedCheck()
}
