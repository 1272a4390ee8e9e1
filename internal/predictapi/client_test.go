package predictapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu        sync.Mutex
	calls     map[string][]bool
	connected []bool
}

func (o *recordingObserver) ObserveCall(op string, ok bool, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = make(map[string][]bool)
	}
	o.calls[op] = append(o.calls[op], ok)
}

func (o *recordingObserver) SetConnected(connected bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.connected = append(o.connected, connected)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, h http.Handler) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	c, err := NewClient(srv.URL, 5*time.Second, testLogger(), obs)
	require.NoError(t, err)
	return c, obs
}

func TestCheckHealth_Success(t *testing.T) {
	c, obs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"status":"ok","models_loaded":3}`))
	}))

	payload, err := c.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Connected())

	m, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", m["status"])
	assert.Equal(t, json.Number("3"), m["models_loaded"])
	assert.Equal(t, []bool{true}, obs.connected)
	assert.Equal(t, []bool{true}, obs.calls[OpHealth])
}

func TestCheckHealth_NonSuccessStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded"}`))
	}))
	c.connected.Store(true)

	_, err := c.CheckHealth(context.Background())
	require.Error(t, err)

	var ce *ConnectionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusServiceUnavailable, ce.StatusCode)
	assert.False(t, c.Connected())
}

func TestCheckHealth_BadBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))

	_, err := c.CheckHealth(context.Background())
	var ce *ConnectionError
	require.True(t, errors.As(err, &ce))
	assert.False(t, c.Connected())
}

func TestCheckHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second, testLogger(), nil)
	require.NoError(t, err)
	c.connected.Store(true)

	_, err = c.CheckHealth(context.Background())
	var ce *ConnectionError
	require.True(t, errors.As(err, &ce))
	assert.Zero(t, ce.StatusCode)
	assert.NotNil(t, errors.Unwrap(err))
	assert.False(t, c.Connected())
}

func TestListModels(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.Write([]byte(`[
			{"name":"m1","domain":"finance","problem_type":"Classification","accuracy":0.91,"samples_trained":1200,"features":12},
			{"name":"m2","domain":"healthcare","problem_type":"Regression","samples_trained":"lots","features":["a","b","c"]}
		]`))
	}))

	models := c.ListModels(context.Background())
	require.Len(t, models, 2)

	assert.Equal(t, "m1", models[0].Name)
	assert.Equal(t, "finance", models[0].Domain)
	require.NotNil(t, models[0].Accuracy)
	assert.InDelta(t, 0.91, *models[0].Accuracy, 1e-9)
	assert.Equal(t, 1200, models[0].SamplesTrained)
	assert.Equal(t, 12, models[0].Features)

	assert.Nil(t, models[1].Accuracy)
	assert.Zero(t, models[1].SamplesTrained)
	assert.Equal(t, 3, models[1].Features)
}

func TestListModels_NeverFails(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"not a list", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"models":[]}`)) }},
		{"garbage", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`nope`)) }},
		{"empty list", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`[]`)) }},
		{"null", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`null`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler)
			models := c.ListModels(context.Background())
			assert.NotNil(t, models)
			assert.Empty(t, models)
		})
	}
}

func TestListModels_Unreachable(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", time.Second, testLogger(), nil)
	require.NoError(t, err)

	models := c.ListModels(context.Background())
	assert.NotNil(t, models)
	assert.Empty(t, models)
}

func TestPredict_Success(t *testing.T) {
	var got map[string]any
	c, obs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"predictions":[0.73],"confidence":[0.91],"model_used":"m1","domain":"finance","processing_time_ms":9999}`))
	}))

	res, err := c.Predict(context.Background(), PredictionRequest{
		Data:             []FeatureRecord{PositionalRecord([]float64{1, 2})},
		Domain:           "finance",
		ReturnConfidence: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "m1", res.ModelUsed)
	assert.Equal(t, "finance", res.Domain)
	require.Len(t, res.Predictions, 1)
	assert.Equal(t, json.Number("0.73"), res.Predictions[0])
	assert.Equal(t, []float64{0.91}, res.Confidence)
	// The server's own timing is replaced by the client measurement.
	assert.GreaterOrEqual(t, res.ProcessingTimeMs, int64(0))
	assert.Less(t, res.ProcessingTimeMs, int64(9999))

	assert.Equal(t, "finance", got["domain"])
	assert.Nil(t, got["model_name"])
	assert.Equal(t, true, got["return_confidence"])
	assert.Equal(t, []any{map[string]any{"feature_1": 1.0, "feature_2": 2.0}}, got["data"])
	assert.Equal(t, []bool{true}, obs.calls[OpPredict])
}

func TestPredict_MeasuresRoundTrip(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		w.Write([]byte(`{"predictions":["fraud"],"confidence":[0.5],"model_used":"m2","domain":"finance"}`))
	}))

	res, err := c.Predict(context.Background(), PredictionRequest{Domain: "finance"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.ProcessingTimeMs, int64(30))
	assert.Equal(t, "fraud", res.Predictions[0])
}

func TestPredict_ServerDetail(t *testing.T) {
	c, obs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"bad input"}`))
	}))

	res, err := c.Predict(context.Background(), PredictionRequest{Domain: "finance"})
	assert.Nil(t, res)
	var pe *PredictionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusUnprocessableEntity, pe.StatusCode)
	assert.Equal(t, []bool{false}, obs.calls[OpPredict])
}

func TestPredict_StructuredDetail(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","data"],"msg":"field required"}]}`))
	}))

	_, err := c.Predict(context.Background(), PredictionRequest{})
	require.Error(t, err)
	assert.Equal(t, `[{"loc":["body","data"],"msg":"field required"}]`, err.Error())
}

func TestPredict_GenericMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no detail", `{"error":"boom"}`},
		{"null detail", `{"detail":null}`},
		{"not json", `Internal Server Error`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			_, err := c.Predict(context.Background(), PredictionRequest{})
			var pe *PredictionError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, GenericPredictionMessage, err.Error())
		})
	}
}

func TestPredict_TransportFailure(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", time.Second, testLogger(), nil)
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), PredictionRequest{})
	var pe *PredictionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, GenericPredictionMessage, err.Error())
	assert.NotNil(t, pe.Err)
}

func TestSystemStats(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/system/stats", r.URL.Path)
		w.Write([]byte(`{"cpu":0.4}`))
	}))

	stats := c.SystemStats(context.Background())
	m, ok := stats.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("0.4"), m["cpu"])
}

func TestSystemStats_FailureIsNil(t *testing.T) {
	c, obs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	assert.Nil(t, c.SystemStats(context.Background()))
	assert.Equal(t, []bool{false}, obs.calls[OpStats])
}

func TestEndpointKeepsBasePath(t *testing.T) {
	c, err := NewClient("http://example.com/api/", time.Second, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/predict", c.endpoint("/predict"))
}

func TestRoundMillis(t *testing.T) {
	assert.Equal(t, int64(0), roundMillis(0))
	assert.Equal(t, int64(1), roundMillis(500*time.Microsecond))
	assert.Equal(t, int64(0), roundMillis(499*time.Microsecond))
	assert.Equal(t, int64(45), roundMillis(45*time.Millisecond+200*time.Microsecond))
}
