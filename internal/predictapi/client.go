// Package predictapi is the client for the remote prediction API.
//
// Each of the four operations has its own failure contract: CheckHealth and
// Predict return typed errors, ListModels and SystemStats never fail and fall
// back to an empty list or nil.
package predictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"autoai-dashboard/internal/util"
)

const (
	OpHealth  = "health"
	OpModels  = "models"
	OpPredict = "predict"
	OpStats   = "stats"

	maxErrorBody = 1024 * 1024
)

// Observer receives call outcomes. supervisor.Metrics implements it.
type Observer interface {
	ObserveCall(op string, ok bool, d time.Duration)
	SetConnected(connected bool)
}

// Client performs the four prediction API calls and owns the connectivity flag.
type Client struct {
	BaseURL *url.URL
	HTTP    *http.Client

	logger    *slog.Logger
	observer  Observer
	connected atomic.Bool
}

// NewClient constructs a prediction API client. observer may be nil.
func NewClient(base string, timeout time.Duration, logger *slog.Logger, observer Observer) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: u,
		HTTP: &http.Client{
			Timeout: timeout,
		},
		logger:   logger,
		observer: observer,
	}, nil
}

// Connected reports the outcome of the latest health check.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

func (c *Client) setConnected(v bool) {
	c.connected.Store(v)
	if c.observer != nil {
		c.observer.SetConnected(v)
	}
}

func (c *Client) observe(op string, ok bool, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveCall(op, ok, time.Since(start))
	}
}

func (c *Client) endpoint(path string) string {
	return c.BaseURL.JoinPath(path).String()
}

// CheckHealth calls GET /health and returns the decoded payload as-is.
func (c *Client) CheckHealth(ctx context.Context) (any, error) {
	start := time.Now()
	payload, err := c.checkHealth(ctx)
	c.observe(OpHealth, err == nil, start)
	c.setConnected(err == nil)
	return payload, err
}

func (c *Client) checkHealth(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/health"), nil)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ConnectionError{StatusCode: resp.StatusCode}
	}

	var payload any
	if err := util.DecodeJSON(resp.Body, &payload); err != nil {
		return nil, &ConnectionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode health: %w", err)}
	}
	return payload, nil
}

// ListModels calls GET /models. Failures are logged and yield an empty list.
func (c *Client) ListModels(ctx context.Context) []ModelDescriptor {
	start := time.Now()
	models, err := c.listModels(ctx)
	c.observe(OpModels, err == nil, start)
	if err != nil {
		c.logger.Warn("error fetching models", "err", err)
		return []ModelDescriptor{}
	}
	return models
}

func (c *Client) listModels(ctx context.Context) ([]ModelDescriptor, error) {
	var raw []map[string]any
	if err := c.getJSON(ctx, "/models", &raw); err != nil {
		return nil, err
	}
	out := make([]ModelDescriptor, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		out = append(out, modelFromMap(m))
	}
	return out, nil
}

// SystemStats calls GET /system/stats. Failures are logged and yield nil.
func (c *Client) SystemStats(ctx context.Context) any {
	start := time.Now()
	var stats any
	err := c.getJSON(ctx, "/system/stats", &stats)
	c.observe(OpStats, err == nil, start)
	if err != nil {
		c.logger.Warn("error fetching stats", "err", err)
		return nil
	}
	return stats
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s status %d", path, resp.StatusCode)
	}
	if err := util.DecodeJSON(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Predict calls POST /predict and stamps the result with the measured
// round-trip time in milliseconds.
func (c *Client) Predict(ctx context.Context, pr PredictionRequest) (*PredictionResult, error) {
	start := time.Now()
	res, err := c.predict(ctx, pr)
	c.observe(OpPredict, err == nil, start)
	if err != nil {
		c.logger.Debug("prediction error", "err", err, "domain", pr.Domain)
	}
	return res, err
}

func (c *Client) predict(ctx context.Context, pr PredictionRequest) (*PredictionResult, error) {
	body, err := json.Marshal(pr)
	if err != nil {
		return nil, &PredictionError{Err: fmt.Errorf("encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/predict"), bytes.NewReader(body))
	if err != nil {
		return nil, &PredictionError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &PredictionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, predictionErrorFromBody(resp)
	}

	var out PredictionResult
	if err := util.DecodeJSON(resp.Body, &out); err != nil {
		return nil, &PredictionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode prediction: %w", err)}
	}
	out.ProcessingTimeMs = roundMillis(time.Since(start))
	return &out, nil
}

// predictionErrorFromBody extracts the "detail" field of an error response.
// A non-string detail (for example a list of validation errors) is shown as
// compact JSON.
func predictionErrorFromBody(resp *http.Response) *PredictionError {
	pe := &PredictionError{StatusCode: resp.StatusCode}
	buf, err := util.ReadAllLimit(resp.Body, maxErrorBody)
	if err != nil {
		pe.Err = err
		return pe
	}
	m, err := util.DecodeJSONMap(buf)
	if err != nil {
		pe.Err = fmt.Errorf("decode error body: %w", err)
		return pe
	}
	switch d := m["detail"].(type) {
	case nil:
	case string:
		pe.Detail = d
	default:
		pe.Detail = util.MustJSON(d)
	}
	return pe
}

func roundMillis(d time.Duration) int64 {
	ms := math.Round(float64(d) / float64(time.Millisecond))
	if ms < 0 {
		return 0
	}
	return int64(ms)
}
