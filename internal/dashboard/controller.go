// Package dashboard holds the dashboard state and the flows that change it:
// startup, connection checks, model loading and prediction submissions.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"autoai-dashboard/internal/charts"
	"autoai-dashboard/internal/predictapi"
	"autoai-dashboard/internal/supervisor"
	"autoai-dashboard/internal/util"
	"autoai-dashboard/internal/view"
)

// API is the subset of predictapi.Client the controller depends on.
type API interface {
	CheckHealth(ctx context.Context) (any, error)
	ListModels(ctx context.Context) []predictapi.ModelDescriptor
	Predict(ctx context.Context, pr predictapi.PredictionRequest) (*predictapi.PredictionResult, error)
	SystemStats(ctx context.Context) any
	Connected() bool
}

// Options tunes the controller.
type Options struct {
	PollInterval  time.Duration
	HealthTimeout time.Duration
}

// PredictionForm is one submission of the prediction form.
type PredictionForm struct {
	Domain    string
	ModelName string // empty lets the server pick
	Inputs    []string
}

// Outcome is the result of a submission. Exactly one field is set.
type Outcome struct {
	Result  *view.Result
	Failure *view.Failure
}

// Controller owns the dashboard state.
type Controller struct {
	api     API
	charts  *charts.Adapter
	metrics *supervisor.Metrics
	logger  *slog.Logger
	opts    Options

	health singleflight.Group
	poller *supervisor.Poller
	bound  atomic.Bool

	mu           sync.RWMutex
	models       []predictapi.ModelDescriptor
	lastHealth   any
	responseTime *int64
	predictions  int64
}

// New wires a controller. metrics may be nil.
func New(api API, ch *charts.Adapter, metrics *supervisor.Metrics, logger *slog.Logger, opts Options) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 5 * time.Second
	}
	c := &Controller{
		api:     api,
		charts:  ch,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
		models:  []predictapi.ModelDescriptor{},
	}
	c.poller = supervisor.NewPoller("health", opts.PollInterval, func(ctx context.Context) {
		c.CheckConnection(ctx)
	}, metrics, logger)
	return c
}

// Start runs the startup sequence and then keeps polling health until ctx
// is cancelled or Shutdown is called. It returns once the poller is running.
func (c *Controller) Start(ctx context.Context) {
	c.CheckConnection(ctx)
	c.LoadModels(ctx)
	c.bound.Store(true)
	c.initCharts()
	c.poller.Start(ctx)
	c.logger.Info("dashboard started",
		"connected", c.api.Connected(),
		"models", c.ModelCount(),
		"poll_interval", c.opts.PollInterval)
}

// Bound reports whether interaction handlers accept requests.
func (c *Controller) Bound() bool {
	return c.bound.Load()
}

// Shutdown stops polling and waits for an in-flight check.
func (c *Controller) Shutdown() {
	c.poller.Shutdown()
}

// CheckConnection runs a health check and reports connectivity. Concurrent
// callers share the same in-flight check.
func (c *Controller) CheckConnection(ctx context.Context) bool {
	v, _, _ := c.health.Do("health", func() (any, error) {
		// Shared by every waiting caller, so it must not die with the first one.
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.HealthTimeout)
		defer cancel()

		start := time.Now()
		payload, err := c.api.CheckHealth(hctx)
		if err != nil {
			var ce *predictapi.ConnectionError
			if errors.As(err, &ce) {
				c.logger.Debug("api unreachable", "status", ce.StatusCode, "err", err)
			} else {
				c.logger.Warn("health check failed", "err", err)
			}
			return false, nil
		}
		ms := time.Since(start).Milliseconds()

		c.mu.Lock()
		c.lastHealth = payload
		c.responseTime = &ms
		c.mu.Unlock()
		return true, nil
	})
	return v.(bool)
}

// LoadModels replaces the model list. A failed fetch leaves an empty list.
func (c *Controller) LoadModels(ctx context.Context) []predictapi.ModelDescriptor {
	models := c.api.ListModels(ctx)
	if models == nil {
		models = []predictapi.ModelDescriptor{}
	}
	c.mu.Lock()
	c.models = models
	c.mu.Unlock()
	c.metrics.SetModelsLoaded(len(models))
	c.logger.Debug("models loaded", "count", len(models))
	return cloneModels(models)
}

// Refresh reloads the models and brings both charts up to date. When the
// domains are unchanged only the values are replaced; otherwise the charts
// are re-initialized.
func (c *Controller) Refresh(ctx context.Context) []predictapi.ModelDescriptor {
	models := c.LoadModels(ctx)
	perf, dist := Aggregate(models)

	if cur := c.charts.Performance(); cur != nil && slices.Equal(cur.Data.Labels, perf.Labels) {
		c.charts.UpdatePerformance(perf.Values)
	} else {
		c.charts.InitPerformance(perf)
	}
	if cur := c.charts.Distribution(); cur != nil && slices.Equal(cur.Data.Labels, dist.Labels) {
		c.charts.UpdateDistribution(dist.Values)
	} else {
		c.charts.InitDistribution(dist)
	}
	return models
}

func (c *Controller) initCharts() {
	c.mu.RLock()
	perf, dist := Aggregate(c.models)
	c.mu.RUnlock()
	c.charts.InitPerformance(perf)
	c.charts.InitDistribution(dist)
}

// Predict submits the form and returns exactly one outcome.
func (c *Controller) Predict(ctx context.Context, form PredictionForm) Outcome {
	values := make([]float64, len(form.Inputs))
	for i, s := range form.Inputs {
		values[i] = util.FloatOrZero(s)
	}
	req := predictapi.PredictionRequest{
		Data:             []predictapi.FeatureRecord{predictapi.PositionalRecord(values)},
		Domain:           form.Domain,
		ReturnConfidence: true,
	}
	if name := strings.TrimSpace(form.ModelName); name != "" {
		req.ModelName = &name
	}

	res, err := c.api.Predict(ctx, req)
	if err != nil {
		var pe *predictapi.PredictionError
		if errors.As(err, &pe) {
			c.logger.Debug("prediction rejected", "status", pe.StatusCode, "err", err)
		} else {
			c.logger.Warn("prediction failed", "err", err)
		}
		c.metrics.RecordPrediction(false)
		return Outcome{Failure: &view.Failure{Message: err.Error()}}
	}

	c.mu.Lock()
	c.predictions++
	c.mu.Unlock()
	c.metrics.RecordPrediction(true)
	return Outcome{Result: resultView(res)}
}

func resultView(res *predictapi.PredictionResult) *view.Result {
	r := &view.Result{
		ProcessingTimeMs: res.ProcessingTimeMs,
		ModelUsed:        res.ModelUsed,
		Domain:           res.Domain,
	}
	if len(res.Predictions) > 0 {
		r.Prediction = res.Predictions[0]
	}
	if len(res.Confidence) > 0 {
		conf := res.Confidence[0]
		r.Confidence = &conf
	}
	return r
}

// Charts returns the current chart configs. Either is nil before startup
// initializes it.
func (c *Controller) Charts() (performance, distribution *charts.Config) {
	return c.charts.Performance(), c.charts.Distribution()
}

// SystemStats passes GET /system/stats through. It is nil when unavailable.
func (c *Controller) SystemStats(ctx context.Context) any {
	return c.api.SystemStats(ctx)
}

// Connected reports the latest health check outcome.
func (c *Controller) Connected() bool {
	return c.api.Connected()
}

// HealthCheckState reports whether a poll is in flight and when the last
// poll finished. The zero time means no poll has completed yet.
func (c *Controller) HealthCheckState() (inFlight bool, lastRun time.Time) {
	return c.poller.Running(), c.poller.LastRun()
}

// LastHealth returns the latest successful health payload.
func (c *Controller) LastHealth() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastHealth
}

// ModelCount returns the number of loaded models.
func (c *Controller) ModelCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// Models returns a copy of the loaded models.
func (c *Controller) Models() []predictapi.ModelDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneModels(c.models)
}

func cloneModels(in []predictapi.ModelDescriptor) []predictapi.ModelDescriptor {
	out := make([]predictapi.ModelDescriptor, len(in))
	copy(out, in)
	return out
}
