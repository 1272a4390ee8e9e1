package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Poller runs a task on a fixed interval. At most one run is in flight at a
// time: a tick that arrives while the previous run is still going is skipped.
type Poller struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context)
	metrics  *Metrics
	logger   *slog.Logger

	running  atomic.Bool
	lastRun  atomic.Value // time.Time
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a poller. Call Start to begin ticking.
func NewPoller(name string, interval time.Duration, task func(ctx context.Context), metrics *Metrics, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		name:     name,
		interval: interval,
		task:     task,
		metrics:  metrics,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the ticking goroutine. The first run happens one interval
// from now; callers that need an immediate run call TryRun themselves.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !p.TryRun(ctx) {
				p.logger.Debug("poll skipped, previous run still in flight", "poller", p.name)
				p.metrics.RecordSkippedCheck()
			}
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// TryRun starts one run in the background unless another is in flight.
// It reports whether a run was started.
func (p *Poller) TryRun(ctx context.Context) bool {
	if !p.running.CompareAndSwap(false, true) {
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.running.Store(false)
		p.task(ctx)
		p.lastRun.Store(time.Now())
	}()
	return true
}

// Running reports whether a run is in flight.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// LastRun returns the completion time of the latest run.
func (p *Poller) LastRun() time.Time {
	if v := p.lastRun.Load(); v != nil {
		return v.(time.Time)
	}
	return time.Time{}
}

// Shutdown stops ticking and waits for an in-flight run to return.
func (p *Poller) Shutdown() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	p.wg.Wait()
}
