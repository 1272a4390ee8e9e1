// Package charts holds the two dashboard charts as Chart.js configurations.
//
// The browser hands these configs to Chart.js unchanged; nothing here
// computes aggregates.
package charts

import "sync"

const (
	KindBar      = "bar"
	KindDoughnut = "doughnut"
)

// Series is a set of pre-aggregated label/value pairs.
type Series struct {
	Labels []string
	Values []float64
}

// Dataset mirrors a Chart.js dataset.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderColor     []string  `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// Data mirrors Chart.js "data".
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Config is a complete Chart.js chart configuration.
type Config struct {
	Type     string         `json:"type"`
	Data     Data           `json:"data"`
	Options  map[string]any `json:"options"`
	Revision int            `json:"revision"` // bumped on every change so the page knows to redraw
}

// Adapter owns the performance and distribution charts.
type Adapter struct {
	mu           sync.RWMutex
	performance  *Config
	distribution *Config
	revision     int
}

// NewAdapter returns an adapter with neither chart initialized.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// InitPerformance (re)creates the accuracy-by-domain bar chart.
func (a *Adapter) InitPerformance(s Series) {
	cfg := &Config{
		Type: KindBar,
		Data: Data{
			Labels: cloneStrings(s.Labels),
			Datasets: []Dataset{{
				Label:           "Accuracy (%)",
				Data:            cloneFloats(s.Values),
				BackgroundColor: performanceFill,
				BorderColor:     performanceBorder,
				BorderWidth:     1,
			}},
		},
		Options: map[string]any{
			"responsive": true,
			"plugins": map[string]any{
				"title": map[string]any{"display": true, "text": "Model Performance by Domain"},
			},
			"scales": map[string]any{
				"y": map[string]any{
					"beginAtZero": true,
					"max":         100,
					"title":       map[string]any{"display": true, "text": "Accuracy (%)"},
				},
			},
		},
	}
	a.mu.Lock()
	a.revision++
	cfg.Revision = a.revision
	a.performance = cfg
	a.mu.Unlock()
}

// InitDistribution (re)creates the models-per-domain doughnut chart.
func (a *Adapter) InitDistribution(s Series) {
	cfg := &Config{
		Type: KindDoughnut,
		Data: Data{
			Labels: cloneStrings(s.Labels),
			Datasets: []Dataset{{
				Data:            cloneFloats(s.Values),
				BackgroundColor: distributionFill,
				BorderColor:     distributionBorder,
				BorderWidth:     2,
			}},
		},
		Options: map[string]any{
			"responsive": true,
			"plugins": map[string]any{
				"legend": map[string]any{"position": "bottom"},
				"title":  map[string]any{"display": true, "text": "Dataset Distribution by Domain"},
			},
		},
	}
	a.mu.Lock()
	a.revision++
	cfg.Revision = a.revision
	a.distribution = cfg
	a.mu.Unlock()
}

// UpdatePerformance replaces the bar values. It is a no-op before InitPerformance.
func (a *Adapter) UpdatePerformance(values []float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.replaceData(a.performance, values)
}

// UpdateDistribution replaces the doughnut values. It is a no-op before InitDistribution.
func (a *Adapter) UpdateDistribution(values []float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.replaceData(a.distribution, values)
}

func (a *Adapter) replaceData(cfg *Config, values []float64) bool {
	if cfg == nil {
		return false
	}
	cfg.Data.Datasets[0].Data = cloneFloats(values)
	a.revision++
	cfg.Revision = a.revision
	return true
}

// Performance returns a copy of the bar chart config, or nil before init.
func (a *Adapter) Performance() *Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.performance.clone()
}

// Distribution returns a copy of the doughnut chart config, or nil before init.
func (a *Adapter) Distribution() *Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.distribution.clone()
}

// clone copies the mutable parts. Options are never modified after init and
// are shared.
func (c *Config) clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Data.Labels = cloneStrings(c.Data.Labels)
	out.Data.Datasets = make([]Dataset, len(c.Data.Datasets))
	for i, ds := range c.Data.Datasets {
		ds.Data = cloneFloats(ds.Data)
		out.Data.Datasets[i] = ds
	}
	return &out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneFloats(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
