// Package view renders dashboard fragments from plain value objects.
//
// Nothing in here talks to the prediction API or inspects errors; callers
// hand over already-resolved values.
package view

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strconv"

	"github.com/dustin/go-humanize"
)

// ProblemTypeClassification gets its own badge colour on model cards.
const ProblemTypeClassification = "Classification"

// Confidence tiers.
const (
	TierGood    = "good"
	TierCaution = "caution"
	TierPoor    = "poor"
)

// Template names.
const (
	TmplPage     = "page"
	TmplStatus   = "status"
	TmplModels   = "models"
	TmplOptions  = "model_options"
	TmplDomains  = "domain_options"
	TmplFields   = "fields"
	TmplResult   = "result"
	TmplFailure  = "failure"
	TmplMetrics  = "metrics"
	TmplStarting = "starting"
)

// Status is the connectivity indicator.
type Status struct {
	Connected bool
}

// Model is one model card / select option.
type Model struct {
	Name           string
	Domain         string
	ProblemType    string
	Accuracy       *float64
	SamplesTrained int
	Features       int
}

// Field is one numeric input of the prediction form.
type Field struct {
	Name        string
	Label       string
	Placeholder string
}

// Result is a successful prediction.
type Result struct {
	Prediction       any
	Confidence       *float64
	ProcessingTimeMs int64
	ModelUsed        string
	Domain           string
}

// Failure is a failed prediction.
type Failure struct {
	Message string
}

// Metrics are the header counters.
type Metrics struct {
	ActiveModels     int
	TotalPredictions int64
	AvgAccuracy      *float64
	ResponseTimeMs   *int64
}

// Page is the full dashboard. Started is false when the page is rendered
// before startup finished; the browser then reloads its fragments.
type Page struct {
	Started       bool
	Status        Status
	Metrics       Metrics
	Models        []Model
	Domains       []string
	SelectedModel string
	Fields        []Field
}

// Options is the model select.
type Options struct {
	Models   []Model
	Selected string
}

// Renderer executes the dashboard templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses every *.html template in fsys.
func New(fsys fs.FS) (*Renderer, error) {
	t, err := template.New("dashboard").Funcs(Funcs()).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Render executes the named template.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// Funcs returns the template helpers.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"prediction": FormatPrediction,
		"confidence": FormatConfidence,
		"tier":       Tier,
		"tierClass":  TierClass,
		"accuracy":   FormatAccuracy,
		"comma":      humanize.Comma,
		"millis":     FormatMillis,
		"badgeClass": BadgeClass,
		"options":    func(models []Model, selected string) Options {
			return Options{Models: models, Selected: selected}
		},
	}
}

// FormatPrediction shows numbers with four decimals and anything else as-is.
func FormatPrediction(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return p
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return p.String()
		}
		return strconv.FormatFloat(f, 'f', 4, 64)
	case float64:
		return strconv.FormatFloat(p, 'f', 4, 64)
	case float32:
		return strconv.FormatFloat(float64(p), 'f', 4, 32)
	case int:
		return strconv.FormatFloat(float64(p), 'f', 4, 64)
	case int64:
		return strconv.FormatFloat(float64(p), 'f', 4, 64)
	default:
		return fmt.Sprint(p)
	}
}

// FormatConfidence renders a 0..1 score as a percentage with one decimal.
func FormatConfidence(c *float64) string {
	if c == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*c*100, 'f', 1, 64) + "%"
}

// Tier classifies a confidence score. A missing score is poor.
func Tier(c *float64) string {
	switch {
	case c == nil:
		return TierPoor
	case *c > 0.8:
		return TierGood
	case *c > 0.6:
		return TierCaution
	default:
		return TierPoor
	}
}

// TierClass maps a tier to its text colour class.
func TierClass(tier string) string {
	switch tier {
	case TierGood:
		return "text-green-600"
	case TierCaution:
		return "text-yellow-600"
	default:
		return "text-red-600"
	}
}

// FormatAccuracy renders an optional 0..1 accuracy.
func FormatAccuracy(a *float64) string {
	if a == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*a*100, 'f', 1, 64) + "%"
}

// FormatMillis renders an optional latency.
func FormatMillis(ms *int64) string {
	if ms == nil {
		return "N/A"
	}
	return strconv.FormatInt(*ms, 10) + "ms"
}

// BadgeClass maps a model's problem type to its badge colours.
func BadgeClass(problemType string) string {
	if problemType == ProblemTypeClassification {
		return "bg-green-100 text-green-800"
	}
	return "bg-blue-100 text-blue-800"
}
