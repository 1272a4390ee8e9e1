package dashboard

import (
	"strconv"

	"autoai-dashboard/internal/predictapi"
	"autoai-dashboard/internal/view"
)

// genericFieldCount is the size of the input layout. Every domain gets the
// same layout.
const genericFieldCount = 4

// InputFields returns the input layout for a domain. The domain is not
// consulted yet; every domain gets the generic layout.
func InputFields(_ string) []view.Field {
	fields := make([]view.Field, genericFieldCount)
	for i := range fields {
		n := strconv.Itoa(i + 1)
		fields[i] = view.Field{
			Name:        "feature_" + n,
			Label:       "Feature " + n,
			Placeholder: "Value " + n,
		}
	}
	return fields
}

// Status returns the connectivity indicator.
func (c *Controller) Status() view.Status {
	return view.Status{Connected: c.api.Connected()}
}

// Metrics returns the header counters.
func (c *Controller) Metrics() view.Metrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m := view.Metrics{
		ActiveModels:     len(c.models),
		TotalPredictions: c.predictions,
	}
	var sum float64
	var n int
	for _, md := range c.models {
		if md.Accuracy != nil {
			sum += *md.Accuracy
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		m.AvgAccuracy = &avg
	}
	if c.responseTime != nil {
		ms := *c.responseTime
		m.ResponseTimeMs = &ms
	}
	return m
}

// ModelViews returns the loaded models as cards.
func (c *Controller) ModelViews() []view.Model {
	return toViewModels(c.Models())
}

// Page returns everything the full dashboard renders, with selected
// preselected in the model select.
func (c *Controller) Page(selected string) view.Page {
	models := c.Models()
	domains := Domains(models)
	first := ""
	if len(domains) > 0 {
		first = domains[0]
	}
	return view.Page{
		Started:       c.Bound(),
		Status:        c.Status(),
		Metrics:       c.Metrics(),
		Models:        toViewModels(models),
		Domains:       domains,
		SelectedModel: selected,
		Fields:        InputFields(first),
	}
}

// Domains returns the distinct domains of the loaded models.
func (c *Controller) Domains() []string {
	return Domains(c.Models())
}

func toViewModels(models []predictapi.ModelDescriptor) []view.Model {
	out := make([]view.Model, len(models))
	for i, m := range models {
		out[i] = view.Model{
			Name:           m.Name,
			Domain:         m.Domain,
			ProblemType:    m.ProblemType,
			Accuracy:       m.Accuracy,
			SamplesTrained: m.SamplesTrained,
			Features:       m.Features,
		}
	}
	return out
}
