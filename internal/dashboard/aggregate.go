package dashboard

import (
	"autoai-dashboard/internal/charts"
	"autoai-dashboard/internal/predictapi"
)

// defaultAccuracy stands in for models without a recorded score.
const defaultAccuracy = 0.8

// Aggregate builds the chart series from the model list. Both series use the
// distinct domains in first-seen order: perf holds the mean accuracy in
// percent, dist holds the number of models.
func Aggregate(models []predictapi.ModelDescriptor) (perf, dist charts.Series) {
	var (
		domains []string
		sums    = map[string]float64{}
		counts  = map[string]int{}
	)
	for _, m := range models {
		if _, seen := counts[m.Domain]; !seen {
			domains = append(domains, m.Domain)
		}
		acc := defaultAccuracy
		if m.Accuracy != nil {
			acc = *m.Accuracy
		}
		sums[m.Domain] += acc * 100
		counts[m.Domain]++
	}

	perf = charts.Series{Labels: make([]string, len(domains)), Values: make([]float64, len(domains))}
	dist = charts.Series{Labels: make([]string, len(domains)), Values: make([]float64, len(domains))}
	for i, d := range domains {
		n := counts[d]
		perf.Labels[i], dist.Labels[i] = d, d
		perf.Values[i] = sums[d] / float64(n)
		dist.Values[i] = float64(n)
	}
	return perf, dist
}

// Domains returns the distinct model domains in first-seen order.
func Domains(models []predictapi.ModelDescriptor) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range models {
		if m.Domain == "" || seen[m.Domain] {
			continue
		}
		seen[m.Domain] = true
		out = append(out, m.Domain)
	}
	return out
}
