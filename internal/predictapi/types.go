package predictapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"autoai-dashboard/internal/util"
)

// ModelDescriptor describes one trained model advertised by GET /models.
type ModelDescriptor struct {
	Name           string   `json:"name"`
	Domain         string   `json:"domain"`
	ProblemType    string   `json:"problem_type"`
	Accuracy       *float64 `json:"accuracy,omitempty"` // nil when the server has no score
	SamplesTrained int      `json:"samples_trained"`
	Features       int      `json:"features"`
}

// modelFromMap reads a descriptor field by field and leaves zero values for
// anything missing or of an unexpected type.
func modelFromMap(m map[string]any) ModelDescriptor {
	var d ModelDescriptor
	d.Name, _ = util.ToString(m["name"])
	d.Domain, _ = util.ToString(m["domain"])
	d.ProblemType, _ = util.ToString(m["problem_type"])
	if f, ok := util.ToFloat64(m["accuracy"]); ok {
		d.Accuracy = &f
	}
	d.SamplesTrained, _ = util.ToInt(m["samples_trained"])
	switch v := m["features"].(type) {
	case []any:
		// Some servers list feature names instead of a count.
		d.Features = len(v)
	default:
		d.Features, _ = util.ToInt(v)
	}
	return d
}

// Feature is a single named input value.
type Feature struct {
	Name  string
	Value float64
}

// FeatureRecord is one row of model input. It encodes as a JSON object whose
// keys keep their positional order.
type FeatureRecord []Feature

// PositionalRecord names values feature_1, feature_2, ... in order.
func PositionalRecord(values []float64) FeatureRecord {
	rec := make(FeatureRecord, len(values))
	for i, v := range values {
		rec[i] = Feature{Name: "feature_" + strconv.Itoa(i+1), Value: v}
	}
	return rec
}

// MarshalJSON implements json.Marshaler.
func (r FeatureRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.Name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PredictionRequest is the body of POST /predict.
type PredictionRequest struct {
	Data             []FeatureRecord `json:"data"`
	Domain           string          `json:"domain"`
	ModelName        *string         `json:"model_name"` // nil lets the server pick
	ReturnConfidence bool            `json:"return_confidence"`
}

// PredictionResult is the decoded response of POST /predict.
//
// Predictions hold json.Number for numeric outputs and string for labels.
type PredictionResult struct {
	Predictions      []any     `json:"predictions"`
	Confidence       []float64 `json:"confidence"`
	ModelUsed        string    `json:"model_used"`
	Domain           string    `json:"domain"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
}
