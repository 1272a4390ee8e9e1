package predictapi

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionalRecordKeepsOrder(t *testing.T) {
	values := make([]float64, 11)
	for i := range values {
		values[i] = float64(i)
	}
	b, err := json.Marshal(PositionalRecord(values))
	require.NoError(t, err)
	assert.Equal(t,
		`{"feature_1":0,"feature_2":1,"feature_3":2,"feature_4":3,"feature_5":4,"feature_6":5,"feature_7":6,"feature_8":7,"feature_9":8,"feature_10":9,"feature_11":10}`,
		string(b))
}

func TestFeatureRecordEmpty(t *testing.T) {
	b, err := json.Marshal(FeatureRecord{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}

func TestFeatureRecordRejectsNonFinite(t *testing.T) {
	_, err := json.Marshal(FeatureRecord{{Name: "x", Value: math.Inf(1)}})
	assert.Error(t, err)
}

func TestPredictionRequestModelName(t *testing.T) {
	name := "m1"
	b, err := json.Marshal(PredictionRequest{Domain: "finance", ModelName: &name, ReturnConfidence: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null,"domain":"finance","model_name":"m1","return_confidence":true}`, string(b))

	b, err = json.Marshal(PredictionRequest{Domain: "finance"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null,"domain":"finance","model_name":null,"return_confidence":false}`, string(b))
}

func TestModelFromMap(t *testing.T) {
	d := modelFromMap(map[string]any{
		"name":            "m1",
		"domain":          "finance",
		"problem_type":    "Classification",
		"accuracy":        json.Number("0"),
		"samples_trained": json.Number("10"),
		"features":        json.Number("4"),
	})
	require.NotNil(t, d.Accuracy)
	assert.Equal(t, 0.0, *d.Accuracy)
	assert.Equal(t, 10, d.SamplesTrained)
	assert.Equal(t, 4, d.Features)

	d = modelFromMap(map[string]any{"name": 7})
	assert.Empty(t, d.Name)
	assert.Nil(t, d.Accuracy)
}
