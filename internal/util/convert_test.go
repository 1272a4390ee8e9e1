package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatOrZero(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"12abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-Infinity", 0},
		{"3.5", 3.5},
		{" -2 ", -2},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FloatOrZero(tt.in))
			// Applying the default twice changes nothing.
			assert.Equal(t, tt.want, FloatOrZero(floatString(FloatOrZero(tt.in))))
		})
	}
}

func floatString(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func TestToFloat64(t *testing.T) {
	f, ok := ToFloat64(json.Number("0.73"))
	require.True(t, ok)
	assert.InDelta(t, 0.73, f, 1e-9)

	_, ok = ToFloat64("0.73")
	assert.False(t, ok)

	f, ok = ToFloat64(2)
	require.True(t, ok)
	assert.Equal(t, 2.0, f)
}

func TestToInt(t *testing.T) {
	n, ok := ToInt(json.Number("12"))
	require.True(t, ok)
	assert.Equal(t, 12, n)

	n, ok = ToInt(json.Number("12.9"))
	require.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ToInt("12")
	assert.False(t, ok)
}
