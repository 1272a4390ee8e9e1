package util

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_UsesNumber(t *testing.T) {
	var v any
	require.NoError(t, DecodeJSON(strings.NewReader(`{"n": 12345678901234567890}`), &v))
	assert.Equal(t, json.Number("12345678901234567890"), v.(map[string]any)["n"])
}

func TestDecodeJSON_RejectsTrailingContent(t *testing.T) {
	var v any
	assert.Error(t, DecodeJSON(strings.NewReader(`{} {}`), &v))
	assert.Error(t, DecodeJSON(strings.NewReader(`{} x`), &v))
	assert.NoError(t, DecodeJSON(strings.NewReader("{}\n  "), &v))
}

func TestDecodeJSONMap(t *testing.T) {
	m, err := DecodeJSONMap([]byte(`{"status":"ok","uptime":12345678901234}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", m["status"])
	assert.Equal(t, json.Number("12345678901234"), m["uptime"])

	m, err = DecodeJSONMap([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Empty(t, m)

	_, err = DecodeJSONMap([]byte(`[1]`))
	assert.Error(t, err)
}

func TestReadAllLimit(t *testing.T) {
	b, err := ReadAllLimit(strings.NewReader("abcdef"), 3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))

	b, err = ReadAllLimit(strings.NewReader("abc"), 0)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
}
