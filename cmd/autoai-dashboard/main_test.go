package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestLogOutput_Stdout(t *testing.T) {
	w, err := logOutput("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)
}

func TestLogOutput_RotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.log")
	w, err := logOutput(path)
	require.NoError(t, err)

	newLogger("info", w).Info("hello")

	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	b, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
}
