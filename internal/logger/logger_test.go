package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(Options{Level: "warn", Format: "json", Output: &buf})

	l.Info("dataset_loaded")
	assert.Empty(t, buf.String())

	l.Warn("label_coordinate_invalid", "acronym", "NL")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "label_coordinate_invalid", rec["msg"])
	assert.Equal(t, "NL", rec["acronym"])

	assert.Same(t, l, L())
}
