package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"budget-tracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), input)
	}
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Server: config.ServerConfig{Environment: "production"}}

	New(cfg, &buf).Info("budget set", "month", 3)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "budget set", record["msg"])
	assert.Equal(t, float64(3), record["month"])
}

func TestNew_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Server: config.ServerConfig{Environment: "development"}}

	New(cfg, &buf).Info("budget set")

	assert.Contains(t, buf.String(), "msg=\"budget set\"")
}

func TestNew_LevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "development"},
		Log:    config.LogConfig{Level: "warn", Format: "json"},
	}

	logger := New(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
