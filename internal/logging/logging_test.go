package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wailsapp/wails/v2/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestWailsLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, WailsLevel("debug"))
	assert.Equal(t, logger.INFO, WailsLevel("info"))
	assert.Equal(t, logger.WARNING, WailsLevel("warn"))
	assert.Equal(t, logger.ERROR, WailsLevel("error"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "json")

	l.Info("dropped")
	l.Warn("kept", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "value", entry["key"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "text")

	l.Debug("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestWailsLogger(t *testing.T) {
	var buf bytes.Buffer
	w := NewWailsLogger(New(&buf, "debug", "json"))

	w.Warning("asset server slow\n")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "asset server slow", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "wails", entry["component"])
}
