package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirocosta/todolist/internal/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		level   string
		want    slog.Level
		wantErr bool
	}{
		"debug":   {level: "debug", want: slog.LevelDebug},
		"info":    {level: "info", want: slog.LevelInfo},
		"default": {level: "", want: slog.LevelInfo},
		"warn":    {level: "warn", want: slog.LevelWarn},
		"warning": {level: "warning", want: slog.LevelWarn},
		"error":   {level: "error", want: slog.LevelError},
		"unknown": {level: "loud", wantErr: true},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tc.level)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "id", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "abc", line["id"])
}

func TestNewText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "debug", Format: "text"}, &buf)
	require.NoError(t, err)

	logger.Debug("listing todos", "count", 2)

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg="listing todos"`)
	assert.Contains(t, buf.String(), "count=2")
}

func TestNewPretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "info", Format: "pretty"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Error("store unavailable", "driver", "mongo")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "store unavailable")
	assert.Contains(t, buf.String(), "mongo")
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	_, err := New(config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, `unknown log format "xml"`)

	_, err = New(config.LogConfig{Level: "chatty", Format: "text"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, `unknown log level "chatty"`)
}
