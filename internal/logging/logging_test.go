package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalc/internal/config"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, LevelFromString(in), in)
	}
}

func TestNewTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("rule", "power"))
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "rule=power")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "debug", Format: "json", IncludeSrc: true}, &buf)
	logger.Debug("integration pruned", slog.Int("depth", 3))

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "integration pruned", rec["msg"])
	assert.Equal(t, float64(3), rec["depth"])

	source, ok := rec["source"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "logging_test.go", source["file"])
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gocalc.log")
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "info", Format: "json", File: path, MaxSize: 1}, &buf)
	logger.Info("to both")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestInitSetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := Init(config.LogConfig{Level: "info", Format: "text"}, &buf)
	slog.Info("via default")
	assert.Same(t, logger, slog.Default())
	assert.Contains(t, buf.String(), "via default")
}
