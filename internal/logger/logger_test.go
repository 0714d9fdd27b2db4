package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func reset() {
	globalLogger = nil
	once = sync.Once{}
}

func TestGet_BeforeInit(t *testing.T) {
	reset()
	assert.NotNil(t, Get())
	assert.NoError(t, Sync())
}

func TestInit_OnlyFirstCallWins(t *testing.T) {
	reset()
	require.NoError(t, Init(Config{Level: "debug", Format: "json"}))
	first := Get()
	require.NoError(t, Init(Config{Level: "error", Format: "text"}))
	assert.Same(t, first, Get())
	reset()
}

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := Build(Config{Level: "info", Format: "json"}, zapcore.AddSync(&buf))

	log.Debug("hidden")
	log.Info("export finished", zap.String("template", "modern"), zap.Int("pages", 2))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "export finished", entry["msg"])
	assert.Equal(t, "modern", entry["template"])
	assert.EqualValues(t, 2, entry["pages"])
}

func TestBuild_TextAndInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Build(Config{Level: "verbose", Format: "text"}, zapcore.AddSync(&buf))

	log.Debug("hidden")
	log.Warn("section skipped", zap.String("section", "skills"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "section skipped")
}

func TestBuild_WithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "cv.log")
	log := Build(Config{Level: "info", Format: "json", File: file}, zapcore.AddSync(&bytes.Buffer{}))

	log.Info("written to file")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
