package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestZapLogger_WritesJSONLinesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := NewZapLogger(path, true)

	l.Info("resolver", "turn resolved", map[string]interface{}{"outcomes": 1})
	l.Debug("resolver", "below file level", nil)
	l.Error("creation", "dispatch failed", map[string]interface{}{"error": "boom"})
	_ = l.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}
	require.Len(t, lines, 2)
	require.Equal(t, "INFO", lines[0]["level"])
	require.Equal(t, "turn resolved", lines[0]["message"])
	require.Equal(t, "resolver", lines[0]["module"])
	require.Equal(t, "ERROR", lines[1]["level"])
	require.Equal(t, "boom", lines[1]["error_ref"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("m", "msg", nil)
	l.Warn("m", "msg", nil)
	require.NoError(t, l.Sync())
}

func TestConsoleLogger_WritesOnlyToWriterAtLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, zapcore.InfoLevel)

	l.Debug("resolver", "readiness evaluated", map[string]interface{}{"window": 6})
	l.Warn("resolver", "ignoring creation request before confirmation", map[string]interface{}{"candidates": 1})
	require.NoError(t, l.Sync())

	out := buf.String()
	require.NotContains(t, out, "readiness evaluated")
	require.Contains(t, out, "ignoring creation request before confirmation")
	require.Contains(t, out, "resolver")
}

func TestWithService_StampsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := NewZapLogger(path, true).WithService("mission42-intent")

	l.Info("http", "server listening", map[string]interface{}{"port": "3000"})
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(raw), &entry))
	require.Equal(t, "mission42-intent", entry["service"])
	require.Equal(t, "http", entry["module"])
}
