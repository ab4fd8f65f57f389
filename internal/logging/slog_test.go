package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx := context.Background()

	log.Debug(ctx, "cache entry dropped", "key", "_offline1")
	log.Info(ctx, "replay finished", "replayed", 2)
	log.Warn(ctx, "fetch failed", "error", "timeout")
	log.Error(ctx, "cache read failed", "error", "closed")

	want := []struct {
		level string
		msg   string
	}{
		{"DEBUG", "cache entry dropped"},
		{"INFO", "replay finished"},
		{"WARN", "fetch failed"},
		{"ERROR", "cache read failed"},
	}

	dec := json.NewDecoder(&buf)
	for _, w := range want {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		assert.Equal(t, w.level, rec["level"])
		assert.Equal(t, w.msg, rec["msg"])
	}
	assert.False(t, dec.More(), "no extra lines")
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	root := NewJSONLogger(&buf, slog.LevelInfo)

	root.With("module", "engine").With("user", "alice").Info(context.Background(), "save queued", "id", "_offline1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "engine", rec["module"])
	assert.Equal(t, "alice", rec["user"])
	assert.Equal(t, "_offline1", rec["id"])
}

func TestNewJSONLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, slog.LevelInfo)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown", "id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "abc", rec["id"])
}

func TestNewFileLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	log, closer := NewFileLogger(FileOptions{Path: path, MaxSizeMB: 1})

	log.Debug(context.Background(), "not written")
	log.Info(context.Background(), "written", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=written")
	assert.Contains(t, string(data), "k=v")
	assert.NotContains(t, string(data), "not written")
}

func TestNewNopLogger_DoesNotPanic(t *testing.T) {
	log := NewNopLogger()
	log.With("a", 1).Info(context.Background(), "ignored")
}
