package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewTextAndJSON(t *testing.T) {
	t.Parallel()

	var text bytes.Buffer
	New(&text, "info", false).Info("Transaction committed successfully.", "rows", 3)
	require.Contains(t, text.String(), "level=INFO")
	require.Contains(t, text.String(), `msg="Transaction committed successfully."`)
	require.Contains(t, text.String(), "time=")

	var js bytes.Buffer
	log := New(&js, "warn", true)
	log.Info("dropped")
	log.Warn("kept", "table", "users")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &rec))
	require.Equal(t, "kept", rec["msg"])
	require.Equal(t, "users", rec["table"])
}

func TestOpenFileTruncates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "app.log")

	f, err := OpenFile(path)
	require.NoError(t, err)
	_, err = f.WriteString("first run\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)
}
