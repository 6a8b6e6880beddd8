package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/nodechaos-controller/internal/infra/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give string
		want slog.Level
	}{
		{give: "debug", want: slog.LevelDebug},
		{give: "INFO", want: slog.LevelInfo},
		{give: "warn", want: slog.LevelWarn},
		{give: "warning", want: slog.LevelWarn},
		{give: " error ", want: slog.LevelError},
		{give: "", want: slog.LevelInfo},
		{give: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.give, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, logging.ParseLevel(tt.give))
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger := logging.NewWithWriter(&buf, "", "info")
		logger.Info("hello", "node", "worker1")
		logger.Debug("hidden")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		require.Equal(t, "hello", entry["msg"])
		require.Equal(t, "worker1", entry["node"])
		require.Equal(t, "nodechaos-controller", entry["service"])
	})

	t.Run("text with debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger := logging.NewWithWriter(&buf, "text", "debug")
		logger.Debug("probe", "ok", true)

		out := buf.String()
		require.Contains(t, out, "level=DEBUG")
		require.Contains(t, out, "msg=probe")
		require.Contains(t, out, "source=")
	})
}
