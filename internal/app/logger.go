package app

import (
	"io"
	"log/slog"
)

// newLogger builds the app logger from Config.LogLevel and Config.LogFormat.
// It never touches slog's global default, so parallel test apps each keep an
// isolated logger writing to their own buffer. Unknown level strings fall
// back to info; Config validation rejects them before this runs, so the
// fallback only matters for hand-built configs.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
