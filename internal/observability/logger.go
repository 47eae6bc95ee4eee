package observability

import (
	"io"
	"log/slog"
	"os"

	"github.com/IshaanNene/serpgoat/internal/config"
)

// NewLogger builds the process logger. verbose forces debug level.
func NewLogger(cfg config.LoggingConfig, verbose bool) *slog.Logger {
	return newLogger(os.Stderr, cfg, verbose)
}

func newLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
