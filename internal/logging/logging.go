// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"budget-tracker/internal/config"
)

// New returns a JSON logger in production and a text logger elsewhere. LOG_FORMAT
// overrides the choice when set to "json" or "text".
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Log.Level)}

	format := strings.ToLower(cfg.Log.Format)
	if format == "" {
		format = "text"
		if cfg.IsProduction() {
			format = "json"
		}
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps LOG_LEVEL to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
