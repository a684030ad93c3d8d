// Package logging configures the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"
)

// SetupJSON routes slog's default logger to stdout as JSON, dropping
// records below level. Called once from each entrypoint before any
// logging happens.
func SetupJSON(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
