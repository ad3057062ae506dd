// Package logutil configures the process-wide slog logger.
package logutil

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs a text handler on stderr as the default logger.
// Level resolution: the verbose flag wins, then PARAKEET_LOG_LEVEL
// (debug|info|warn|error), then info.
func Setup(verbose bool) {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("PARAKEET_LOG_LEVEL")) {
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

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
