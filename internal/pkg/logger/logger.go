// Package logger provides structured JSON/text logging for the access
// control engine. Denial and diagnostic logs never include attribute values
// or filter contents — only identifiers — so a log stream cannot itself
// become an information-disclosure channel (§7).
package logger

import (
	"log/slog"
	"os"
)

// New returns a configured *slog.Logger. format is "json" or anything else
// for text; level is "debug"|"info"|"warn"|"error" and defaults to info.
func New(format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Std is the package-default logger, used by engine code not given an
// explicit logger (the resolver's filter-resolution diagnostic).
var Std = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
