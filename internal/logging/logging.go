// Package logging builds the slog loggers hyinit writes to.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Silent is above every standard level.
const Silent = slog.Level(100)

// Format selects the record layout.
type Format string

const (
	Text Format = "text" // TIMESTAMP [level] message | key=value
	JSON Format = "json"
)

// New returns a logger writing to w.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(NewHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(NewHandler(io.Discard, &slog.HandlerOptions{Level: Silent}))
}

// LevelFromString parses debug, info, warn or error, case-insensitively.
// Anything else is info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "quiet", "silent", "off":
		return Silent
	}
	return slog.LevelInfo
}

// LevelFromVerbosity maps -v counts: none is warn, one info, more debug.
// quiet wins over any count.
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	if quiet {
		return Silent
	}
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
