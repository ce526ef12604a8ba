// Package logging builds the logr.Logger used for comparison traces on top
// of a log/slog handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-logr/logr"
)

// LevelFromString converts debug, info, warn or error (case-insensitive)
// to a slog.Level.
func LevelFromString(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// New returns a logger writing text or json records to w. logr V(n)
// records are emitted at slog level -n, so trace output at V(1) shows
// only at debug level.
func New(w io.Writer, format, level string) (logr.Logger, error) {
	lvl, err := LevelFromString(level)
	if err != nil {
		return logr.Discard(), err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch format {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q", format)
	}
	return logr.FromSlogHandler(h), nil
}
