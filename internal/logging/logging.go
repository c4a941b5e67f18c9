// Package logging builds the logr.Logger used across changegen. Records are
// handled by log/slog: text for people, JSON for machines, always on stderr
// so they never mix with changelog output on stdout.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-logr/logr"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures New.
type Options struct {
	// Level is "debug", "info", "warn" or "error".
	Level string
	// Format is FormatText or FormatJSON.
	Format string
}

// New returns a logger writing to w. V(1) records sit between slog's debug
// and info levels, so they are only emitted when Level is "debug".
func New(w io.Writer, opts Options) logr.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, FormatJSON) {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return logr.FromSlogHandler(handler)
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// ValidateLevel returns an error for level names ParseLevel would not recognize.
func ValidateLevel(s string) error {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", s)
	}
}

// ValidateFormat returns an error for unsupported format names.
func ValidateFormat(s string) error {
	switch strings.ToLower(s) {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown log format %q (expected text or json)", s)
	}
}

// WithLogger attaches a logger to ctx.
func WithLogger(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}
