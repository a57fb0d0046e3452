// Package logger provides structured logging utilities for the application.
// It wraps log/slog with JSON formatting and supports fan-out to Better
// Stack when a source token is configured.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger
type Logger struct {
	*slog.Logger
}

// Options configures optional log shipping destinations.
type Options struct {
	// BetterStackToken enables Better Stack log shipping when non-empty.
	BetterStackToken string
	// BetterStackEndpoint overrides the default ingesting endpoint.
	BetterStackEndpoint string
}

// New creates a new logger instance with JSON formatting
func New(level string) *Logger {
	return NewWithOptions(level, os.Stdout, Options{})
}

// NewWithWriter creates a new logger instance with JSON formatting writing to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithOptions(level, w, Options{})
}

// NewWithOptions creates a logger writing JSON to w, optionally fanning out
// to Better Stack when opts.BetterStackToken is set.
func NewWithOptions(level string, w io.Writer, opts Options) *Logger {
	logLevel := parseLevel(level)

	handlerOpts := &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			if a.Key == slog.LevelKey {
				a.Key = "level"
				level := a.Value.String()
				if level == "WARN" {
					level = "warning"
				} else {
					level = strings.ToLower(level)
				}
				a.Value = slog.StringValue(level)
			}
			if a.Key == slog.MessageKey {
				a.Key = "message"
			}
			return a
		},
	}

	var handler slog.Handler = slog.NewJSONHandler(w, handlerOpts)

	if opts.BetterStackToken != "" {
		bsHandler := slogbetterstack.Option{
			Level:    logLevel,
			Token:    opts.BetterStackToken,
			Endpoint: opts.BetterStackEndpoint,
		}.NewBetterstackHandler()
		handler = newTeeHandler(handler, bsHandler)
	}

	return &Logger{Logger: slog.New(handler)}
}

// teeHandler duplicates log records to the local JSON handler and the
// Better Stack shipping handler. Records are cloned so each destination
// gets its own copy.
type teeHandler struct {
	local slog.Handler
	ship  slog.Handler
}

func newTeeHandler(local, ship slog.Handler) *teeHandler {
	return &teeHandler{local: local, ship: ship}
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.local.Enabled(ctx, level) || t.ship.Enabled(ctx, level)
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var localErr, shipErr error
	if t.local.Enabled(ctx, r.Level) {
		localErr = t.local.Handle(ctx, r.Clone())
	}
	if t.ship.Enabled(ctx, r.Level) {
		shipErr = t.ship.Handle(ctx, r.Clone())
	}
	return errors.Join(localErr, shipErr)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{local: t.local.WithAttrs(attrs), ship: t.ship.WithAttrs(attrs)}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{local: t.local.WithGroup(name), ship: t.ship.WithGroup(name)}
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

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return &Logger{Logger: l.With("module", module)}
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.With("request_id", requestID)}
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err)}
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(key, value)}
}

// Fatal logs at error level and exits the process
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...)}
}
