// Package logger wraps slog with the handful of knobs dayplan exposes:
// level, format, time layout and destination.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger is a thin wrapper so call sites can use the formatted helpers.
type Logger struct {
	*slog.Logger
}

type options struct {
	level      slog.Level
	output     io.Writer
	format     string
	timeFormat string
	addSource  bool
}

type Option func(*options)

func WithLevel(level string) Option {
	return func(o *options) { o.level = parseLevel(level) }
}

func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithFormat selects "json" or "text".
func WithFormat(format string) Option {
	return func(o *options) { o.format = strings.ToLower(strings.TrimSpace(format)) }
}

func WithTimeFormat(layout string) Option {
	return func(o *options) { o.timeFormat = layout }
}

func WithSource() Option {
	return func(o *options) { o.addSource = true }
}

// New builds a text logger on stderr at INFO unless options say otherwise.
func New(opts ...Option) *Logger {
	o := &options{
		level:      slog.LevelInfo,
		output:     os.Stderr,
		format:     "text",
		timeFormat: time.RFC3339,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     o.level,
		AddSource: o.addSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && o.timeFormat != "" && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(o.timeFormat))
			}
			return a
		},
	}

	var handler slog.Handler
	switch o.format {
	case "json":
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	default:
		handler = slog.NewTextHandler(o.output, handlerOpts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard drops everything; used by tests and when no log is configured.
func Discard() *Logger {
	return New(WithOutput(io.Discard))
}

// OpenFile appends to path, creating parent directories. The returned closer
// must be closed on shutdown.
func OpenFile(path string, opts ...Option) (*Logger, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(append([]Option{WithOutput(f)}, opts...)...), f, nil
}

func (l *Logger) InfoContextf(ctx context.Context, format string, args ...any) {
	l.InfoContext(ctx, fmt.Sprintf(format, args...))
}

func (l *Logger) WarnContextf(ctx context.Context, format string, args ...any) {
	l.WarnContext(ctx, fmt.Sprintf(format, args...))
}

func (l *Logger) ErrorContextf(ctx context.Context, format string, args ...any) {
	l.ErrorContext(ctx, fmt.Sprintf(format, args...))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
