package lexigo

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with lexigo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithIndex adds the index name to the logger.
func (l *Logger) WithIndex(name string) *Logger {
	return &Logger{Logger: l.Logger.With("index", name)}
}

// LogSearch logs a search request.
func (l *Logger) LogSearch(ctx context.Context, requestID string, hits int, total string, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"request_id", requestID,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"request_id", requestID,
		"hits", hits,
		"total", total,
		"took", took,
	)
}

// LogCount logs a count request.
func (l *Logger) LogCount(ctx context.Context, requestID string, total string, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "count failed",
			"request_id", requestID,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "count completed",
		"request_id", requestID,
		"total", total,
		"took", took,
	)
}

// LogScroll logs the end of a scroll.
func (l *Logger) LogScroll(ctx context.Context, scrollID string, hits, scans int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scroll failed",
			"scroll_id", scrollID,
			"hits", hits,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "scroll finished",
		"scroll_id", scrollID,
		"hits", hits,
		"scans", scans,
	)
}

// LogTimeout logs a request that ran out of time.
func (l *Logger) LogTimeout(ctx context.Context, op, requestID string, limit time.Duration) {
	l.WarnContext(ctx, "request timed out",
		"op", op,
		"request_id", requestID,
		"limit", limit,
	)
}
