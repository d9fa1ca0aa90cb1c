// Package logging provides structured logging for the commerce layer.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// TraceIDKey carries the request trace ID through context.
	TraceIDKey contextKey = "trace_id"
	// UserIDKey carries the authenticated user ID through context.
	UserIDKey contextKey = "user_id"
	// RoleKey carries the caller's primary role through context.
	RoleKey contextKey = "role"
)

// Logger wraps zerolog with service metadata and context helpers.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger for the named service. Level is one of debug, info,
// warn, error; format is "json" or "console".
func New(service, level, format string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	if format == "console" {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		zl = zerolog.New(os.Stderr)
	}

	zl = zl.Level(lvl).With().Timestamp().Str("service", service).Logger()
	return &Logger{zl: zl}
}

// Entry is a log event builder carrying accumulated fields.
type Entry struct {
	zl zerolog.Logger
}

// WithContext returns an entry enriched with trace ID, user ID and role from
// the context when present.
func (l *Logger) WithContext(ctx context.Context) *Entry {
	zctx := l.zl.With()
	if traceID := GetTraceID(ctx); traceID != "" {
		zctx = zctx.Str("trace_id", traceID)
	}
	if userID := GetUserID(ctx); userID != "" {
		zctx = zctx.Str("user_id", userID)
	}
	if role := GetRole(ctx); role != "" {
		zctx = zctx.Str("role", role)
	}
	return &Entry{zl: zctx.Logger()}
}

// WithFields returns an entry with the given fields attached.
func (l *Logger) WithFields(fields map[string]interface{}) *Entry {
	return (&Entry{zl: l.zl}).WithFields(fields)
}

// WithError returns an entry with the error attached.
func (l *Logger) WithError(err error) *Entry {
	return (&Entry{zl: l.zl}).WithError(err)
}

// Info logs at info level.
func (l *Logger) Info(msg string) { l.zl.Info().Msg(msg) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string) { l.zl.Warn().Msg(msg) }

// Error logs at error level.
func (l *Logger) Error(msg string) { l.zl.Error().Msg(msg) }

// Debug logs at debug level.
func (l *Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }

// Fatal logs at fatal level and exits.
func (l *Logger) Fatal(msg string) { l.zl.Fatal().Msg(msg) }

// WithFields attaches fields to the entry.
func (e *Entry) WithFields(fields map[string]interface{}) *Entry {
	zctx := e.zl.With()
	for k, v := range fields {
		zctx = zctx.Interface(k, v)
	}
	return &Entry{zl: zctx.Logger()}
}

// WithError attaches an error to the entry.
func (e *Entry) WithError(err error) *Entry {
	return &Entry{zl: e.zl.With().Err(err).Logger()}
}

// Info logs at info level.
func (e *Entry) Info(msg string) { e.zl.Info().Msg(msg) }

// Warn logs at warn level.
func (e *Entry) Warn(msg string) { e.zl.Warn().Msg(msg) }

// Error logs at error level.
func (e *Entry) Error(msg string) { e.zl.Error().Msg(msg) }

// Debug logs at debug level.
func (e *Entry) Debug(msg string) { e.zl.Debug().Msg(msg) }

// Fatal logs at fatal level and exits.
func (e *Entry) Fatal(msg string) { e.zl.Fatal().Msg(msg) }

// LogRequest emits the per-request line with any fields already attached to
// the entry.
func (e *Entry) LogRequest(method, path string, status int, duration time.Duration) {
	evt := e.zl.Info()
	switch {
	case status >= 500:
		evt = e.zl.Error()
	case status >= 400:
		evt = e.zl.Warn()
	}
	evt.
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("http request")
}

// NewTraceID generates a fresh trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores the trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID extracts the trace ID from the context, if any.
func GetTraceID(ctx context.Context) string {
	return stringFromContext(ctx, TraceIDKey)
}

// GetUserID extracts the user ID from the context, if any.
func GetUserID(ctx context.Context) string {
	return stringFromContext(ctx, UserIDKey)
}

// GetRole extracts the role from the context, if any.
func GetRole(ctx context.Context) string {
	return stringFromContext(ctx, RoleKey)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
