// Package obslog provides structured logging for insign's ambient
// surfaces (the CLI and the compile façade), using Go's log/slog.
//
// Grounded on the teacher's internal/logging package: the same
// level/format constants, JSON-by-default handler, and request-id
// context plumbing, trimmed to the events this repo actually emits
// (compile_request/compile_result) instead of the teacher's HTTP/plugin/
// websocket helpers, which have no analogue here. core/* packages never
// log — they are pure functions over their input, so logging lives only
// at the edges that call them.
package obslog

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// ContextKey namespaces context values this package stores, avoiding
// collisions with other packages' context keys.
type ContextKey string

// RequestIDKey is the context key under which a per-compile correlation
// id is stored.
const RequestIDKey ContextKey = "request_id"

// Level is a logging verbosity, independent of slog.Level so callers
// outside this package never import log/slog directly.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Format selects the handler's output encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

var defaultLogger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// Init installs the process-wide logger. cmd/insign calls this once at
// startup from its resolved --log-level/--log-format flags; library
// callers that embed the insign package directly are free to never call
// it, in which case the zero-value JSON-to-stderr logger above is used.
func Init(level Level, format Format) {
	opts := &slog.HandlerOptions{
		Level: slogLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}
	var handler slog.Handler
	if format == FormatText {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	defaultLogger = slog.New(handler)
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID attaches a correlation id to ctx for later retrieval by
// FromContext. insign.Compile accepts the resulting context purely for
// this correlation id; the id never affects compiled output, which
// depends only on the request units and Options.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// FromContext returns a logger with the request id (if any) attached as
// a structured field.
func FromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		logger = logger.With("request_id", id)
	}
	return logger
}

// CompileRequest logs the start of a compile call.
func CompileRequest(ctx context.Context, unitCount, inputBytes int) {
	FromContext(ctx).Info("compile_request", "unit_count", unitCount, "input_bytes", inputBytes)
}

// CompileResult logs the outcome of a compile call.
func CompileResult(ctx context.Context, ok bool, errorCode string, duration time.Duration) {
	args := []any{"ok", ok, "duration_ms", duration.Milliseconds()}
	if errorCode != "" {
		args = append(args, "error_code", errorCode)
	}
	if ok {
		FromContext(ctx).Info("compile_result", args...)
	} else {
		FromContext(ctx).Warn("compile_result", args...)
	}
}
