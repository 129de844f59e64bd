// Package logging builds the JSON line logger used across the service.
// Each line carries "ts" in the configured location, a lower-case "level"
// and "msg", followed by the structured fields.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// New returns a JSON logger writing to w.
func New(w io.Writer, level slog.Level, loc *time.Location) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			case slog.LevelKey:
				return slog.String("level", strings.ToLower(a.Value.String()))
			}
			return a
		},
	})
	return slog.New(h)
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type requestIDKey struct{}

// WithRequestID attaches a request ID to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID attached by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// QueryObserver logs repository statements. Successful statements are
// logged at debug level, failures at error level.
type QueryObserver struct {
	Logger *slog.Logger
}

func (o QueryObserver) ObserveQuery(ctx context.Context, operation, entity, query string, duration time.Duration, err error) {
	if o.Logger == nil {
		return
	}
	attrs := []any{
		"component", "repository",
		"operation", operation,
		"entity", entity,
		"query", query,
		"duration_ms", float64(duration.Microseconds()) / 1000,
	}
	if rid := RequestID(ctx); rid != "" {
		attrs = append(attrs, "request_id", rid)
	}
	if err != nil {
		o.Logger.ErrorContext(ctx, "query_failed", append(attrs, "error_message", err.Error())...)
		return
	}
	o.Logger.DebugContext(ctx, "query_executed", attrs...)
}
