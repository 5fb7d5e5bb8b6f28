package http

import (
	"log/slog"
	"net/http"
	"time"
)

func httpLogger() *slog.Logger {
	return slog.Default().With("module", "http", "layer", "adapter")
}

func requestAttrs(r *http.Request) []any {
	return []any{
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestIDFromContext(r.Context()),
	}
}

func logAccess(r *http.Request, status, bytes int, elapsed time.Duration) {
	if status == 0 {
		status = http.StatusOK
	}
	level, outcome := slog.LevelDebug, "success"
	switch {
	case status >= 500:
		level, outcome = slog.LevelError, "failure"
	case status >= 400:
		level, outcome = slog.LevelWarn, "failure"
	}
	attrs := append(requestAttrs(r),
		"operation", "http_request",
		"outcome", outcome,
		"status_code", status,
		"bytes", bytes,
		"duration_ms", elapsed.Milliseconds(),
	)
	httpLogger().Log(r.Context(), level, "request served", attrs...)
}

func logPanic(r *http.Request, recovered any) {
	attrs := append(requestAttrs(r), "operation", "http_panic_recovery", "outcome", "failure", "panic", recovered)
	httpLogger().ErrorContext(r.Context(), "handler panicked", attrs...)
}

// logRejected records why an operation was turned down. Client errors log at
// warn, everything else at error.
func logRejected(r *http.Request, operation string, status int, code string, err error) {
	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	attrs := append(requestAttrs(r),
		"operation", operation,
		"outcome", "failure",
		"status_code", status,
		"error_code", code,
	)
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	httpLogger().Log(r.Context(), level, "operation rejected", attrs...)
}
