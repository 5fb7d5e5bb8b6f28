package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey struct{}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// withRequestID propagates the caller's X-Request-Id or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// trackedWriter remembers the status code and body size for the access log.
type trackedWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (t *trackedWriter) WriteHeader(code int) {
	if t.status == 0 {
		t.status = code
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackedWriter) Write(b []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}
	n, err := t.ResponseWriter.Write(b)
	t.written += n
	return n, err
}

// instrument turns handler panics into 500 responses and writes one access
// log line per request.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		tw := &trackedWriter{ResponseWriter: w}
		defer func() {
			if p := recover(); p != nil {
				logPanic(r, p)
				if tw.status == 0 {
					writeError(tw, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				}
			}
			logAccess(r, tw.status, tw.written, time.Since(started))
		}()
		next.ServeHTTP(tw, r)
	})
}
