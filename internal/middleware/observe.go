package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/requestctx"
)

// RequestObserver records one HTTP request. *observability.Metrics satisfies it.
type RequestObserver interface {
	ObserveRequest(method, endpoint, status string, d time.Duration)
}

// Observe writes a structured access log line and records request metrics
// under the matched route pattern.
func Observe(log *logger.Logger, metrics RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			endpoint := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}
			if metrics != nil {
				metrics.ObserveRequest(r.Method, endpoint, strconv.Itoa(status), elapsed)
			}

			kv := []interface{}{
				"request_id", requestctx.RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", elapsed.Milliseconds(),
			}
			if status >= http.StatusInternalServerError {
				log.Warn("http request", kv...)
			} else {
				log.Info("http request", kv...)
			}
		})
	}
}
