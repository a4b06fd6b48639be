package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/artpar/apiref/adapters/metrics"
	"github.com/artpar/apiref/ports"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDFromContext returns the request id set by the request-id
// middleware, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// NewRequestIDMiddleware tags each request with an id from the
// generator and echoes it in the X-Request-ID response header. An id
// supplied by the client is kept as-is.
func NewRequestIDMiddleware(gen ports.IDGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" && gen != nil {
				id = gen.New()
			}
			if id != "" {
				w.Header().Set("X-Request-ID", id)
				r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewLoggingMiddleware logs each request with zerolog. Health and
// metrics endpoints are skipped to keep the logs readable.
func NewLoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", RequestIDFromContext(r.Context())).
				Msg("http request")
		})
	}
}

// NewMetricsMiddleware records request count, duration and in-flight
// gauge. Internal endpoints are not measured.
func NewMetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			collector.RequestsInFlight.Inc()
			defer collector.RequestsInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := statusLabel(ww.Status())
			collector.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			collector.RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// statusLabel buckets status codes to keep label cardinality low.
func statusLabel(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return strconv.Itoa(status)
	}
}
