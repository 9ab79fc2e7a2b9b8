package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/brokerdesk/intake/internal/app/metrics"
	"github.com/brokerdesk/intake/pkg/logger"
)

// requestMiddleware logs each request and records HTTP metrics.
func requestMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			metrics.IncInFlight()
			defer metrics.DecInFlight()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			path := r.URL.Path
			// Use the route pattern so path parameters do not explode
			// metric cardinality.
			if route := mux.CurrentRoute(r); route != nil {
				if template, err := route.GetPathTemplate(); err == nil {
					path = template
				}
			}

			metrics.ObserveRequest(r.Method, path, strconv.Itoa(wrapped.statusCode), duration)
			log.WithField("method", r.Method).
				WithField("path", r.URL.Path).
				WithField("status", wrapped.statusCode).
				WithField("duration_ms", duration.Milliseconds()).
				Info("request handled")
		})
	}
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
