package middle

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type MetricsRecorder interface {
	Observe(method, path string, duration time.Duration)
}

// Metrics records request latency keyed by the matched chi route pattern.
func Metrics(recorder MetricsRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			recorder.Observe(
				r.Method,
				path,
				time.Since(start),
			)
		}
		return http.HandlerFunc(fn)
	}
}
