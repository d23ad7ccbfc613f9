package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lotscout",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotscout",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
}

// Middleware records per-request duration and count, labeled by method, chi
// route pattern, and status. The route pattern keeps label cardinality bounded
// even when paths carry IDs.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					// Handler never wrote anything.
					status = http.StatusOK
				}
				labels := prometheus.Labels{
					"method": r.Method,
					"path":   normalizePath(chi.RouteContext(r.Context()).RoutePattern()),
					"status": strconv.Itoa(status),
				}
				httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
				httpRequestsTotal.With(labels).Inc()
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

// normalizePath guards against an empty route pattern (request matched no
// route) leaking an empty label value.
func normalizePath(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}
