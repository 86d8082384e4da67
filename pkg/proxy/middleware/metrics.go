package middleware

import (
	"net/http"
	"time"

	"voygen/gateway/pkg/telemetry/metrics"
)

// MetricsMiddleware records the method, status and latency of every request
// in collector. A nil collector disables recording.
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			collector.RecordHTTPRequest(r.Method, rw.statusCode, time.Since(start))
		})
	}
}
