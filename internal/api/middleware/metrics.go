package middleware

import (
	"net/http"
	"sync/atomic"
)

// MetricsCollector counts requests, errors, and in-flight requests for the
// stats endpoint.
type MetricsCollector struct {
	requestCount atomic.Int64
	errorCount   atomic.Int64
	inFlight     atomic.Int64
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// Snapshot returns the current counter values.
func (mc *MetricsCollector) Snapshot() (requests, errors, inFlight int64) {
	return mc.requestCount.Load(), mc.errorCount.Load(), mc.inFlight.Load()
}

// Middleware returns middleware that counts requests and errors.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.requestCount.Add(1)
		mc.inFlight.Add(1)
		defer mc.inFlight.Add(-1)

		// Wrap response writer to capture status
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		// Count errors (4xx and 5xx)
		if rw.statusCode >= 400 {
			mc.errorCount.Add(1)
		}
	})
}
