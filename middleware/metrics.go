package middleware

import (
	"net/http"
	"time"

	"licensepanel/metrics"
)

// Metrics records every request under route. route is the registered
// pattern, not the raw path, to keep label cardinality bounded.
func Metrics(m *metrics.Metrics, route string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rw := wrapResponseWriter(w)
			next.ServeHTTP(rw, r)
			m.ObserveRequest(route, r.Method, rw.statusCode, time.Since(start))
		}
	}
}
