package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/metrics"
)

// WithMetrics instrumenta requests HTTP (contador, latencia, en vuelo).
func WithMetrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			path := metrics.NormalizePath(r.URL.Path)

			m.HTTPInflight.Inc()
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				m.HTTPInflight.Dec()
				m.ObserveHTTP(method, path, rec.status, time.Since(start).Seconds())
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
