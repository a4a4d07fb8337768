package middlewares

import (
	"net/http"
	"strconv"
	"time"

	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/metrics"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPRateKey limita por IP real del cliente. X-Forwarded-For solo se acepta
// cuando la conexión viene de uno de los proxies de confianza.
func IPRateKey(trusted *helpers.TrustedProxies) RateKeyFunc {
	return trusted.RealIP
}

// RateLimitConfig configura el middleware de rate limiting.
type RateLimitConfig struct {
	Name      string // etiqueta de la regla (métricas y logs)
	Limiter   rate.Limiter
	KeyFunc   RateKeyFunc // nil = IP del peer
	Whitelist []string // paths excluidos (ej: /healthz)
	Metrics   *metrics.Metrics
}

// WithRateLimit rechaza con 429 cuando la clave supera el límite de la ventana.
// Si el limiter falla (Redis caído) el request pasa: el rate limit frena abuso,
// no decide autenticación.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPRateKey(nil)
	}
	whitelist := make(map[string]struct{}, len(cfg.Whitelist))
	for _, p := range cfg.Whitelist {
		whitelist[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := whitelist[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			res, err := cfg.Limiter.Allow(r.Context(), cfg.Name+"|"+cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limit error", logger.String("rule", cfg.Name), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if res.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if res.WindowTTL > 0 {
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.WindowTTL).Unix(), 10))
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				cfg.Metrics.RecordRateLimited(cfg.Name)
				httperrors.WriteError(w, r, httperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
