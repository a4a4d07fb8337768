package middlewares

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/jwt"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/metrics"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// SessionConfig dependencias de RequireSession.
type SessionConfig struct {
	Manager *jwt.SessionManager
	Cookie  helpers.SessionCookie
	Metrics *metrics.Metrics
}

// RequireSession valida la cookie de sesión:
//   - sin cookie: 403 SESSION_MISSING
//   - vencida: 401 SESSION_EXPIRED
//   - firma o formato inválido: 400 SESSION_MALFORMED
//
// Si quedan menos de la ventana de renovación, reemite el token con TTL
// completo y sobrescribe la cookie antes de llamar al handler.
func RequireSession(cfg SessionConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie(cfg.Cookie.Name)
			if err != nil || ck.Value == "" {
				httperrors.WriteError(w, r, httperrors.ErrSessionMissing)
				return
			}

			claims, err := cfg.Manager.Verify(ck.Value)
			switch {
			case errors.Is(err, jwt.ErrSessionExpired):
				httperrors.WriteError(w, r, httperrors.ErrSessionExpired)
				return
			case err != nil:
				httperrors.WriteError(w, r, httperrors.ErrSessionMalformed)
				return
			}

			next.ServeHTTP(w, r.WithContext(attachSession(cfg, w, r, claims)))
		})
	}
}

// OptionalSession adjunta la sesión si la cookie es válida y deja pasar el
// request en cualquier otro caso. Lo usan rutas que aceptan sesión o un
// permiso alternativo (cambio de contraseña con reset token).
func OptionalSession(cfg SessionConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie(cfg.Cookie.Name)
			if err != nil || ck.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := cfg.Manager.Verify(ck.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(attachSession(cfg, w, r, claims)))
		})
	}
}

// attachSession renueva la cookie si hace falta y deja claims y logger en el ctx.
func attachSession(cfg SessionConfig, w http.ResponseWriter, r *http.Request, claims *jwt.SessionClaims) context.Context {
	log := logger.From(r.Context()).With(logger.AccountID(claims.AccountID), logger.Role(claims.Role))

	token, exp, renewed, err := cfg.Manager.MaybeRenew(claims)
	if err != nil {
		// la sesión actual sigue vigente: se atiende sin renovar
		log.Warn("session renewal failed", logger.Err(err))
	} else if renewed {
		cfg.Cookie.Set(w, token, exp)
		cfg.Metrics.RecordRenewal()
		log.Debug("session renewed", zap.Time("exp", exp))
	}

	ctx := WithSession(r.Context(), claims)
	return logger.ToContext(ctx, log)
}

// RequireRole exige uno de los roles dados. Va después de RequireSession.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := GetSession(r.Context())
			if c == nil {
				httperrors.WriteError(w, r, httperrors.ErrSessionMissing)
				return
			}
			for _, role := range roles {
				if c.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httperrors.WriteError(w, r, httperrors.ErrForbidden)
		})
	}
}

// CanActOn indica si la sesión puede operar sobre la cuenta accountID: la
// propia cuenta o cualquier cuenta si es Administrador.
func CanActOn(c *jwt.SessionClaims, accountID int64) bool {
	if c == nil {
		return false
	}
	return c.AccountID == accountID || c.Role == repository.RoleAdmin
}
