package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	tokens "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/token"
)

// CSRFConfig configura el middleware CSRF.
type CSRFConfig struct {
	HeaderName string // Default: "X-CSRF-Token"
	CookieName string // Default: "_csrf"
	// Exempt paths exactos que no exigen token (ej: el propio emisor).
	Exempt []string
}

// WithCSRF aplica double-submit: en métodos inseguros el header y la cookie
// deben traer el mismo valor.
func WithCSRF(cfg CSRFConfig) Middleware {
	headerName := strings.TrimSpace(cfg.HeaderName)
	if headerName == "" {
		headerName = "X-CSRF-Token"
	}
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = "_csrf"
	}
	exempt := make(map[string]struct{}, len(cfg.Exempt))
	for _, p := range cfg.Exempt {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			hdr := strings.TrimSpace(r.Header.Get(headerName))
			ck, _ := r.Cookie(cookieName)
			if hdr == "" || ck == nil || ck.Value == "" || !tokens.Equal(hdr, ck.Value) {
				httperrors.WriteError(w, r, httperrors.ErrCSRF)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
