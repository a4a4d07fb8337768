// Package router arma el árbol de rutas chi con sus cadenas de middlewares.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	authctrl "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/controllers/auth"
	empresactrl "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/controllers/empresa"
	healthctrl "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/controllers/health"
	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	mw "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/middlewares"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/metrics"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/rate"
)

// Limiters por regla. Un limiter nil desactiva la regla.
type Limiters struct {
	Global   rate.Limiter
	Login    rate.Limiter
	Recovery rate.Limiter
	MFA      rate.Limiter
}

// Deps contiene las dependencias del router.
type Deps struct {
	Auth        *authctrl.Controllers
	Empresa     *empresactrl.Controller
	Email       *empresactrl.EmailController
	Health      *healthctrl.HealthController
	Metrics     *metrics.Metrics
	Session     mw.SessionConfig
	CORSOrigins []string
	// CSRF nil = sin validación double-submit.
	CSRF     *mw.CSRFConfig
	Limiters Limiters
	// TrustedProxies decide cuándo se cree X-Forwarded-For para el rate limit.
	TrustedProxies *helpers.TrustedProxies
}

// New devuelve el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	csrfHeader := "X-CSRF-Token"
	if d.CSRF != nil && d.CSRF.HeaderName != "" {
		csrfHeader = d.CSRF.HeaderName
	}

	// Orden: recover envuelve todo; request id antes de logging y métricas.
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithMetrics(d.Metrics),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSOrigins, csrfHeader),
		mw.WithRateLimit(mw.RateLimitConfig{
			Name:      "global",
			Limiter:   d.Limiters.Global,
			KeyFunc:   mw.IPRateKey(d.TrustedProxies),
			Whitelist: []string{"/healthz", "/metrics"},
			Metrics:   d.Metrics,
		}),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		r.Get("/healthz", d.Health.Health)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if d.CSRF != nil {
			r.Use(mw.WithCSRF(*d.CSRF))
		}
		r.Get("/get-csrf-token", d.Auth.CSRF.GetToken)
		r.Route("/usuarios", func(r chi.Router) { usuariosRoutes(r, d) })
		r.Route("/mfa", func(r chi.Router) { mfaRoutes(r, d) })
		if d.Empresa != nil {
			r.Route("/empresa", func(r chi.Router) { empresaRoutes(r, d) })
		}
		if d.Email != nil {
			r.Post("/email/validate-email", d.Email.Validate)
		}
	})

	return r
}

func limit(name string, l rate.Limiter, d Deps) mw.Middleware {
	return mw.WithRateLimit(mw.RateLimitConfig{
		Name:    name,
		Limiter: l,
		KeyFunc: mw.IPRateKey(d.TrustedProxies),
		Metrics: d.Metrics,
	})
}

func usuariosRoutes(r chi.Router, d Deps) {
	c := d.Auth

	r.Post("/", c.Register.Register)
	r.With(limit("login", d.Limiters.Login, d)).Post("/login", c.Login.Login)
	r.Post("/logout", c.Login.Logout)

	r.Group(func(r chi.Router) {
		r.Use(limit("recovery", d.Limiters.Recovery, d))
		r.Post("/recuperacion", c.Recovery.Request)
		r.Post("/validarToken/contrasena", c.Recovery.Validate)
	})

	// sesión o resetToken
	r.With(mw.OptionalSession(d.Session)).Post("/change-password", c.Password.Change)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(d.Session))
		r.With(mw.RequireRole(repository.RoleAdmin)).Get("/", c.Profile.List)
		r.Get("/perfil", c.Profile.Me)
		r.Patch("/perfil/{id}/foto", c.Profile.UpdateAvatar)
		r.Patch("/perfil/{id}/{field}", c.Profile.UpdateField)
		r.Post("/verify-password", c.Password.VerifyCurrent)
	})
}

func mfaRoutes(r chi.Router, d Deps) {
	c := d.Auth

	r.With(limit("mfa", d.Limiters.MFA, d)).Post("/verify-mfa", c.MFA.Verify)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(d.Session))
		r.Post("/enable-mfa", c.MFA.Enable)
		r.Post("/disable-mfa", c.MFA.Disable)
		r.Get("/mfa-status/{userId}", c.MFA.Status)
	})
}

func empresaRoutes(r chi.Router, d Deps) {
	r.Get("/", d.Empresa.Get)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(d.Session), mw.RequireRole(repository.RoleAdmin))
		r.Post("/actualizar", d.Empresa.Upsert)
		r.Patch("/{campo}", d.Empresa.UpdateField)
	})
}
