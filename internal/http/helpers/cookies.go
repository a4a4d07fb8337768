// Package helpers reúne utilidades HTTP compartidas por middlewares y
// controllers: cookies, JSON, IP del cliente e identidad de dispositivo.
package helpers

import (
	"net/http"
	"strings"
	"time"
)

// CookiePolicy son los atributos comunes de las cookies que emite el servicio.
type CookiePolicy struct {
	Domain   string
	SameSite string // "strict" | "lax" | "none"
	Secure   bool
}

// NewCookiePolicy arma la política; SameSite=None obliga a Secure.
func NewCookiePolicy(domain, sameSite string, production bool) CookiePolicy {
	secure := production || strings.EqualFold(strings.TrimSpace(sameSite), "none")
	return CookiePolicy{Domain: domain, SameSite: sameSite, Secure: secure}
}

func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// BuildCookie arma una cookie http-only. expires cero = cookie de sesión del navegador.
func BuildCookie(p CookiePolicy, name, value string, expires time.Time, now time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: ParseSameSite(p.SameSite),
	}
	if strings.TrimSpace(p.Domain) != "" {
		ck.Domain = p.Domain
	}
	if !expires.IsZero() {
		ck.Expires = expires.UTC()
		if maxAge := int(expires.Sub(now).Seconds()); maxAge > 0 {
			ck.MaxAge = maxAge
		}
	}
	return ck
}

// BuildDeletionCookie invalida la cookie name en el navegador.
func BuildDeletionCookie(p CookiePolicy, name string) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: ParseSameSite(p.SameSite),
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
	if strings.TrimSpace(p.Domain) != "" {
		ck.Domain = p.Domain
	}
	return ck
}

// SessionCookie escribe y borra la cookie sesionToken con una política fija.
type SessionCookie struct {
	Name   string
	Policy CookiePolicy
	Now    func() time.Time
}

// Set deja el token firmado en la respuesta con la misma expiración del JWT.
func (s SessionCookie) Set(w http.ResponseWriter, token string, exp time.Time) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	http.SetCookie(w, BuildCookie(s.Policy, s.Name, token, exp, now()))
}

// Clear borra la cookie (logout).
func (s SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, BuildDeletionCookie(s.Policy, s.Name))
}
