// Package jwt emite y valida los tokens de sesión (HS256) que viajan en la
// cookie sesionToken, y los permisos cortos de "reset" que habilitan el cambio
// de contraseña tras validar un código de recuperación.
package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const (
	purposeSession = ""
	purposeReset   = "reset"
)

var (
	// ErrSessionExpired el token fue firmado por nosotros pero venció.
	ErrSessionExpired = errors.New("session token expired")
	// ErrSessionMalformed firma inválida, formato roto o propósito equivocado.
	ErrSessionMalformed = errors.New("session token malformed")
)

// SessionClaims {id, nombre, rol} más los claims registrados.
type SessionClaims struct {
	AccountID int64  `json:"id"`
	Nombre    string `json:"nombre,omitempty"`
	Role      string `json:"rol,omitempty"`
	Purpose   string `json:"pur,omitempty"`
	jwtv5.RegisteredClaims
}

// ExpiresAtTime devuelve exp como time.Time (cero si falta).
func (c *SessionClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// SessionConfig parámetros del manager. Secret viene de SECRET_KEY.
type SessionConfig struct {
	Secret        []byte
	Issuer        string
	TTL           time.Duration
	RenewalWindow time.Duration
	Now           func() time.Time
}

// SessionManager firma y valida tokens. Es inmutable tras construirse.
type SessionManager struct {
	cfg SessionConfig
}

func NewSessionManager(cfg SessionConfig) (*SessionManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: secret vacío")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("jwt: ttl inválido")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SessionManager{cfg: cfg}, nil
}

// TTL de las sesiones emitidas.
func (m *SessionManager) TTL() time.Duration { return m.cfg.TTL }

// Issue firma una sesión nueva con exp = now + TTL.
func (m *SessionManager) Issue(accountID int64, nombre, role string) (string, time.Time, error) {
	return m.sign(SessionClaims{AccountID: accountID, Nombre: nombre, Role: role}, m.cfg.TTL)
}

// Verify valida firma, algoritmo y expiración de un token de sesión.
func (m *SessionManager) Verify(token string) (*SessionClaims, error) {
	c, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	if c.Purpose != purposeSession {
		return nil, ErrSessionMalformed
	}
	return c, nil
}

// NeedsRenewal indica si quedan menos de RenewalWindow de validez.
func (m *SessionManager) NeedsRenewal(c *SessionClaims) bool {
	exp := c.ExpiresAtTime()
	return !exp.IsZero() && exp.Sub(m.cfg.Now()) < m.cfg.RenewalWindow
}

// MaybeRenew reemite el token con los mismos claims y TTL completo cuando está
// dentro de la ventana de renovación. renewed=false deja la cookie intacta.
func (m *SessionManager) MaybeRenew(c *SessionClaims) (token string, exp time.Time, renewed bool, err error) {
	if !m.NeedsRenewal(c) {
		return "", time.Time{}, false, nil
	}
	token, exp, err = m.Issue(c.AccountID, c.Nombre, c.Role)
	if err != nil {
		return "", time.Time{}, false, err
	}
	return token, exp, true, nil
}

// IssueReset emite un permiso de un solo propósito para cambiar la contraseña.
func (m *SessionManager) IssueReset(accountID int64, ttl time.Duration) (string, time.Time, error) {
	return m.sign(SessionClaims{AccountID: accountID, Purpose: purposeReset}, ttl)
}

// VerifyReset valida un permiso de reset y devuelve la cuenta.
func (m *SessionManager) VerifyReset(token string) (int64, error) {
	c, err := m.parse(token)
	if err != nil {
		return 0, err
	}
	if c.Purpose != purposeReset {
		return 0, ErrSessionMalformed
	}
	return c.AccountID, nil
}

func (m *SessionManager) sign(c SessionClaims, ttl time.Duration) (string, time.Time, error) {
	now := m.cfg.Now()
	exp := now.Add(ttl)
	c.RegisteredClaims = jwtv5.RegisteredClaims{
		Issuer:    m.cfg.Issuer,
		Subject:   strconv.FormatInt(c.AccountID, 10),
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(exp),
	}
	s, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, &c).SignedString(m.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	// exp real (segundos enteros) para que cookie y token coincidan
	return s, c.ExpiresAt.Time, nil
}

func (m *SessionManager) parse(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrSessionMalformed
	}
	var c SessionClaims
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(m.cfg.Now),
		jwtv5.WithExpirationRequired(),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(m.cfg.Issuer))
	}
	_, err := jwtv5.ParseWithClaims(token, &c, func(*jwtv5.Token) (any, error) {
		return m.cfg.Secret, nil
	}, opts...)
	switch {
	case err == nil:
		return &c, nil
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return nil, ErrSessionExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrSessionMalformed, err)
	}
}
