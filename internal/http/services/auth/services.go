// Package auth contiene los services del núcleo de autenticación: login con
// bloqueo progresivo, MFA TOTP, cambio de contraseña con historial, tokens de
// recuperación y registro.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/captcha"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/jwt"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/metrics"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/password"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/totp"
)

// Errores de los services. Los resultados de negocio del login (bloqueo, MFA,
// credenciales) no son errores: viajan en LoginResult.Outcome.
var (
	ErrMissingFields         = errors.New("missing required fields")
	ErrAccountNotFound       = errors.New("account not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrWeakPassword          = errors.New("password does not satisfy policy")
	ErrPasswordReused        = errors.New("password reused")
	ErrPasswordMismatch      = errors.New("current password mismatch")
	ErrMFAInvalid            = errors.New("invalid mfa code")
	ErrTokenInvalid          = errors.New("recovery token invalid")
	ErrTokenExpired          = errors.New("recovery token expired")
	ErrCaptchaRejected       = errors.New("captcha rejected")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// PolicyError lista las reglas de contraseña incumplidas.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string { return ErrWeakPassword.Error() }
func (e *PolicyError) Unwrap() error { return ErrWeakPassword }

// Settings son los parámetros de negocio del núcleo de autenticación.
type Settings struct {
	MaxFailedAttempts   int
	LockDuration        time.Duration
	RecoveryTokenTTL    time.Duration
	ResetGrantTTL       time.Duration
	PasswordHistorySize int
}

// Notifier envía los correos del flujo de contraseñas.
type Notifier interface {
	SendRecoveryCode(ctx context.Context, to, nombre, code string, ttl time.Duration) error
	SendPasswordChanged(ctx context.Context, to, nombre string, at time.Time, ip string) error
}

// Deps contiene las dependencias para crear los services auth.
type Deps struct {
	Store    repository.Store
	Hasher   *password.Hasher
	Policy   password.Policy
	Sessions *jwt.SessionManager
	TOTP     *totp.Manager
	Notifier Notifier
	Captcha  captcha.Verifier
	Metrics  *metrics.Metrics
	Settings Settings
	// Now permite fijar el reloj en tests. nil = time.Now.
	Now func() time.Time
}

// Services agrupa todos los services del dominio auth.
type Services struct {
	Lockout  *LockoutTracker
	Login    LoginService
	MFA      MFAService
	Password PasswordService
	Recovery RecoveryService
	Register RegisterService
}

// NewServices crea el agregador de services auth.
func NewServices(d Deps) Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Captcha == nil {
		d.Captcha = captcha.Noop{}
	}
	d.Settings = withDefaults(d.Settings)

	lockout := NewLockoutTracker(d.Store.Lockouts(), d.Settings.MaxFailedAttempts, d.Settings.LockDuration, d.Now)
	return Services{
		Lockout:  lockout,
		Login:    NewLoginService(d, lockout),
		MFA:      NewMFAService(d),
		Password: NewPasswordService(d),
		Recovery: NewRecoveryService(d),
		Register: NewRegisterService(d),
	}
}

func withDefaults(s Settings) Settings {
	if s.MaxFailedAttempts <= 0 {
		s.MaxFailedAttempts = 5
	}
	if s.LockDuration <= 0 {
		s.LockDuration = 10 * time.Minute
	}
	if s.RecoveryTokenTTL <= 0 {
		s.RecoveryTokenTTL = 15 * time.Minute
	}
	if s.ResetGrantTTL <= 0 {
		s.ResetGrantTTL = 10 * time.Minute
	}
	if s.PasswordHistorySize <= 0 {
		s.PasswordHistorySize = 3
	}
	return s
}

// unavailable envuelve una falla de store o colaborador externo.
func unavailable(op string, err error) error {
	return errors.Join(ErrDependencyUnavailable, errors.New(op), err)
}
