package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/audit"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/password"
)

// LoginOutcome es el resultado de negocio de un intento de login.
type LoginOutcome int

const (
	OutcomeSuccess LoginOutcome = iota
	OutcomeInvalidCredentials
	OutcomeLocked
	OutcomeMFARequired
	OutcomeMFAInvalid
)

func (o LoginOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeLocked:
		return "locked"
	case OutcomeMFARequired:
		return "mfa_required"
	case OutcomeMFAInvalid:
		return "mfa_invalid"
	}
	return "unknown"
}

// LoginInput llega del controller con IP y dispositivo ya resueltos.
type LoginInput struct {
	Email    string
	Password string
	MFACode  string
	IP       string
	DeviceID string
}

// LoginResult describe el desenlace. SessionToken solo viene en OutcomeSuccess.
type LoginResult struct {
	Outcome          LoginOutcome
	AccountID        int64
	DisplayName      string
	Role             string
	RemainingSeconds *int64
	SessionToken     string
	ExpiresAt        time.Time
}

type LoginService interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
}

type loginService struct {
	deps    Deps
	lockout *LockoutTracker

	dummyOnce   sync.Once
	dummyDigest string
}

// NewLoginService crea el orquestador de login.
func NewLoginService(d Deps, lockout *LockoutTracker) LoginService {
	return &loginService{deps: d, lockout: lockout}
}

// Login ejecuta la máquina de estados en orden estricto. Los errores devueltos
// son solo de entrada o de dependencias; el resto viaja en Outcome.
func (s *loginService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
		logger.ClientIP(in.IP),
		logger.DeviceID(in.DeviceID),
	)

	// Paso 1: campos obligatorios
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	// Paso 2 (IP y dispositivo) lo resuelve el controller.

	// Paso 3: buscar la cuenta. Un correo inexistente responde igual que una
	// contraseña incorrecta.
	acc, err := s.deps.Store.Accounts().GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.burnHash(in.Password)
		if err := s.lockout.RecordAnonymous(ctx, in.IP, in.DeviceID); err != nil {
			log.Warn("no se pudo registrar intento anónimo", logger.Err(err))
		}
		log.Info("login failed: unknown email", logger.Outcome(OutcomeInvalidCredentials.String()))
		return s.finish(&LoginResult{Outcome: OutcomeInvalidCredentials}), nil
	}
	if err != nil {
		return nil, unavailable("accounts.get_by_email", err)
	}
	log = log.With(logger.AccountID(acc.ID))

	// Paso 4: estado de bloqueo
	status, err := s.lockout.Check(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	if status.Locked {
		if status.RemainingSeconds == nil {
			s.deps.Metrics.RecordLockout()
		}
		log.Warn("login rejected: account locked", logger.Outcome(OutcomeLocked.String()))
		return s.finish(&LoginResult{Outcome: OutcomeLocked, AccountID: acc.ID, RemainingSeconds: status.RemainingSeconds}), nil
	}

	// Paso 5: contraseña. Un digest malformado cuenta como mismatch.
	ok, err := s.deps.Hasher.Verify(in.Password, acc.PasswordHash)
	if err != nil {
		if !errors.Is(err, password.ErrMalformedHash) {
			return nil, unavailable("hasher.verify", err)
		}
		log.Warn("digest almacenado malformado", logger.Err(err))
		ok = false
	}
	if !ok {
		rec, err := s.lockout.RecordFailure(ctx, acc.ID, in.IP, in.DeviceID)
		if err != nil {
			return nil, err
		}
		if rec.LockedUntil != nil && rec.Attempts == s.deps.Settings.MaxFailedAttempts {
			s.deps.Metrics.RecordLockout()
			log.Warn("account locked", logger.Attempts(rec.Attempts), logger.LockedUntil(*rec.LockedUntil))
			audit.Log(ctx, audit.AccountLocked, acc.ID, logger.ClientIP(in.IP), logger.DeviceID(in.DeviceID), logger.LockedUntil(*rec.LockedUntil))
		}
		log.Info("login failed: wrong password", logger.Attempts(rec.Attempts), logger.Outcome(OutcomeInvalidCredentials.String()))
		return s.finish(&LoginResult{Outcome: OutcomeInvalidCredentials}), nil
	}

	// Paso 6: MFA. Un código inválido no suma al contador de bloqueo.
	if acc.MFAEnabled() {
		if strings.TrimSpace(in.MFACode) == "" {
			log.Info("login pending: mfa required", logger.Outcome(OutcomeMFARequired.String()))
			return s.finish(&LoginResult{Outcome: OutcomeMFARequired, AccountID: acc.ID}), nil
		}
		if !s.deps.TOTP.Verify(strings.TrimSpace(in.MFACode), acc.MFASecret) {
			log.Info("login failed: invalid mfa code", logger.Outcome(OutcomeMFAInvalid.String()))
			s.deps.Metrics.RecordMFA("verify_fail")
			return s.finish(&LoginResult{Outcome: OutcomeMFAInvalid, AccountID: acc.ID}), nil
		}
		s.deps.Metrics.RecordMFA("verify_ok")
	}

	// Paso 7: éxito. Limpiar bloqueo y emitir sesión.
	if err := s.lockout.Clear(ctx, acc.ID); err != nil {
		return nil, err
	}
	token, exp, err := s.deps.Sessions.Issue(acc.ID, acc.DisplayName(), acc.Role)
	if err != nil {
		return nil, err
	}
	log.Info("login succeeded", logger.Role(acc.Role), logger.Outcome(OutcomeSuccess.String()))
	return s.finish(&LoginResult{
		Outcome:      OutcomeSuccess,
		AccountID:    acc.ID,
		DisplayName:  acc.DisplayName(),
		Role:         acc.Role,
		SessionToken: token,
		ExpiresAt:    exp,
	}), nil
}

func (s *loginService) finish(res *LoginResult) *LoginResult {
	s.deps.Metrics.RecordLogin(res.Outcome.String())
	return res
}

// burnHash ejecuta una verificación contra un digest fijo para que un correo
// inexistente tarde lo mismo que una contraseña incorrecta.
func (s *loginService) burnHash(plain string) {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.deps.Hasher.Hash("alquiladora-romero-dummy")
	})
	if s.dummyDigest != "" {
		_, _ = s.deps.Hasher.Verify(plain, s.dummyDigest)
	}
}
