package auth

import (
	"context"
	"errors"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/audit"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/password"
)

// PasswordService cambia contraseñas respetando el historial.
type PasswordService interface {
	// ChangePassword valida política e historial y persiste el nuevo digest.
	// ip solo se usa en el correo de aviso.
	ChangePassword(ctx context.Context, accountID int64, newPlain, ip string) error
	// VerifyCurrent confirma la contraseña vigente (ErrPasswordMismatch).
	VerifyCurrent(ctx context.Context, accountID int64, plain string) error
}

type passwordService struct {
	deps Deps
}

func NewPasswordService(d Deps) PasswordService {
	return &passwordService{deps: d}
}

func (s *passwordService) ChangePassword(ctx context.Context, accountID int64, newPlain, ip string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.password"),
		logger.Op("ChangePassword"),
		logger.AccountID(accountID),
	)

	if newPlain == "" {
		return ErrMissingFields
	}
	if reasons := s.deps.Policy.Validate(newPlain); len(reasons) > 0 {
		return &PolicyError{Reasons: reasons}
	}

	acc, err := s.deps.Store.Accounts().GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return unavailable("accounts.get", err)
	}

	// Paso 1-2: historial, más reciente primero. Cualquier coincidencia rechaza
	// sin escribir nada.
	history, err := s.deps.Store.PasswordHistory().ListRecent(ctx, accountID)
	if err != nil {
		return unavailable("history.list", err)
	}
	for _, h := range history {
		match, err := s.deps.Hasher.Verify(newPlain, h.Hash)
		if err != nil && !errors.Is(err, password.ErrMalformedHash) {
			return unavailable("hasher.verify", err)
		}
		if match {
			log.Info("password change rejected: reused")
			return ErrPasswordReused
		}
	}

	// Paso 3: persistir
	digest, err := s.deps.Hasher.Hash(newPlain)
	if err != nil {
		return err
	}
	now := s.deps.Now()
	if err := s.deps.Store.Accounts().UpdatePassword(ctx, accountID, digest); err != nil {
		return unavailable("accounts.update_password", err)
	}
	if err := s.deps.Store.PasswordHistory().Append(ctx, accountID, digest, now); err != nil {
		return unavailable("history.append", err)
	}

	// Paso 4: dejar solo las N más recientes
	if err := s.deps.Store.PasswordHistory().Prune(ctx, accountID, s.deps.Settings.PasswordHistorySize); err != nil {
		return unavailable("history.prune", err)
	}
	log.Info("password changed")
	audit.Log(ctx, audit.PasswordChanged, accountID, logger.ClientIP(ip))

	// Aviso por correo: best-effort, el cambio ya quedó hecho.
	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.SendPasswordChanged(ctx, acc.Email, acc.Nombre, now, ip); err != nil {
			log.Warn("no se pudo enviar aviso de cambio", logger.Err(err))
		}
	}
	return nil
}

func (s *passwordService) VerifyCurrent(ctx context.Context, accountID int64, plain string) error {
	if plain == "" {
		return ErrMissingFields
	}
	acc, err := s.deps.Store.Accounts().GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return unavailable("accounts.get", err)
	}
	ok, err := s.deps.Hasher.Verify(plain, acc.PasswordHash)
	if err != nil && !errors.Is(err, password.ErrMalformedHash) {
		return unavailable("hasher.verify", err)
	}
	if !ok {
		return ErrPasswordMismatch
	}
	return nil
}
