package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/audit"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// MFAEnrollment lo que ve el usuario al habilitar MFA.
type MFAEnrollment struct {
	QRCode     string // data:image/png;base64,...
	OTPAuthURL string
}

// MFAService administra el secreto TOTP de una cuenta. No hay estado
// "pendiente": habilitar y exigir MFA son el mismo paso.
type MFAService interface {
	Enroll(ctx context.Context, accountID int64) (*MFAEnrollment, error)
	// VerifyForAccount valida un código contra el secreto guardado.
	// ErrAccountNotFound o ErrMFAInvalid.
	VerifyForAccount(ctx context.Context, accountID int64, code string) error
	Disable(ctx context.Context, accountID int64) error
	Status(ctx context.Context, accountID int64) (bool, error)
}

type mfaService struct {
	deps Deps
}

func NewMFAService(d Deps) MFAService {
	return &mfaService{deps: d}
}

func (s *mfaService) account(ctx context.Context, accountID int64) (*repository.Account, error) {
	acc, err := s.deps.Store.Accounts().GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, unavailable("accounts.get", err)
	}
	return acc, nil
}

func (s *mfaService) Enroll(ctx context.Context, accountID int64) (*MFAEnrollment, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.mfa"), logger.Op("Enroll"), logger.AccountID(accountID))

	acc, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	enr, err := s.deps.TOTP.Generate(acc.Email)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Store.Accounts().SetMFASecret(ctx, acc.ID, enr.Secret); err != nil {
		return nil, unavailable("accounts.set_mfa_secret", err)
	}
	s.deps.Metrics.RecordMFA("enable")
	log.Info("mfa habilitado")
	audit.Log(ctx, audit.MFAEnabled, acc.ID)
	return &MFAEnrollment{QRCode: enr.QRCode, OTPAuthURL: enr.URL}, nil
}

func (s *mfaService) VerifyForAccount(ctx context.Context, accountID int64, code string) error {
	acc, err := s.account(ctx, accountID)
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if !acc.MFAEnabled() || code == "" || !s.deps.TOTP.Verify(code, acc.MFASecret) {
		s.deps.Metrics.RecordMFA("verify_fail")
		return ErrMFAInvalid
	}
	s.deps.Metrics.RecordMFA("verify_ok")
	return nil
}

func (s *mfaService) Disable(ctx context.Context, accountID int64) error {
	if _, err := s.account(ctx, accountID); err != nil {
		return err
	}
	if err := s.deps.Store.Accounts().SetMFASecret(ctx, accountID, ""); err != nil {
		return unavailable("accounts.set_mfa_secret", err)
	}
	s.deps.Metrics.RecordMFA("disable")
	audit.Log(ctx, audit.MFADisabled, accountID)
	return nil
}

func (s *mfaService) Status(ctx context.Context, accountID int64) (bool, error) {
	acc, err := s.account(ctx, accountID)
	if err != nil {
		return false, err
	}
	return acc.MFAEnabled(), nil
}
