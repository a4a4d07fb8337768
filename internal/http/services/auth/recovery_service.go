package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/audit"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/captcha"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
	tokens "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/token"
)

// recoveryCodeLen es el largo del código que se envía por correo.
const recoveryCodeLen = 8

// IssuedToken es un token de recuperación recién emitido.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// ResetGrant autoriza un único cambio de contraseña tras validar el token.
type ResetGrant struct {
	AccountID int64
	Token     string
	ExpiresAt time.Time
}

type RecoveryService interface {
	// RequestRecovery responde igual exista o no el correo.
	RequestRecovery(ctx context.Context, email, captchaToken, ip string) error
	// Issue reemplaza cualquier token previo de la cuenta.
	Issue(ctx context.Context, accountID int64) (*IssuedToken, error)
	// Validate consume el token (un solo uso). ErrTokenInvalid o ErrTokenExpired.
	Validate(ctx context.Context, accountID int64, token string) (*ResetGrant, error)
}

type recoveryService struct {
	deps Deps
}

func NewRecoveryService(d Deps) RecoveryService {
	return &recoveryService{deps: d}
}

func (s *recoveryService) RequestRecovery(ctx context.Context, email, captchaToken, ip string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.recovery"), logger.Op("RequestRecovery"))

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ErrMissingFields
	}

	if err := s.deps.Captcha.Verify(ctx, captchaToken, ip); err != nil {
		if errors.Is(err, captcha.ErrRejected) {
			s.deps.Metrics.RecordRecovery("captcha_rejected")
			return ErrCaptchaRejected
		}
		return unavailable("captcha.verify", err)
	}

	acc, err := s.deps.Store.Accounts().GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// Misma respuesta que un correo existente.
		log.Info("recovery requested for unknown email")
		s.deps.Metrics.RecordRecovery("unknown_email")
		return nil
	}
	if err != nil {
		return unavailable("accounts.get_by_email", err)
	}

	issued, err := s.Issue(ctx, acc.ID)
	if err != nil {
		return err
	}
	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.SendRecoveryCode(ctx, acc.Email, acc.Nombre, issued.Token, s.deps.Settings.RecoveryTokenTTL); err != nil {
			return unavailable("mail.send_recovery", err)
		}
	}
	log.Info("recovery code sent", logger.AccountID(acc.ID))
	audit.Log(ctx, audit.RecoveryIssued, acc.ID, logger.ClientIP(ip))
	return nil
}

func (s *recoveryService) Issue(ctx context.Context, accountID int64) (*IssuedToken, error) {
	code, err := tokens.GenerateRecoveryCode(recoveryCodeLen)
	if err != nil {
		return nil, err
	}
	now := s.deps.Now()
	exp := now.Add(s.deps.Settings.RecoveryTokenTTL)
	err = s.deps.Store.RecoveryTokens().Upsert(ctx, repository.RecoveryToken{
		AccountID:   accountID,
		Token:       code,
		ExpiresAtMs: exp.UnixMilli(),
		CreatedAt:   now,
	})
	if err != nil {
		return nil, unavailable("tokens.upsert", err)
	}
	s.deps.Metrics.RecordRecovery("issued")
	return &IssuedToken{Token: code, ExpiresAt: time.UnixMilli(exp.UnixMilli())}, nil
}

func (s *recoveryService) Validate(ctx context.Context, accountID int64, token string) (*ResetGrant, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.recovery"), logger.Op("Validate"), logger.AccountID(accountID))

	// Los códigos se emiten en mayúsculas; el usuario puede teclearlos en minúsculas.
	token = strings.ToUpper(strings.TrimSpace(token))
	if accountID <= 0 || token == "" {
		return nil, ErrMissingFields
	}

	rec, err := s.deps.Store.RecoveryTokens().Get(ctx, accountID, token)
	if errors.Is(err, repository.ErrNotFound) {
		s.deps.Metrics.RecordRecovery("invalid")
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, unavailable("tokens.get", err)
	}

	// Vencido: se rechaza sin borrar; el siguiente Issue lo reemplaza.
	if s.deps.Now().UnixMilli() > rec.ExpiresAtMs {
		s.deps.Metrics.RecordRecovery("expired")
		log.Info("recovery token expired")
		return nil, ErrTokenExpired
	}

	// Dos validaciones concurrentes: solo una logra borrar la fila.
	if err := s.deps.Store.RecoveryTokens().Consume(ctx, accountID, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.deps.Metrics.RecordRecovery("invalid")
			return nil, ErrTokenInvalid
		}
		return nil, unavailable("tokens.consume", err)
	}

	grant, exp, err := s.deps.Sessions.IssueReset(accountID, s.deps.Settings.ResetGrantTTL)
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.RecordRecovery("validated")
	log.Info("recovery token consumed")
	audit.Log(ctx, audit.RecoveryRedeemed, accountID)
	return &ResetGrant{AccountID: accountID, Token: grant, ExpiresAt: exp}, nil
}
