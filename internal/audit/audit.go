// Package audit emite eventos de seguridad (bloqueos, cambios de contraseña,
// MFA) como líneas estructuradas en el logger del request. Todos llevan
// component=audit para poder filtrarlos en el agregador.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// Event es el nombre estable del evento.
type Event string

const (
	AccountLocked    Event = "account_locked"
	AccountUnlocked  Event = "account_unlocked"
	PasswordChanged  Event = "password_changed"
	RecoveryIssued   Event = "recovery_issued"
	RecoveryRedeemed Event = "recovery_redeemed"
	MFAEnabled       Event = "mfa_enabled"
	MFADisabled      Event = "mfa_disabled"
	AccountCreated   Event = "account_created"
)

// Log escribe el evento con el logger del contexto.
func Log(ctx context.Context, event Event, accountID int64, fields ...zap.Field) {
	base := []zap.Field{
		logger.Component("audit"),
		zap.String("event", string(event)),
		logger.AccountID(accountID),
	}
	logger.From(ctx).Info("audit", append(base, fields...)...)
}
