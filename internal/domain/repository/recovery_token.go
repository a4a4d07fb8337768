package repository

import (
	"context"
	"time"
)

// RecoveryToken es una fila de tbltoken. Hay como máximo uno por cuenta.
type RecoveryToken struct {
	AccountID int64
	Token     string
	// ExpiresAtMs en milisegundos epoch (columna expiration).
	ExpiresAtMs int64
	CreatedAt   time.Time
}

// ExpiresAt convierte la expiración a time.Time.
func (t RecoveryToken) ExpiresAt() time.Time {
	return time.UnixMilli(t.ExpiresAtMs)
}

// RecoveryTokenRepository opera sobre tbltoken.
type RecoveryTokenRepository interface {
	// Upsert reemplaza cualquier token previo de la cuenta.
	Upsert(ctx context.Context, t RecoveryToken) error

	// Get busca por (cuenta, token). ErrNotFound si no coincide.
	Get(ctx context.Context, accountID int64, token string) (*RecoveryToken, error)

	// Consume borra el token. ErrNotFound si ya no existía, lo que garantiza
	// un único consumo aun con validaciones concurrentes.
	Consume(ctx context.Context, accountID int64, token string) error
}
