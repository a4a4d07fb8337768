package repository

import (
	"context"
	"time"
)

// LockoutRecord es una fila de tblipbloqueados (una por cuenta).
type LockoutRecord struct {
	AccountID     int64
	IP            string
	DeviceID      string
	LastAttemptAt time.Time
	Attempts      int
	// LockedUntil nil: todavía no se alcanzó el máximo de intentos.
	LockedUntil *time.Time
}

// FailureInput describe un intento fallido a registrar.
//
// El repositorio incrementa Attempts de forma atómica y, cuando el nuevo valor
// alcanza MaxAttempts, fija LockedUntil = LockUntil en la misma sentencia.
type FailureInput struct {
	AccountID   int64
	IP          string
	DeviceID    string
	At          time.Time
	MaxAttempts int
	LockUntil   time.Time
}

// LockoutRepository opera sobre tblipbloqueados y tblintentosanonimos.
type LockoutRepository interface {
	// Get devuelve el registro de la cuenta o ErrNotFound.
	Get(ctx context.Context, accountID int64) (*LockoutRecord, error)

	// RecordFailure hace upsert del intento y devuelve la fila resultante.
	RecordFailure(ctx context.Context, in FailureInput) (*LockoutRecord, error)

	// SetLockedUntil fija el bloqueo en un registro existente.
	SetLockedUntil(ctx context.Context, accountID int64, until time.Time) error

	// Delete borra el registro. No falla si no existe.
	Delete(ctx context.Context, accountID int64) error

	// RecordAnonymousFailure cuenta intentos contra correos inexistentes por
	// (ip, dispositivo). Solo forense: nunca bloquea un login.
	RecordAnonymousFailure(ctx context.Context, ip, deviceID string, at time.Time) error
}
