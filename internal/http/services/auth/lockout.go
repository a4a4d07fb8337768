package auth

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
)

// LockStatus es la decisión del tracker antes de verificar la contraseña.
type LockStatus struct {
	Locked bool
	// RemainingSeconds es nil cuando el bloqueo se acaba de armar en este
	// mismo chequeo (primera detección del umbral).
	RemainingSeconds *int64
}

// LockoutTracker lleva los intentos fallidos por cuenta y decide el bloqueo.
// La clave del bloqueo es solo el id de cuenta; IP y dispositivo se guardan
// con fines forenses.
type LockoutTracker struct {
	repo     repository.LockoutRepository
	max      int
	duration time.Duration
	now      func() time.Time
}

func NewLockoutTracker(repo repository.LockoutRepository, max int, duration time.Duration, now func() time.Time) *LockoutTracker {
	if now == nil {
		now = time.Now
	}
	return &LockoutTracker{repo: repo, max: max, duration: duration, now: now}
}

// Check aplica las reglas del registro de bloqueo:
//   - sin registro: no bloqueado
//   - lockedUntil vencido: se borra el registro, no bloqueado
//   - lockedUntil futuro: bloqueado con los segundos restantes
//   - attempts >= max sin lockedUntil: se arma el bloqueo, bloqueado sin segundos
func (t *LockoutTracker) Check(ctx context.Context, accountID int64) (LockStatus, error) {
	rec, err := t.repo.Get(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return LockStatus{}, nil
	}
	if err != nil {
		return LockStatus{}, unavailable("lockout.get", err)
	}

	now := t.now()
	if rec.LockedUntil != nil {
		if !rec.LockedUntil.After(now) {
			if err := t.repo.Delete(ctx, accountID); err != nil {
				return LockStatus{}, unavailable("lockout.delete", err)
			}
			return LockStatus{}, nil
		}
		remaining := remainingSeconds(*rec.LockedUntil, now)
		return LockStatus{Locked: true, RemainingSeconds: &remaining}, nil
	}

	if rec.Attempts >= t.max {
		if err := t.repo.SetLockedUntil(ctx, accountID, now.Add(t.duration)); err != nil {
			return LockStatus{}, unavailable("lockout.set_locked_until", err)
		}
		return LockStatus{Locked: true}, nil
	}
	return LockStatus{}, nil
}

// RecordFailure suma un intento fallido. Al llegar a max estampa lockedUntil.
func (t *LockoutTracker) RecordFailure(ctx context.Context, accountID int64, ip, deviceID string) (*repository.LockoutRecord, error) {
	now := t.now()
	rec, err := t.repo.RecordFailure(ctx, repository.FailureInput{
		AccountID:   accountID,
		IP:          ip,
		DeviceID:    deviceID,
		At:          now,
		MaxAttempts: t.max,
		LockUntil:   now.Add(t.duration),
	})
	if err != nil {
		return nil, unavailable("lockout.record_failure", err)
	}
	return rec, nil
}

// RecordAnonymous registra un fallo contra un correo inexistente (solo IP y
// dispositivo). Nunca bloquea a nadie.
func (t *LockoutTracker) RecordAnonymous(ctx context.Context, ip, deviceID string) error {
	if err := t.repo.RecordAnonymousFailure(ctx, ip, deviceID, t.now()); err != nil {
		return unavailable("lockout.anonymous", err)
	}
	return nil
}

// Clear borra el registro sin condiciones (login exitoso, desbloqueo manual).
func (t *LockoutTracker) Clear(ctx context.Context, accountID int64) error {
	if err := t.repo.Delete(ctx, accountID); err != nil {
		return unavailable("lockout.delete", err)
	}
	return nil
}

// remainingSeconds = ceil((until - now) / 1s)
func remainingSeconds(until, now time.Time) int64 {
	return int64(math.Ceil(until.Sub(now).Seconds()))
}
