package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
)

type lockoutRepo struct {
	q DBTX
	d Dialect
}

const lockoutColumns = `idUsuarios, Ip, clienteId, Fecha, Hora, Intentos, lock_until`

// El incremento y el bloqueo se resuelven en una sola sentencia: dos fallos
// concurrentes no pueden perder un incremento. En MySQL las asignaciones del
// UPDATE se evalúan en orden, por eso lock_until se calcula antes de Intentos.
const mysqlRecordFailure = `
INSERT INTO tblipbloqueados (idUsuarios, Ip, clienteId, Fecha, Hora, Intentos, lock_until)
VALUES (?, ?, ?, ?, ?, 1, IF(1 >= ?, ?, NULL))
ON DUPLICATE KEY UPDATE
	lock_until = IF(Intentos + 1 >= ?, ?, lock_until),
	Intentos = Intentos + 1,
	Ip = VALUES(Ip),
	clienteId = VALUES(clienteId),
	Fecha = VALUES(Fecha),
	Hora = VALUES(Hora)`

const postgresRecordFailure = `
INSERT INTO tblipbloqueados AS b (idUsuarios, Ip, clienteId, Fecha, Hora, Intentos, lock_until)
VALUES ($1, $2, $3, $4::date, $5::time, 1, CASE WHEN 1 >= $6::int THEN $7::timestamptz ELSE NULL END)
ON CONFLICT (idUsuarios) DO UPDATE SET
	Intentos = b.Intentos + 1,
	lock_until = CASE WHEN b.Intentos + 1 >= $6::int THEN $7::timestamptz ELSE b.lock_until END,
	Ip = EXCLUDED.Ip,
	clienteId = EXCLUDED.clienteId,
	Fecha = EXCLUDED.Fecha,
	Hora = EXCLUDED.Hora
RETURNING ` + lockoutColumns

func scanLockout(row interface{ Scan(dest ...any) error }) (*repository.LockoutRecord, error) {
	var (
		rec         repository.LockoutRecord
		ip, device  sql.NullString
		fecha, hora sql.NullString
		until       sql.NullTime
	)
	if err := row.Scan(&rec.AccountID, &ip, &device, &fecha, &hora, &rec.Attempts, &until); err != nil {
		return nil, err
	}
	rec.IP = ip.String
	rec.DeviceID = device.String
	rec.LastAttemptAt = joinDateTime(fecha, hora)
	rec.LockedUntil = nullTimeToPtr(until)
	return &rec, nil
}

func (r *lockoutRepo) Get(ctx context.Context, accountID int64) (*repository.LockoutRecord, error) {
	q := rebind(r.d, `SELECT `+lockoutColumns+` FROM tblipbloqueados WHERE idUsuarios = ?`)
	rec, err := scanLockout(r.q.QueryRowContext(ctx, q, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lockouts: get: %w", err)
	}
	return rec, nil
}

func (r *lockoutRepo) RecordFailure(ctx context.Context, in repository.FailureInput) (*repository.LockoutRecord, error) {
	fecha, hora := splitDateTime(in.At)
	until := in.LockUntil.UTC()

	if r.d == Postgres {
		rec, err := scanLockout(r.q.QueryRowContext(ctx, postgresRecordFailure,
			in.AccountID, in.IP, in.DeviceID, fecha, hora, in.MaxAttempts, until))
		if err != nil {
			return nil, fmt.Errorf("lockouts: record failure: %w", err)
		}
		return rec, nil
	}

	_, err := r.q.ExecContext(ctx, mysqlRecordFailure,
		in.AccountID, in.IP, in.DeviceID, fecha, hora, in.MaxAttempts, until, in.MaxAttempts, until)
	if err != nil {
		return nil, fmt.Errorf("lockouts: record failure: %w", err)
	}
	return r.Get(ctx, in.AccountID)
}

func (r *lockoutRepo) SetLockedUntil(ctx context.Context, accountID int64, until time.Time) error {
	res, err := r.q.ExecContext(ctx, rebind(r.d, `UPDATE tblipbloqueados SET lock_until = ? WHERE idUsuarios = ?`), until.UTC(), accountID)
	if err != nil {
		return fmt.Errorf("lockouts: set locked_until: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *lockoutRepo) Delete(ctx context.Context, accountID int64) error {
	_, err := r.q.ExecContext(ctx, rebind(r.d, `DELETE FROM tblipbloqueados WHERE idUsuarios = ?`), accountID)
	if err != nil {
		return fmt.Errorf("lockouts: delete: %w", err)
	}
	return nil
}

func (r *lockoutRepo) RecordAnonymousFailure(ctx context.Context, ip, deviceID string, at time.Time) error {
	var q string
	if r.d == Postgres {
		q = `INSERT INTO tblintentosanonimos AS a (Ip, clienteId, Intentos, ultimo_intento) VALUES ($1, $2, 1, $3)
ON CONFLICT (Ip, clienteId) DO UPDATE SET Intentos = a.Intentos + 1, ultimo_intento = EXCLUDED.ultimo_intento`
	} else {
		q = `INSERT INTO tblintentosanonimos (Ip, clienteId, Intentos, ultimo_intento) VALUES (?, ?, 1, ?)
ON DUPLICATE KEY UPDATE Intentos = Intentos + 1, ultimo_intento = VALUES(ultimo_intento)`
	}
	if _, err := r.q.ExecContext(ctx, q, ip, deviceID, at.UTC()); err != nil {
		return fmt.Errorf("lockouts: anonymous failure: %w", err)
	}
	return nil
}
