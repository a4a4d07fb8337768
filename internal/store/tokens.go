package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
)

type recoveryTokenRepo struct {
	q DBTX
	d Dialect
}

func (r *recoveryTokenRepo) Upsert(ctx context.Context, t repository.RecoveryToken) error {
	fecha, hora := splitDateTime(t.CreatedAt)

	var q string
	if r.d == Postgres {
		q = `INSERT INTO tbltoken (idUsuario, token, expiration, fecha, hora) VALUES ($1, $2, $3, $4::date, $5::time)
ON CONFLICT (idUsuario) DO UPDATE SET token = EXCLUDED.token, expiration = EXCLUDED.expiration, fecha = EXCLUDED.fecha, hora = EXCLUDED.hora`
	} else {
		q = `INSERT INTO tbltoken (idUsuario, token, expiration, fecha, hora) VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE token = VALUES(token), expiration = VALUES(expiration), fecha = VALUES(fecha), hora = VALUES(hora)`
	}
	if _, err := r.q.ExecContext(ctx, q, t.AccountID, t.Token, t.ExpiresAtMs, fecha, hora); err != nil {
		return fmt.Errorf("tokens: upsert: %w", err)
	}
	return nil
}

func (r *recoveryTokenRepo) Get(ctx context.Context, accountID int64, token string) (*repository.RecoveryToken, error) {
	q := rebind(r.d, `SELECT idUsuario, token, expiration, fecha, hora FROM tbltoken WHERE idUsuario = ? AND token = ?`)
	var (
		t           repository.RecoveryToken
		fecha, hora sql.NullString
	)
	err := r.q.QueryRowContext(ctx, q, accountID, token).Scan(&t.AccountID, &t.Token, &t.ExpiresAtMs, &fecha, &hora)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tokens: get: %w", err)
	}
	t.CreatedAt = joinDateTime(fecha, hora)
	return &t, nil
}

func (r *recoveryTokenRepo) Consume(ctx context.Context, accountID int64, token string) error {
	res, err := r.q.ExecContext(ctx, rebind(r.d, `DELETE FROM tbltoken WHERE idUsuario = ? AND token = ?`), accountID, token)
	if err != nil {
		return fmt.Errorf("tokens: consume: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tokens: consume: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
