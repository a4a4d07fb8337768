package store

import (
	"context"
	"fmt"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
)

type historyRepo struct {
	q DBTX
	d Dialect
}

func (r *historyRepo) ListRecent(ctx context.Context, accountID int64) ([]repository.PasswordHistoryEntry, error) {
	q := rebind(r.d, `SELECT id, idUsuarios, contrasena, created_at FROM tblhistorialpass WHERE idUsuarios = ? ORDER BY created_at DESC, id DESC`)
	rows, err := r.q.QueryContext(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []repository.PasswordHistoryEntry
	for rows.Next() {
		var e repository.PasswordHistoryEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Hash, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *historyRepo) Append(ctx context.Context, accountID int64, hash string, at time.Time) error {
	q := rebind(r.d, `INSERT INTO tblhistorialpass (idUsuarios, contrasena, created_at) VALUES (?, ?, ?)`)
	if _, err := r.q.ExecContext(ctx, q, accountID, hash, at.UTC()); err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Prune borra todo lo que no esté entre las keep entradas más recientes.
// La subconsulta derivada evita la restricción de MySQL sobre LIMIT dentro de IN.
func (r *historyRepo) Prune(ctx context.Context, accountID int64, keep int) error {
	if keep < 0 {
		keep = 0
	}
	q := rebind(r.d, `DELETE FROM tblhistorialpass
WHERE idUsuarios = ? AND id NOT IN (
	SELECT id FROM (
		SELECT id FROM tblhistorialpass WHERE idUsuarios = ? ORDER BY created_at DESC, id DESC LIMIT ?
	) AS keep_rows
)`)
	if _, err := r.q.ExecContext(ctx, q, accountID, accountID, keep); err != nil {
		return fmt.Errorf("history: prune: %w", err)
	}
	return nil
}
