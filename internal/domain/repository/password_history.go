package repository

import (
	"context"
	"time"
)

// PasswordHistoryEntry es una fila de tblhistorialpass.
type PasswordHistoryEntry struct {
	ID        int64
	AccountID int64
	Hash      string
	CreatedAt time.Time
}

// PasswordHistoryRepository opera sobre tblhistorialpass.
type PasswordHistoryRepository interface {
	// ListRecent devuelve el historial de la cuenta, más reciente primero.
	ListRecent(ctx context.Context, accountID int64) ([]PasswordHistoryEntry, error)

	Append(ctx context.Context, accountID int64, hash string, at time.Time) error

	// Prune deja solo las keep entradas más recientes.
	Prune(ctx context.Context, accountID int64, keep int) error
}
