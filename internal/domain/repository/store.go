package repository

import "context"

// Store agrupa los repositorios de un mismo backend.
type Store interface {
	Accounts() AccountRepository
	Lockouts() LockoutRepository
	PasswordHistory() PasswordHistoryRepository
	RecoveryTokens() RecoveryTokenRepository
	Company() CompanyRepository

	Ping(ctx context.Context) error
	Close() error
}
