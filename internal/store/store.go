// Package store implementa los repositorios de internal/domain/repository sobre
// database/sql. Soporta MySQL (github.com/go-sql-driver/mysql) y PostgreSQL
// (github.com/jackc/pgx/v5/stdlib). Las consultas se escriben con placeholders
// "?" y se reescriben a "$n" para PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
)

// Dialect identifica el motor SQL.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

// DBTX es el subconjunto de database/sql que usan los repos.
// *sql.DB y *sql.Tx lo satisfacen.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options configura el pool.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLStore implementa repository.Store.
type SQLStore struct {
	db      *sql.DB
	q       DBTX
	dialect Dialect
}

var _ repository.Store = (*SQLStore)(nil)

// Open abre el pool, lo configura y verifica conectividad.
func Open(ctx context.Context, opts Options) (*SQLStore, error) {
	d, driverName, err := ResolveDriver(opts.Driver)
	if err != nil {
		return nil, err
	}

	dsn := opts.DSN
	if d == MySQL {
		if dsn, err = ensureParseTime(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", d, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", d, err)
	}
	return &SQLStore{db: db, q: db, dialect: d}, nil
}

// New envuelve una conexión existente (ej: *sql.Tx o un pool abierto por el caller).
func New(q DBTX, d Dialect) *SQLStore {
	s := &SQLStore{q: q, dialect: d}
	if db, ok := q.(*sql.DB); ok {
		s.db = db
	}
	return s
}

// ensureParseTime fuerza parseTime=true: los repos escanean DATETIME a time.Time.
func ensureParseTime(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("store: dsn mysql inválido: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// ResolveDriver traduce el nombre configurado al dialecto y al driver de database/sql.
func ResolveDriver(name string) (Dialect, string, error) {
	switch name {
	case "mysql":
		return MySQL, "mysql", nil
	case "postgres", "pg", "pgx":
		return Postgres, "pgx", nil
	}
	return "", "", fmt.Errorf("store: driver no soportado %q", name)
}

func (s *SQLStore) Dialect() Dialect { return s.dialect }

// DB expone el pool (migraciones).
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Accounts() repository.AccountRepository {
	return &accountRepo{q: s.q, d: s.dialect}
}

func (s *SQLStore) Lockouts() repository.LockoutRepository {
	return &lockoutRepo{q: s.q, d: s.dialect}
}

func (s *SQLStore) PasswordHistory() repository.PasswordHistoryRepository {
	return &historyRepo{q: s.q, d: s.dialect}
}

func (s *SQLStore) RecoveryTokens() repository.RecoveryTokenRepository {
	return &recoveryTokenRepo{q: s.q, d: s.dialect}
}

func (s *SQLStore) Company() repository.CompanyRepository {
	return &companyRepo{q: s.q, d: s.dialect}
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

// rebind reescribe "?" a "$1..$n" para PostgreSQL. No soporta "?" dentro de literales.
func rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, '$')
			out = strconv.AppendInt(out, int64(n), 10)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// isUniqueViolation detecta duplicados en ambos motores.
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return true
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	return false
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// splitDateTime separa un instante en las columnas Fecha (DATE) y Hora (TIME).
func splitDateTime(t time.Time) (string, string) {
	t = t.UTC()
	return t.Format("2006-01-02"), t.Format("15:04:05")
}

// joinDateTime reconstruye el instante desde Fecha y Hora. Los drivers entregan
// DATE como time.Time o texto y TIME como texto, por eso se parsean prefijos.
func joinDateTime(fecha, hora sql.NullString) time.Time {
	if !fecha.Valid || len(fecha.String) < 10 {
		return time.Time{}
	}
	clock := "00:00:00"
	if hora.Valid && len(hora.String) >= 8 {
		clock = hora.String[:8]
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", fecha.String[:10]+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
