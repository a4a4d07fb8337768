package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
)

var dialects = []Dialect{MySQL, Postgres}

func newMockStore(t *testing.T, d Dialect) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return New(db, d), mock
}

// sqlExact arma la expresión para una consulta literal ya reescrita al dialecto.
func sqlExact(d Dialect, q string) string {
	return "^" + regexp.QuoteMeta(strings.TrimSpace(rebind(d, q))) + "$"
}

var lockoutRowColumns = []string{"idUsuarios", "Ip", "clienteId", "Fecha", "Hora", "Intentos", "lock_until"}

func TestLockouts_RecordFailureReachingThresholdStampsLock(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 30, 15, 0, time.UTC)
	until := at.Add(10 * time.Minute)
	in := repository.FailureInput{AccountID: 7, IP: "10.0.0.7", DeviceID: "dev-1", At: at, MaxAttempts: 5, LockUntil: until}

	for _, d := range dialects {
		t.Run(string(d), func(t *testing.T) {
			s, mock := newMockStore(t, d)
			row := sqlmock.NewRows(lockoutRowColumns).AddRow(int64(7), "10.0.0.7", "dev-1", "2026-05-01", "09:30:15", int64(5), until)

			if d == Postgres {
				mock.ExpectQuery(sqlExact(d, postgresRecordFailure)).
					WithArgs(int64(7), "10.0.0.7", "dev-1", "2026-05-01", "09:30:15", 5, until).
					WillReturnRows(row)
			} else {
				// dos pares (max, until): uno para el INSERT y otro para el UPDATE
				mock.ExpectExec(sqlExact(d, mysqlRecordFailure)).
					WithArgs(int64(7), "10.0.0.7", "dev-1", "2026-05-01", "09:30:15", 5, until, 5, until).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectQuery(sqlExact(d, `SELECT `+lockoutColumns+` FROM tblipbloqueados WHERE idUsuarios = ?`)).
					WithArgs(int64(7)).
					WillReturnRows(row)
			}

			rec, err := s.Lockouts().RecordFailure(context.Background(), in)
			require.NoError(t, err)
			require.Equal(t, 5, rec.Attempts)
			require.NotNil(t, rec.LockedUntil)
			require.True(t, rec.LockedUntil.Equal(until))
			require.True(t, rec.LastAttemptAt.Equal(at))
			require.Equal(t, "dev-1", rec.DeviceID)
		})
	}
}

func TestLockouts_RecordFailureBelowThreshold(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 30, 15, 0, time.UTC)
	s, mock := newMockStore(t, Postgres)
	mock.ExpectQuery(sqlExact(Postgres, postgresRecordFailure)).
		WillReturnRows(sqlmock.NewRows(lockoutRowColumns).AddRow(int64(7), "10.0.0.7", nil, "2026-05-01", "09:30:15", int64(2), nil))

	rec, err := s.Lockouts().RecordFailure(context.Background(), repository.FailureInput{AccountID: 7, IP: "10.0.0.7", At: at, MaxAttempts: 5, LockUntil: at.Add(time.Minute)})
	require.NoError(t, err)
	require.Equal(t, 2, rec.Attempts)
	require.Nil(t, rec.LockedUntil)
	require.Empty(t, rec.DeviceID)
}

func TestLockouts_GetMissingIsNotFound(t *testing.T) {
	for _, d := range dialects {
		t.Run(string(d), func(t *testing.T) {
			s, mock := newMockStore(t, d)
			mock.ExpectQuery(sqlExact(d, `SELECT `+lockoutColumns+` FROM tblipbloqueados WHERE idUsuarios = ?`)).
				WithArgs(int64(9)).
				WillReturnRows(sqlmock.NewRows(lockoutRowColumns))

			_, err := s.Lockouts().Get(context.Background(), 9)
			require.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}

func TestHistory_PruneKeepsNewest(t *testing.T) {
	const q = `DELETE FROM tblhistorialpass
WHERE idUsuarios = ? AND id NOT IN (
	SELECT id FROM (
		SELECT id FROM tblhistorialpass WHERE idUsuarios = ? ORDER BY created_at DESC, id DESC LIMIT ?
	) AS keep_rows
)`
	for _, d := range dialects {
		t.Run(string(d), func(t *testing.T) {
			s, mock := newMockStore(t, d)
			mock.ExpectExec(sqlExact(d, q)).
				WithArgs(int64(7), int64(7), 3).
				WillReturnResult(sqlmock.NewResult(0, 1))
			// keep negativo se trata como 0
			mock.ExpectExec(sqlExact(d, q)).
				WithArgs(int64(7), int64(7), 0).
				WillReturnResult(sqlmock.NewResult(0, 3))

			require.NoError(t, s.PasswordHistory().Prune(context.Background(), 7, 3))
			require.NoError(t, s.PasswordHistory().Prune(context.Background(), 7, -1))
		})
	}
}

func TestHistory_ListRecentNewestFirst(t *testing.T) {
	newer := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s, mock := newMockStore(t, Postgres)
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC$`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "idUsuarios", "contrasena", "created_at"}).
			AddRow(int64(2), int64(7), "$argon2id$b", newer).
			AddRow(int64(1), int64(7), "$argon2id$a", newer.Add(-time.Hour)))

	got, err := s.PasswordHistory().ListRecent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "$argon2id$b", got[0].Hash)
}

func TestTokens_ConsumeMissingIsNotFound(t *testing.T) {
	for _, d := range dialects {
		t.Run(string(d), func(t *testing.T) {
			s, mock := newMockStore(t, d)
			q := sqlExact(d, `DELETE FROM tbltoken WHERE idUsuario = ? AND token = ?`)
			mock.ExpectExec(q).WithArgs(int64(7), "ABCD2345").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(q).WithArgs(int64(7), "ABCD2345").WillReturnResult(sqlmock.NewResult(0, 1))

			require.ErrorIs(t, s.RecoveryTokens().Consume(context.Background(), 7, "ABCD2345"), repository.ErrNotFound)
			require.NoError(t, s.RecoveryTokens().Consume(context.Background(), 7, "ABCD2345"))
		})
	}
}

func TestTokens_UpsertPerDialect(t *testing.T) {
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tok := repository.RecoveryToken{AccountID: 7, Token: "ABCD2345", ExpiresAtMs: created.Add(15 * time.Minute).UnixMilli(), CreatedAt: created}

	s, mock := newMockStore(t, MySQL)
	mock.ExpectExec(`ON DUPLICATE KEY UPDATE token = VALUES\(token\)`).
		WithArgs(int64(7), "ABCD2345", tok.ExpiresAtMs, "2026-05-01", "09:00:00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.RecoveryTokens().Upsert(context.Background(), tok))

	s, mock = newMockStore(t, Postgres)
	mock.ExpectExec(`ON CONFLICT \(idUsuario\) DO UPDATE SET token = EXCLUDED\.token`).
		WithArgs(int64(7), "ABCD2345", tok.ExpiresAtMs, "2026-05-01", "09:00:00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.RecoveryTokens().Upsert(context.Background(), tok))
}

func TestAccounts_UpdateZeroRowsFallback(t *testing.T) {
	for _, d := range dialects {
		t.Run(string(d), func(t *testing.T) {
			s, mock := newMockStore(t, d)
			upd := sqlExact(d, `UPDATE tblusuarios SET Telefono = ? WHERE idUsuarios = ?`)
			exists := sqlExact(d, `SELECT 1 FROM tblusuarios WHERE idUsuarios = ?`)

			// cuenta inexistente
			mock.ExpectExec(upd).WithArgs("7711234567", int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(exists).WithArgs(int64(99)).WillReturnRows(sqlmock.NewRows([]string{"1"}))
			// mismo valor: MySQL reporta 0 filas pero la cuenta existe
			mock.ExpectExec(upd).WithArgs("7711234567", int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(exists).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

			ctx := context.Background()
			err := s.Accounts().UpdateProfileField(ctx, 99, repository.FieldTelefono, "7711234567")
			require.ErrorIs(t, err, repository.ErrNotFound)
			require.NoError(t, s.Accounts().UpdateProfileField(ctx, 7, repository.FieldTelefono, "7711234567"))
		})
	}
}

func TestAccounts_CreateDuplicateIsConflict(t *testing.T) {
	in := repository.CreateAccountInput{Nombre: "Ana", ApellidoP: "Romero", Email: " A@x.com ", PasswordHash: "$argon2id$h"}
	const q = `INSERT INTO tblusuarios (Nombre, ApellidoP, ApellidoM, Correo, Telefono, Passw, Rol) VALUES (?, ?, ?, ?, ?, ?, ?)`
	args := []driver.Value{"Ana", "Romero", nil, "a@x.com", nil, "$argon2id$h", repository.RoleCliente}

	t.Run("mysql", func(t *testing.T) {
		s, mock := newMockStore(t, MySQL)
		mock.ExpectExec(sqlExact(MySQL, q)).WithArgs(args...).WillReturnResult(sqlmock.NewResult(12, 1))
		mock.ExpectExec(sqlExact(MySQL, q)).WithArgs(args...).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		id, err := s.Accounts().Create(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, int64(12), id)
		_, err = s.Accounts().Create(context.Background(), in)
		require.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("postgres", func(t *testing.T) {
		s, mock := newMockStore(t, Postgres)
		ret := sqlExact(Postgres, q+` RETURNING idUsuarios`)
		mock.ExpectQuery(ret).WithArgs(args...).WillReturnRows(sqlmock.NewRows([]string{"idUsuarios"}).AddRow(int64(12)))
		mock.ExpectQuery(ret).WithArgs(args...).WillReturnError(&pgconn.PgError{Code: "23505"})

		id, err := s.Accounts().Create(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, int64(12), id)
		_, err = s.Accounts().Create(context.Background(), in)
		require.ErrorIs(t, err, repository.ErrConflict)
	})
}

func TestCompany_UpsertReportsInsert(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	c := repository.Company{Direccion: "Calle 1", Correo: "contacto@romero.mx", RedesSociales: []byte(`{"facebook":"romero"}`)}
	args := []driver.Value{1, "Calle 1", "contacto@romero.mx", nil, nil, `{"facebook":"romero"}`, nil, at, at}

	s, mock := newMockStore(t, MySQL)
	mock.ExpectExec(sqlExact(MySQL, mysqlUpsertCompany)).WithArgs(args...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(sqlExact(MySQL, mysqlUpsertCompany)).WithArgs(args...).WillReturnResult(sqlmock.NewResult(1, 2))
	created, err := s.Company().Upsert(context.Background(), c, at)
	require.NoError(t, err)
	require.True(t, created)
	created, err = s.Company().Upsert(context.Background(), c, at)
	require.NoError(t, err)
	require.False(t, created)

	s, mock = newMockStore(t, Postgres)
	mock.ExpectQuery(sqlExact(Postgres, postgresUpsertCompany)).WithArgs(args...).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(false))
	created, err = s.Company().Upsert(context.Background(), c, at)
	require.NoError(t, err)
	require.False(t, created)
}

func TestCompany_UpdateField(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	s, mock := newMockStore(t, Postgres)
	mock.ExpectExec(sqlExact(Postgres, `UPDATE empresa SET redes_sociales = CAST(? AS jsonb), actualizado_en = ? WHERE id = ?`)).
		WithArgs(`["ig"]`, at, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Company().UpdateField(ctx, repository.CompanyRedesSociales, `["ig"]`, at))

	s, mock = newMockStore(t, MySQL)
	mock.ExpectExec(sqlExact(MySQL, `UPDATE empresa SET slogan = ?, actualizado_en = ? WHERE id = ?`)).
		WithArgs("Rentamos todo", at, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(sqlExact(MySQL, `SELECT 1 FROM empresa WHERE id = ?`)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	require.ErrorIs(t, s.Company().UpdateField(ctx, repository.CompanySlogan, "Rentamos todo", at), repository.ErrNotFound)

	require.ErrorIs(t, s.Company().UpdateField(ctx, "id", "2", at), repository.ErrInvalidInput)
}

func TestCompany_GetMissingIsNotFound(t *testing.T) {
	s, mock := newMockStore(t, Postgres)
	mock.ExpectQuery(`FROM empresa WHERE id = \$1$`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"direccion", "correo", "telefono", "slogan", "redes_sociales", "logo_url", "creado_en", "actualizado_en"}))
	_, err := s.Company().Get(context.Background())
	require.ErrorIs(t, err, repository.ErrNotFound)
}
