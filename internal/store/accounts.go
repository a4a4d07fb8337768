package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
)

type accountRepo struct {
	q DBTX
	d Dialect
}

const accountColumns = `idUsuarios, Nombre, ApellidoP, ApellidoM, Correo, Telefono, Passw, Rol, mfa_secret, foto_Perfil, Fecha_ActualizacionF`

// profileColumns mapea el campo expuesto por la API a la columna real.
// Es la única fuente de nombres de columna interpolados en SQL.
var profileColumns = map[repository.ProfileField]string{
	repository.FieldNombre:    "Nombre",
	repository.FieldApellidoP: "ApellidoP",
	repository.FieldApellidoM: "ApellidoM",
	repository.FieldTelefono:  "Telefono",
}

func scanAccount(row interface{ Scan(dest ...any) error }) (*repository.Account, error) {
	var (
		a         repository.Account
		apM, tel  sql.NullString
		mfa, foto sql.NullString
		updatedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Nombre, &a.ApellidoP, &apM, &a.Email, &tel, &a.PasswordHash, &a.Role, &mfa, &foto, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.ApellidoM = apM.String
	a.Telefono = tel.String
	a.MFASecret = mfa.String
	a.AvatarURL = foto.String
	a.ProfileUpdatedAt = nullTimeToPtr(updatedAt)
	return &a, nil
}

func (r *accountRepo) Create(ctx context.Context, in repository.CreateAccountInput) (int64, error) {
	role := in.Role
	if role == "" {
		role = repository.RoleCliente
	}
	args := []any{in.Nombre, in.ApellidoP, nullIfEmpty(in.ApellidoM), strings.ToLower(strings.TrimSpace(in.Email)), nullIfEmpty(in.Telefono), in.PasswordHash, role}
	const q = `INSERT INTO tblusuarios (Nombre, ApellidoP, ApellidoM, Correo, Telefono, Passw, Rol) VALUES (?, ?, ?, ?, ?, ?, ?)`

	if r.d == Postgres {
		var id int64
		err := r.q.QueryRowContext(ctx, rebind(r.d, q+` RETURNING idUsuarios`), args...).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, repository.ErrConflict
			}
			return 0, fmt.Errorf("accounts: insert: %w", err)
		}
		return id, nil
	}

	res, err := r.q.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrConflict
		}
		return 0, fmt.Errorf("accounts: insert: %w", err)
	}
	return res.LastInsertId()
}

func (r *accountRepo) GetByID(ctx context.Context, id int64) (*repository.Account, error) {
	q := rebind(r.d, `SELECT `+accountColumns+` FROM tblusuarios WHERE idUsuarios = ?`)
	a, err := scanAccount(r.q.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return a, err
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	q := rebind(r.d, `SELECT `+accountColumns+` FROM tblusuarios WHERE Correo = ?`)
	a, err := scanAccount(r.q.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return a, err
}

func (r *accountRepo) List(ctx context.Context) ([]repository.Account, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+accountColumns+` FROM tblusuarios ORDER BY idUsuarios`)
	if err != nil {
		return nil, fmt.Errorf("accounts: list: %w", err)
	}
	defer rows.Close()

	var out []repository.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *accountRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.update(ctx, id, `UPDATE tblusuarios SET Passw = ? WHERE idUsuarios = ?`, hash, id)
}

func (r *accountRepo) UpdateProfileField(ctx context.Context, id int64, field repository.ProfileField, value string) error {
	col, ok := profileColumns[field]
	if !ok {
		return repository.ErrInvalidInput
	}
	return r.update(ctx, id, `UPDATE tblusuarios SET `+col+` = ? WHERE idUsuarios = ?`, value, id)
}

func (r *accountRepo) UpdateAvatar(ctx context.Context, id int64, url string, at time.Time) error {
	return r.update(ctx, id, `UPDATE tblusuarios SET foto_Perfil = ?, Fecha_ActualizacionF = ? WHERE idUsuarios = ?`, url, at.UTC(), id)
}

func (r *accountRepo) SetMFASecret(ctx context.Context, id int64, secret string) error {
	return r.update(ctx, id, `UPDATE tblusuarios SET mfa_secret = ? WHERE idUsuarios = ?`, nullIfEmpty(secret), id)
}

// update ejecuta un UPDATE por id y traduce "0 filas" a ErrNotFound. MySQL
// reporta 0 filas cuando el valor no cambia, así que se confirma con un SELECT.
func (r *accountRepo) update(ctx context.Context, id int64, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, rebind(r.d, query), args...)
	if err != nil {
		return fmt.Errorf("accounts: update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var one int
	err = r.q.QueryRowContext(ctx, rebind(r.d, `SELECT 1 FROM tblusuarios WHERE idUsuarios = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
