package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
)

type companyRepo struct {
	q DBTX
	d Dialect
}

// La tabla empresa tiene una sola fila con id fijo.
const companyID = 1

// companyColumns mapea el campo editable a su columna. Es la única fuente de
// nombres de columna interpolados en SQL.
var companyColumns = map[repository.CompanyField]string{
	repository.CompanyDireccion:     "direccion",
	repository.CompanyCorreo:        "correo",
	repository.CompanyTelefono:      "telefono",
	repository.CompanySlogan:        "slogan",
	repository.CompanyLogoURL:       "logo_url",
	repository.CompanyRedesSociales: "redes_sociales",
}

const mysqlUpsertCompany = `
INSERT INTO empresa (id, direccion, correo, telefono, slogan, redes_sociales, logo_url, creado_en, actualizado_en)
VALUES (?, ?, ?, ?, ?, CAST(? AS JSON), ?, ?, ?)
ON DUPLICATE KEY UPDATE
	direccion = VALUES(direccion),
	correo = VALUES(correo),
	telefono = VALUES(telefono),
	slogan = VALUES(slogan),
	redes_sociales = VALUES(redes_sociales),
	logo_url = VALUES(logo_url),
	actualizado_en = VALUES(actualizado_en)`

// xmax = 0 solo en filas recién insertadas.
const postgresUpsertCompany = `
INSERT INTO empresa AS e (id, direccion, correo, telefono, slogan, redes_sociales, logo_url, creado_en, actualizado_en)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb), $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	direccion = EXCLUDED.direccion,
	correo = EXCLUDED.correo,
	telefono = EXCLUDED.telefono,
	slogan = EXCLUDED.slogan,
	redes_sociales = EXCLUDED.redes_sociales,
	logo_url = EXCLUDED.logo_url,
	actualizado_en = EXCLUDED.actualizado_en
RETURNING (xmax = 0)`

func (r *companyRepo) jsonParam() string {
	if r.d == Postgres {
		return "CAST(? AS jsonb)"
	}
	return "CAST(? AS JSON)"
}

func (r *companyRepo) Get(ctx context.Context) (*repository.Company, error) {
	q := rebind(r.d, `SELECT direccion, correo, telefono, slogan, redes_sociales, logo_url, creado_en, actualizado_en FROM empresa WHERE id = ?`)
	var (
		c                    repository.Company
		dir, mail, tel, slogan sql.NullString
		redes, logo          sql.NullString
		created, updated     sql.NullTime
	)
	err := r.q.QueryRowContext(ctx, q, companyID).Scan(&dir, &mail, &tel, &slogan, &redes, &logo, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("company: get: %w", err)
	}
	c.Direccion = dir.String
	c.Correo = mail.String
	c.Telefono = tel.String
	c.Slogan = slogan.String
	c.LogoURL = logo.String
	if redes.Valid && redes.String != "" {
		c.RedesSociales = []byte(redes.String)
	}
	c.CreatedAt = created.Time
	c.UpdatedAt = updated.Time
	return &c, nil
}

func (r *companyRepo) Upsert(ctx context.Context, c repository.Company, at time.Time) (bool, error) {
	var redes sql.NullString
	if len(c.RedesSociales) > 0 {
		redes = sql.NullString{String: string(c.RedesSociales), Valid: true}
	}
	args := []any{companyID, nullIfEmpty(c.Direccion), nullIfEmpty(c.Correo), nullIfEmpty(c.Telefono),
		nullIfEmpty(c.Slogan), redes, nullIfEmpty(c.LogoURL), at.UTC(), at.UTC()}

	if r.d == Postgres {
		var inserted bool
		if err := r.q.QueryRowContext(ctx, postgresUpsertCompany, args...).Scan(&inserted); err != nil {
			return false, fmt.Errorf("company: upsert: %w", err)
		}
		return inserted, nil
	}

	res, err := r.q.ExecContext(ctx, mysqlUpsertCompany, args...)
	if err != nil {
		return false, fmt.Errorf("company: upsert: %w", err)
	}
	// MySQL: 1 = insert, 2 = update, 0 = sin cambios.
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("company: upsert: %w", err)
	}
	return n == 1, nil
}

func (r *companyRepo) UpdateField(ctx context.Context, field repository.CompanyField, value string, at time.Time) error {
	col, ok := companyColumns[field]
	if !ok {
		return repository.ErrInvalidInput
	}
	param := "?"
	if field == repository.CompanyRedesSociales {
		param = r.jsonParam()
	}
	q := rebind(r.d, `UPDATE empresa SET `+col+` = `+param+`, actualizado_en = ? WHERE id = ?`)
	res, err := r.q.ExecContext(ctx, q, nullIfEmpty(value), at.UTC(), companyID)
	if err != nil {
		return fmt.Errorf("company: update %s: %w", col, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	// MySQL reporta 0 filas si nada cambió; se confirma con un SELECT.
	var one int
	err = r.q.QueryRowContext(ctx, rebind(r.d, `SELECT 1 FROM empresa WHERE id = ?`), companyID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
