package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// MigrationsFS devuelve las migraciones del dialecto, con raíz en su carpeta.
func MigrationsFS(d Dialect) (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations/"+string(d))
}

func gooseDialect(d Dialect) string {
	if d == Postgres {
		return "pgx"
	}
	return "mysql"
}

// gooseUp se reemplaza en tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate aplica las migraciones embebidas pendientes.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	if err := prepareGoose(d); err != nil {
		return err
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("store: migrate up: %w", err)
	}
	return nil
}

// MigrateDown revierte la última migración.
func MigrateDown(ctx context.Context, db *sql.DB, d Dialect) error {
	if err := prepareGoose(d); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, ".")
}

// MigrationStatus imprime el estado de las migraciones (vía el logger de goose).
func MigrationStatus(ctx context.Context, db *sql.DB, d Dialect) error {
	if err := prepareGoose(d); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, ".")
}

func prepareGoose(d Dialect) error {
	sub, err := MigrationsFS(d)
	if err != nil {
		return err
	}
	goose.SetBaseFS(sub)
	if err := goose.SetDialect(gooseDialect(d)); err != nil {
		return fmt.Errorf("store: goose dialect: %w", err)
	}
	return nil
}
