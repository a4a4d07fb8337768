// Package bootstrap crea la primera cuenta Administrador cuando la base está
// vacía de administradores. Lo usan el servicio al arrancar (ADMIN_EMAIL /
// ADMIN_PASSWORD) y el comando create-admin del CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	authsvc "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/auth"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// AdminConfig datos de la cuenta a crear.
type AdminConfig struct {
	Email     string
	Password  string
	Nombre    string
	ApellidoP string
}

func (c AdminConfig) withDefaults() AdminConfig {
	if strings.TrimSpace(c.Nombre) == "" {
		c.Nombre = "Administrador"
	}
	if strings.TrimSpace(c.ApellidoP) == "" {
		c.ApellidoP = "Sistema"
	}
	return c
}

// HasAdmin indica si existe al menos una cuenta con rol Administrador.
func HasAdmin(ctx context.Context, accounts repository.AccountRepository) (bool, error) {
	all, err := accounts.List(ctx)
	if err != nil {
		return false, fmt.Errorf("bootstrap: listar cuentas: %w", err)
	}
	for _, a := range all {
		if a.Role == repository.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// CreateAdmin registra la cuenta con rol Administrador pasando por la misma
// validación y política de contraseña que el registro público.
func CreateAdmin(ctx context.Context, reg authsvc.RegisterService, cfg AdminConfig) (int64, error) {
	cfg = cfg.withDefaults()
	id, err := reg.Register(ctx, authsvc.RegisterInput{
		Nombre:    cfg.Nombre,
		ApellidoP: cfg.ApellidoP,
		Email:     cfg.Email,
		Password:  cfg.Password,
		Role:      repository.RoleAdmin,
	})
	var pe *authsvc.PolicyError
	switch {
	case errors.As(err, &pe):
		return 0, fmt.Errorf("bootstrap: contraseña rechazada: %s", strings.Join(pe.Reasons, ", "))
	case errors.Is(err, authsvc.ErrEmailTaken):
		return 0, fmt.Errorf("bootstrap: el correo %s ya está registrado", cfg.Email)
	case err != nil:
		return 0, fmt.Errorf("bootstrap: crear administrador: %w", err)
	}
	return id, nil
}

// EnsureAdmin crea el administrador solo si todavía no hay ninguno.
// Devuelve created=false cuando ya existía uno.
func EnsureAdmin(ctx context.Context, accounts repository.AccountRepository, reg authsvc.RegisterService, cfg AdminConfig) (id int64, created bool, err error) {
	log := logger.From(ctx).With(logger.Component("bootstrap"))

	has, err := HasAdmin(ctx, accounts)
	if err != nil {
		return 0, false, err
	}
	if has {
		log.Debug("administrador existente, se omite bootstrap")
		return 0, false, nil
	}
	if cfg.Email == "" || cfg.Password == "" {
		log.Warn("no hay administradores y falta ADMIN_EMAIL/ADMIN_PASSWORD")
		return 0, false, nil
	}

	id, err = CreateAdmin(ctx, reg, cfg)
	if err != nil {
		return 0, false, err
	}
	log.Info("administrador inicial creado", logger.AccountID(id), logger.Email(cfg.Email))
	return id, true, nil
}
