package repository

import (
	"context"
	"strings"
	"time"
)

const (
	RoleCliente = "Cliente"
	RoleAdmin   = "Administrador"
)

// Account es una fila de tblusuarios.
type Account struct {
	ID           int64
	Nombre       string
	ApellidoP    string
	ApellidoM    string
	Email        string
	Telefono     string
	PasswordHash string
	Role         string
	// MFASecret vacío significa MFA deshabilitado.
	MFASecret        string
	AvatarURL        string
	ProfileUpdatedAt *time.Time
}

// MFAEnabled reporta si la cuenta tiene un secreto TOTP enrolado.
func (a *Account) MFAEnabled() bool {
	return strings.TrimSpace(a.MFASecret) != ""
}

// DisplayName es el nombre que viaja en el token de sesión.
func (a *Account) DisplayName() string {
	return a.Nombre
}

// CreateAccountInput datos para registrar una cuenta. PasswordHash ya viene hasheado.
type CreateAccountInput struct {
	Nombre       string
	ApellidoP    string
	ApellidoM    string
	Email        string
	Telefono     string
	PasswordHash string
	Role         string
}

// ProfileField es un campo de perfil editable por el propio usuario.
type ProfileField string

const (
	FieldNombre    ProfileField = "nombre"
	FieldApellidoP ProfileField = "apellidoP"
	FieldApellidoM ProfileField = "apellidoM"
	FieldTelefono  ProfileField = "telefono"
)

// Valid indica si el campo está en la lista blanca.
func (f ProfileField) Valid() bool {
	switch f {
	case FieldNombre, FieldApellidoP, FieldApellidoM, FieldTelefono:
		return true
	}
	return false
}

// AccountRepository opera sobre tblusuarios.
type AccountRepository interface {
	// Create inserta la cuenta y devuelve su id. ErrConflict si el email existe.
	Create(ctx context.Context, in CreateAccountInput) (int64, error)

	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetByEmail busca por correo exacto. ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	List(ctx context.Context) ([]Account, error)

	UpdatePassword(ctx context.Context, id int64, hash string) error

	// UpdateProfileField actualiza un campo de la lista blanca.
	// ErrInvalidInput si el campo no está permitido, ErrNotFound si la cuenta no existe.
	UpdateProfileField(ctx context.Context, id int64, field ProfileField, value string) error

	UpdateAvatar(ctx context.Context, id int64, url string, at time.Time) error

	// SetMFASecret guarda el secreto TOTP; "" lo borra (deshabilita MFA).
	SetMFASecret(ctx context.Context, id int64, secret string) error
}
