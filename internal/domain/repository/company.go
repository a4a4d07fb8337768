package repository

import (
	"context"
	"encoding/json"
	"time"
)

// Company es la fila única de la tabla empresa (id = 1): los datos de
// contacto que muestra el sitio.
type Company struct {
	Direccion string
	Correo    string
	Telefono  string
	Slogan    string
	LogoURL   string
	// RedesSociales JSON libre (objeto o arreglo). nil = sin redes.
	RedesSociales json.RawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CompanyField es una columna de empresa editable de forma individual.
type CompanyField string

const (
	CompanyDireccion     CompanyField = "direccion"
	CompanyCorreo        CompanyField = "correo"
	CompanyTelefono      CompanyField = "telefono"
	CompanySlogan        CompanyField = "slogan"
	CompanyLogoURL       CompanyField = "logo_url"
	CompanyRedesSociales CompanyField = "redes_sociales"
)

// Valid indica si el campo está en la lista permitida.
func (f CompanyField) Valid() bool {
	switch f {
	case CompanyDireccion, CompanyCorreo, CompanyTelefono, CompanySlogan, CompanyLogoURL, CompanyRedesSociales:
		return true
	}
	return false
}

// CompanyRepository opera sobre la tabla empresa.
type CompanyRepository interface {
	// Get devuelve la fila o ErrNotFound si todavía no se capturó.
	Get(ctx context.Context) (*Company, error)

	// Upsert crea la fila o reemplaza todos sus campos. created indica si se insertó.
	Upsert(ctx context.Context, c Company, at time.Time) (created bool, err error)

	// UpdateField cambia una columna. ErrNotFound si la fila no existe;
	// ErrInvalidInput si el campo no está permitido.
	UpdateField(ctx context.Context, field CompanyField, value string, at time.Time) error
}
