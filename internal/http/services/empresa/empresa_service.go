// Package empresa administra los datos de contacto de la empresa que muestra
// el sitio: dirección, correo, teléfono, slogan, redes y logo.
package empresa

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

var (
	ErrNotFound     = errors.New("company data not found")
	ErrInvalidField = errors.New("field not editable")
	ErrInvalidValue = errors.New("invalid value")
	ErrUnavailable  = errors.New("dependency unavailable")
)

// maxTextLen coincide con VARCHAR(255) de la tabla empresa.
const maxTextLen = 255

// Data son los campos capturables. RedesSociales es JSON (objeto o arreglo).
type Data struct {
	Direccion     string
	Correo        string
	Telefono      string
	Slogan        string
	LogoURL       string
	RedesSociales json.RawMessage
}

// Company es la vista pública.
type Company struct {
	Data
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Service interface {
	Get(ctx context.Context) (*Company, error)
	// Upsert reemplaza todos los campos; created indica si la fila no existía.
	Upsert(ctx context.Context, d Data) (created bool, err error)
	UpdateField(ctx context.Context, field, value string) error
}

// Deps dependencias del service.
type Deps struct {
	Company repository.CompanyRepository
	Now     func() time.Time
}

type service struct {
	deps Deps
}

func NewService(d Deps) Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &service{deps: d}
}

func (s *service) Get(ctx context.Context) (*Company, error) {
	c, err := s.deps.Company.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.From(ctx).Error("failed to get company", logger.Component("empresa"), logger.Err(err))
		return nil, errors.Join(ErrUnavailable, err)
	}
	return &Company{
		Data: Data{
			Direccion:     c.Direccion,
			Correo:        c.Correo,
			Telefono:      c.Telefono,
			Slogan:        c.Slogan,
			LogoURL:       c.LogoURL,
			RedesSociales: c.RedesSociales,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

func (s *service) Upsert(ctx context.Context, d Data) (bool, error) {
	d.Direccion = strings.TrimSpace(d.Direccion)
	d.Correo = strings.TrimSpace(d.Correo)
	d.Telefono = strings.TrimSpace(d.Telefono)
	d.Slogan = strings.TrimSpace(d.Slogan)
	d.LogoURL = strings.TrimSpace(d.LogoURL)
	if isJSONNull(d.RedesSociales) {
		d.RedesSociales = nil
	}

	checks := map[repository.CompanyField]string{
		repository.CompanyDireccion: d.Direccion,
		repository.CompanyCorreo:    d.Correo,
		repository.CompanyTelefono:  d.Telefono,
		repository.CompanySlogan:    d.Slogan,
		repository.CompanyLogoURL:   d.LogoURL,
	}
	for f, v := range checks {
		if !validValue(f, v) {
			return false, ErrInvalidValue
		}
	}
	if d.RedesSociales != nil && !validValue(repository.CompanyRedesSociales, string(d.RedesSociales)) {
		return false, ErrInvalidValue
	}

	created, err := s.deps.Company.Upsert(ctx, repository.Company{
		Direccion:     d.Direccion,
		Correo:        d.Correo,
		Telefono:      d.Telefono,
		Slogan:        d.Slogan,
		LogoURL:       d.LogoURL,
		RedesSociales: d.RedesSociales,
	}, s.deps.Now())
	if err != nil {
		return false, errors.Join(ErrUnavailable, err)
	}
	logger.From(ctx).Info("company data saved", logger.Component("empresa"), logger.Bool("created", created))
	return created, nil
}

func (s *service) UpdateField(ctx context.Context, field, value string) error {
	f := repository.CompanyField(field)
	if !f.Valid() {
		return ErrInvalidField
	}
	value = strings.TrimSpace(value)
	if f == repository.CompanyRedesSociales && value == "null" {
		value = ""
	}
	if !validValue(f, value) {
		return ErrInvalidValue
	}

	err := s.deps.Company.UpdateField(ctx, f, value, s.deps.Now())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidInput):
		return ErrInvalidField
	case err != nil:
		return errors.Join(ErrUnavailable, err)
	}
	logger.From(ctx).Info("company field updated", logger.Component("empresa"), logger.String("field", field))
	return nil
}

// validValue: vacío siempre vale (borra el campo).
func validValue(f repository.CompanyField, v string) bool {
	if v == "" {
		return true
	}
	switch f {
	case repository.CompanyRedesSociales:
		if !json.Valid([]byte(v)) {
			return false
		}
		t := strings.TrimSpace(v)
		return strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")
	case repository.CompanyCorreo:
		a, err := mail.ParseAddress(v)
		return len(v) <= maxTextLen && err == nil && a.Address == v
	case repository.CompanyTelefono:
		return len(v) <= 20 && strings.Trim(v, "0123456789 +-()") == ""
	case repository.CompanyLogoURL:
		u, err := url.Parse(v)
		return len(v) <= 512 && err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
	}
	return len(v) <= maxTextLen
}

func isJSONNull(raw json.RawMessage) bool {
	t := strings.TrimSpace(string(raw))
	return t == "" || t == "null"
}
