// Package profile expone los datos de perfil de una cuenta: lectura, listado
// para administradores y edición de campos permitidos.
package profile

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

var (
	ErrNotFound     = errors.New("account not found")
	ErrInvalidField = errors.New("field not editable")
	ErrInvalidValue = errors.New("invalid value")
	ErrUnavailable  = errors.New("dependency unavailable")
)

// maxFieldLen coincide con VARCHAR(100) de tblusuarios.
const maxFieldLen = 100

// Profile es la vista pública de una cuenta. Nunca incluye digest ni secreto MFA.
type Profile struct {
	ID               int64
	Nombre           string
	ApellidoP        string
	ApellidoM        string
	Email            string
	Telefono         string
	Role             string
	AvatarURL        string
	MFAEnabled       bool
	ProfileUpdatedAt *time.Time
}

func fromAccount(a *repository.Account) Profile {
	return Profile{
		ID:               a.ID,
		Nombre:           a.Nombre,
		ApellidoP:        a.ApellidoP,
		ApellidoM:        a.ApellidoM,
		Email:            a.Email,
		Telefono:         a.Telefono,
		Role:             a.Role,
		AvatarURL:        a.AvatarURL,
		MFAEnabled:       a.MFAEnabled(),
		ProfileUpdatedAt: a.ProfileUpdatedAt,
	}
}

type Service interface {
	Get(ctx context.Context, accountID int64) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	UpdateField(ctx context.Context, accountID int64, field, value string) error
	// UpdateAvatar guarda la referencia (URL) ya subida por el cliente.
	UpdateAvatar(ctx context.Context, accountID int64, avatarURL string) error
}

// Deps dependencias del service.
type Deps struct {
	Accounts repository.AccountRepository
	Now      func() time.Time
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

func (s *service) Get(ctx context.Context, accountID int64) (*Profile, error) {
	acc, err := s.deps.Accounts.GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.From(ctx).Error("failed to get account", logger.Component("profile"), logger.AccountID(accountID), logger.Err(err))
		return nil, errors.Join(ErrUnavailable, err)
	}
	p := fromAccount(acc)
	return &p, nil
}

func (s *service) List(ctx context.Context) ([]Profile, error) {
	accs, err := s.deps.Accounts.List(ctx)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	out := make([]Profile, 0, len(accs))
	for i := range accs {
		out = append(out, fromAccount(&accs[i]))
	}
	return out, nil
}

func (s *service) UpdateField(ctx context.Context, accountID int64, field, value string) error {
	f := repository.ProfileField(field)
	if !f.Valid() {
		return ErrInvalidField
	}
	value = strings.TrimSpace(value)
	if len(value) > maxFieldLen {
		return ErrInvalidValue
	}
	// nombre y apellido paterno son obligatorios
	if value == "" && (f == repository.FieldNombre || f == repository.FieldApellidoP) {
		return ErrInvalidValue
	}
	if f == repository.FieldTelefono && !validPhone(value) {
		return ErrInvalidValue
	}

	err := s.deps.Accounts.UpdateProfileField(ctx, accountID, f, value)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidInput):
		return ErrInvalidField
	case err != nil:
		return errors.Join(ErrUnavailable, err)
	}
	logger.From(ctx).Info("profile field updated", logger.Component("profile"), logger.AccountID(accountID), logger.String("field", field))
	return nil
}

func (s *service) UpdateAvatar(ctx context.Context, accountID int64, avatarURL string) error {
	avatarURL = strings.TrimSpace(avatarURL)
	u, err := url.Parse(avatarURL)
	if avatarURL == "" || err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return ErrInvalidValue
	}
	err = s.deps.Accounts.UpdateAvatar(ctx, accountID, avatarURL, s.deps.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// validPhone acepta vacío o 10 dígitos (formato nacional MX).
func validPhone(v string) bool {
	if v == "" {
		return true
	}
	if len(v) != 10 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
