package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/audit"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// RegisterInput datos del formulario de registro.
type RegisterInput struct {
	Nombre    string
	ApellidoP string
	ApellidoM string
	Email     string
	Telefono  string
	Password  string
	// Role vacío = Cliente. El endpoint público nunca lo llena.
	Role string
}

type RegisterService interface {
	Register(ctx context.Context, in RegisterInput) (int64, error)
}

type registerService struct {
	deps Deps
}

func NewRegisterService(d Deps) RegisterService {
	return &registerService{deps: d}
}

// Register crea la cuenta y deja el digest inicial en el historial, así la
// primera contraseña también cuenta para el chequeo de reutilización.
func (s *registerService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.register"), logger.Op("Register"))

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.ApellidoP = strings.TrimSpace(in.ApellidoP)
	if in.Email == "" || in.Password == "" || in.Nombre == "" || in.ApellidoP == "" {
		return 0, ErrMissingFields
	}
	if !strings.Contains(in.Email, "@") {
		return 0, ErrMissingFields
	}
	if reasons := s.deps.Policy.Validate(in.Password); len(reasons) > 0 {
		return 0, &PolicyError{Reasons: reasons}
	}

	digest, err := s.deps.Hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}

	role := in.Role
	if role != repository.RoleAdmin {
		role = repository.RoleCliente
	}
	id, err := s.deps.Store.Accounts().Create(ctx, repository.CreateAccountInput{
		Nombre:       in.Nombre,
		ApellidoP:    in.ApellidoP,
		ApellidoM:    strings.TrimSpace(in.ApellidoM),
		Email:        in.Email,
		Telefono:     strings.TrimSpace(in.Telefono),
		PasswordHash: digest,
		Role:         role,
	})
	if errors.Is(err, repository.ErrConflict) {
		return 0, ErrEmailTaken
	}
	if err != nil {
		return 0, unavailable("accounts.create", err)
	}

	if err := s.deps.Store.PasswordHistory().Append(ctx, id, digest, s.deps.Now()); err != nil {
		return 0, unavailable("history.append", err)
	}
	log.Info("account registered", logger.AccountID(id), logger.Role(role))
	audit.Log(ctx, audit.AccountCreated, id, logger.Role(role))
	return id, nil
}
