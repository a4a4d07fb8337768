package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/middlewares"
	svc "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/auth"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/profile"
)

// writeServiceError traduce los errores de los services a la taxonomía HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *svc.PolicyError
	switch {
	case errors.As(err, &pe):
		httperrors.WriteError(w, r, httperrors.ErrWeakPassword.WithDetail(strings.Join(pe.Reasons, ",")))
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, r, httperrors.ErrMissingFields)
	case errors.Is(err, svc.ErrAccountNotFound), errors.Is(err, profile.ErrNotFound):
		httperrors.WriteError(w, r, httperrors.ErrAccountNotFound)
	case errors.Is(err, svc.ErrEmailTaken):
		httperrors.WriteError(w, r, httperrors.ErrConflict)
	case errors.Is(err, svc.ErrPasswordReused):
		httperrors.WriteError(w, r, httperrors.ErrPasswordReused)
	case errors.Is(err, svc.ErrPasswordMismatch):
		httperrors.WriteError(w, r, httperrors.ErrPasswordMismatch)
	case errors.Is(err, svc.ErrMFAInvalid):
		httperrors.WriteError(w, r, httperrors.ErrMfaInvalid)
	case errors.Is(err, svc.ErrTokenInvalid):
		httperrors.WriteError(w, r, httperrors.ErrTokenInvalid)
	case errors.Is(err, svc.ErrTokenExpired):
		httperrors.WriteError(w, r, httperrors.ErrTokenExpired)
	case errors.Is(err, svc.ErrCaptchaRejected):
		httperrors.WriteError(w, r, httperrors.ErrCaptchaInvalid)
	case errors.Is(err, profile.ErrInvalidField):
		httperrors.WriteError(w, r, httperrors.ErrInvalidInput.WithDetail("campo no editable"))
	case errors.Is(err, profile.ErrInvalidValue):
		httperrors.WriteError(w, r, httperrors.ErrInvalidInput)
	case errors.Is(err, svc.ErrDependencyUnavailable), errors.Is(err, profile.ErrUnavailable):
		httperrors.WriteError(w, r, httperrors.ErrDependencyUnavailable.WithCause(err))
	default:
		httperrors.WriteError(w, r, httperrors.ErrInternal.WithCause(err))
	}
}

// authorize exige que la sesión del request pueda operar sobre accountID.
func authorize(w http.ResponseWriter, r *http.Request, accountID int64) bool {
	c := middlewares.GetSession(r.Context())
	if c == nil {
		httperrors.WriteError(w, r, httperrors.ErrSessionMissing)
		return false
	}
	if !middlewares.CanActOn(c, accountID) {
		httperrors.WriteError(w, r, httperrors.ErrForbidden)
		return false
	}
	return true
}

// pathID lee un id numérico de la ruta.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
