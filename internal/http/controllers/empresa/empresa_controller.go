// Package empresa contiene los controllers de los datos de la empresa y de
// la validación de correos del formulario de registro.
package empresa

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/dto/empresa"
	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/emailcheck"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/empresa"
)

// companyID la tabla empresa tiene una sola fila.
const companyID = 1

type Controller struct {
	service empresa.Service
}

func NewController(service empresa.Service) *Controller {
	return &Controller{service: service}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, empresa.ErrNotFound):
		httperrors.WriteError(w, r, httperrors.ErrCompanyNotFound)
	case errors.Is(err, empresa.ErrInvalidField):
		httperrors.WriteError(w, r, httperrors.ErrInvalidInput.WithDetail("campo no editable"))
	case errors.Is(err, empresa.ErrInvalidValue):
		httperrors.WriteError(w, r, httperrors.ErrInvalidInput)
	case errors.Is(err, empresa.ErrUnavailable):
		httperrors.WriteError(w, r, httperrors.ErrDependencyUnavailable.WithCause(err))
	default:
		httperrors.WriteError(w, r, httperrors.ErrInternal.WithCause(err))
	}
}

// Get maneja GET /api/empresa.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	co, err := c.service.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.CompanyResponse{
		ID:            companyID,
		Direccion:     co.Direccion,
		Correo:        co.Correo,
		Telefono:      co.Telefono,
		Slogan:        co.Slogan,
		RedesSociales: co.RedesSociales,
		LogoURL:       co.LogoURL,
		CreadoEn:      co.CreatedAt,
		ActualizadoEn: co.UpdatedAt,
	})
}

// Upsert maneja POST /api/empresa/actualizar (Administrador).
func (c *Controller) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	created, err := c.service.Upsert(r.Context(), empresa.Data{
		Direccion:     req.Direccion,
		Correo:        req.Correo,
		Telefono:      req.Telefono,
		Slogan:        req.Slogan,
		LogoURL:       req.LogoURL,
		RedesSociales: req.RedesSociales,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if created {
		helpers.WriteJSON(w, http.StatusCreated, dto.MessageResponse{Message: "Datos de la empresa insertados correctamente."})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Datos de la empresa actualizados correctamente."})
}

// UpdateField maneja PATCH /api/empresa/{campo} (Administrador).
func (c *Controller) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateFieldRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if len(req.Valor) == 0 {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields)
		return
	}
	campo := chi.URLParam(r, "campo")
	if err := c.service.UpdateField(r.Context(), campo, req.Text()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Campo " + campo + " actualizado correctamente."})
}

// EmailController maneja POST /api/email/validate-email.
type EmailController struct {
	checker *emailcheck.Checker
}

func NewEmailController(checker *emailcheck.Checker) *EmailController {
	return &EmailController{checker: checker}
}

func (c *EmailController) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateEmailRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	res, err := c.checker.Check(r.Context(), req.Email)
	if errors.Is(err, emailcheck.ErrMissingEmail) {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields)
		return
	}
	if err != nil {
		httperrors.WriteError(w, r, httperrors.ErrInternal.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ValidateEmailResponse{IsValid: res.Valid, Message: res.Message})
}
