package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/dto/auth"
	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/middlewares"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/profile"
)

// ProfileController maneja /api/usuarios/perfil y el listado de cuentas.
type ProfileController struct {
	service profile.Service
}

func NewProfileController(service profile.Service) *ProfileController {
	return &ProfileController{service: service}
}

func toProfileResponse(p profile.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		UserID:           p.ID,
		Nombre:           p.Nombre,
		ApellidoP:        p.ApellidoP,
		ApellidoM:        p.ApellidoM,
		Correo:           p.Email,
		Telefono:         p.Telefono,
		Rol:              p.Role,
		FotoPerfil:       p.AvatarURL,
		MFAEnabled:       p.MFAEnabled,
		FechaActualizada: p.ProfileUpdatedAt,
	}
}

// Me maneja GET /api/usuarios/perfil: el perfil de la sesión actual.
func (c *ProfileController) Me(w http.ResponseWriter, r *http.Request) {
	claims := middlewares.GetSession(r.Context())
	if claims == nil {
		httperrors.WriteError(w, r, httperrors.ErrSessionMissing)
		return
	}
	p, err := c.service.Get(r.Context(), claims.AccountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, toProfileResponse(*p))
}

// List maneja GET /api/usuarios (Administrador).
func (c *ProfileController) List(w http.ResponseWriter, r *http.Request) {
	all, err := c.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]dto.ProfileResponse, 0, len(all))
	for _, p := range all {
		out = append(out, toProfileResponse(p))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// UpdateField maneja PATCH /api/usuarios/perfil/{id}/{field}.
func (c *ProfileController) UpdateField(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httperrors.WriteError(w, r, httperrors.ErrInvalidInput.WithDetail("id inválido"))
		return
	}
	if !authorize(w, r, id) {
		return
	}
	var req dto.UpdateFieldRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if err := c.service.UpdateField(r.Context(), id, chi.URLParam(r, "field"), req.Value); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Perfil actualizado"})
}

// UpdateAvatar maneja PATCH /api/usuarios/perfil/{id}/foto.
func (c *ProfileController) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httperrors.WriteError(w, r, httperrors.ErrInvalidInput.WithDetail("id inválido"))
		return
	}
	if !authorize(w, r, id) {
		return
	}
	var req dto.UpdateAvatarRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if err := c.service.UpdateAvatar(r.Context(), id, req.FotoPerfil); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Foto de perfil actualizada"})
}
