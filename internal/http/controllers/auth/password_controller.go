package auth

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/dto/auth"
	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	svc "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/auth"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/jwt"
)

// PasswordController verifica y cambia contraseñas.
type PasswordController struct {
	service  svc.PasswordService
	sessions *jwt.SessionManager
}

func NewPasswordController(service svc.PasswordService, sessions *jwt.SessionManager) *PasswordController {
	return &PasswordController{service: service, sessions: sessions}
}

// VerifyCurrent maneja POST /api/usuarios/verify-password (sesión).
func (c *PasswordController) VerifyCurrent(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyPasswordRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if req.UserID <= 0 || req.CurrentPassword == "" {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields)
		return
	}
	if !authorize(w, r, req.UserID) {
		return
	}
	if err := c.service.VerifyCurrent(r.Context(), req.UserID, req.CurrentPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Contraseña verificada"})
}

// Change maneja POST /api/usuarios/change-password. Acepta la sesión del
// usuario (o de un Administrador) o el resetToken emitido por validarToken.
func (c *PasswordController) Change(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if req.UserID <= 0 || req.NewPassword == "" {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields)
		return
	}

	if grant := strings.TrimSpace(req.ResetToken); grant != "" {
		id, err := c.sessions.VerifyReset(grant)
		switch {
		case errors.Is(err, jwt.ErrSessionExpired):
			httperrors.WriteError(w, r, httperrors.ErrTokenExpired)
			return
		case err != nil:
			httperrors.WriteError(w, r, httperrors.ErrTokenInvalid)
			return
		case id != req.UserID:
			httperrors.WriteError(w, r, httperrors.ErrForbidden)
			return
		}
	} else if !authorize(w, r, req.UserID) {
		return
	}

	if err := c.service.ChangePassword(r.Context(), req.UserID, req.NewPassword, helpers.ClientIP(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Contraseña actualizada"})
}
