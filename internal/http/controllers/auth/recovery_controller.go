package auth

import (
	"net/http"

	dto "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/dto/auth"
	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	svc "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/auth"
)

// recoveryAccepted se responde exista o no el correo.
const recoveryAccepted = "Si el correo está registrado, recibirás un código de recuperación"

// RecoveryController maneja el flujo de recuperación de contraseña.
type RecoveryController struct {
	service svc.RecoveryService
}

func NewRecoveryController(service svc.RecoveryService) *RecoveryController {
	return &RecoveryController{service: service}
}

// Request maneja POST /api/usuarios/recuperacion.
func (c *RecoveryController) Request(w http.ResponseWriter, r *http.Request) {
	var req dto.RecoveryRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if err := c.service.RequestRecovery(r.Context(), req.Email, req.CaptchaToken, helpers.ClientIP(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: recoveryAccepted})
}

// Validate maneja POST /api/usuarios/validarToken/contrasena.
func (c *RecoveryController) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateTokenRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	grant, err := c.service.Validate(r.Context(), req.UserID, req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, dto.ValidateTokenResponse{
		Message:    "Token válido",
		ResetToken: grant.Token,
		ExpiresAt:  grant.ExpiresAt.UnixMilli(),
	})
}
