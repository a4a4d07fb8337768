package auth

import (
	"net/http"

	dto "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/dto/auth"
	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	svc "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/auth"
)

// MFAController maneja /api/mfa/*.
type MFAController struct {
	service svc.MFAService
}

func NewMFAController(service svc.MFAService) *MFAController {
	return &MFAController{service: service}
}

// Enable maneja POST /api/mfa/enable-mfa (sesión).
func (c *MFAController) Enable(w http.ResponseWriter, r *http.Request) {
	var req dto.MFAAccountRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if req.UserID <= 0 {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields)
		return
	}
	if !authorize(w, r, req.UserID) {
		return
	}
	enr, err := c.service.Enroll(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, dto.MFAEnableResponse{QRCode: enr.QRCode, OTPAuthURL: enr.OTPAuthURL})
}

// Verify maneja POST /api/mfa/verify-mfa. Sin sesión: la ruta va con rate limit.
func (c *MFAController) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.MFAVerifyRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if req.UserID <= 0 || req.Token == "" {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields)
		return
	}
	if err := c.service.VerifyForAccount(r.Context(), req.UserID, req.Token); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Código MFA válido"})
}

// Disable maneja POST /api/mfa/disable-mfa (sesión).
func (c *MFAController) Disable(w http.ResponseWriter, r *http.Request) {
	var req dto.MFAAccountRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if req.UserID <= 0 {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields)
		return
	}
	if !authorize(w, r, req.UserID) {
		return
	}
	if err := c.service.Disable(r.Context(), req.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "MFA deshabilitado"})
}

// Status maneja GET /api/mfa/mfa-status/{userId} (sesión).
func (c *MFAController) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "userId")
	if !ok {
		httperrors.WriteError(w, r, httperrors.ErrInvalidInput.WithDetail("userId inválido"))
		return
	}
	if !authorize(w, r, id) {
		return
	}
	enabled, err := c.service.Status(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MFAStatusResponse{MFAEnabled: enabled})
}
