package auth

import (
	"net/http"
	"strings"

	dto "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/dto/auth"
	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	svc "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/auth"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// LoginController maneja login y logout.
type LoginController struct {
	service svc.LoginService
	cookie  helpers.SessionCookie
	device  *helpers.DeviceIdentity
}

func NewLoginController(service svc.LoginService, cookie helpers.SessionCookie, device *helpers.DeviceIdentity) *LoginController {
	return &LoginController{service: service, cookie: cookie, device: device}
}

// Login maneja POST /api/usuarios/login
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	// Paso 1 antes de tocar la cookie de dispositivo.
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httperrors.WriteError(w, r, httperrors.ErrMissingFields)
		return
	}

	ip := helpers.ClientIP(r)
	deviceID := ""
	if c.device != nil {
		deviceID = c.device.Resolve(w, r)
	}

	res, err := c.service.Login(ctx, svc.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		MFACode:  req.MFACode,
		IP:       ip,
		DeviceID: deviceID,
	})
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		writeServiceError(w, r, err)
		return
	}

	helpers.NoStore(w)
	switch res.Outcome {
	case svc.OutcomeSuccess:
		c.cookie.Set(w, res.SessionToken, res.ExpiresAt)
		log.Info("session started",
			logger.AccountID(res.AccountID),
			logger.ClientIP(ip),
			logger.DeviceID(deviceID),
		)
		helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
			Message:   "Login exitoso",
			UserID:    res.AccountID,
			Nombre:    res.DisplayName,
			Rol:       res.Role,
			ExpiresAt: res.ExpiresAt.UnixMilli(),
		})

	case svc.OutcomeMFARequired:
		helpers.WriteJSON(w, http.StatusOK, dto.MFARequiredResponse{MFARequired: true, UserID: res.AccountID})

	case svc.OutcomeMFAInvalid:
		httperrors.WriteError(w, r, httperrors.ErrMfaInvalid)

	case svc.OutcomeLocked:
		appErr := httperrors.ErrLocked
		if res.RemainingSeconds != nil {
			appErr = appErr.WithRemainingSeconds(*res.RemainingSeconds)
		}
		httperrors.WriteError(w, r, appErr)

	default:
		httperrors.WriteError(w, r, httperrors.ErrInvalidCredentials)
	}
}

// Logout maneja POST /api/usuarios/logout. Idempotente: sin sesión también responde 200.
func (c *LoginController) Logout(w http.ResponseWriter, r *http.Request) {
	c.cookie.Clear(w)
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Sesión cerrada"})
}
