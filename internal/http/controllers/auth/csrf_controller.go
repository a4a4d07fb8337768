package auth

import (
	"net/http"
	"time"

	dto "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/dto/auth"
	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
	tokens "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/token"
)

// CSRFController maneja GET /api/get-csrf-token.
type CSRFController struct {
	cfg CSRFSettings
	now func() time.Time
}

func NewCSRFController(cfg CSRFSettings) *CSRFController {
	if cfg.CookieName == "" {
		cfg.CookieName = "_csrf"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	return &CSRFController{cfg: cfg, now: time.Now}
}

// GetToken deja el token en la cookie y en el body (double-submit). La cookie
// no es HttpOnly: el frontend la lee para copiarla al header.
func (c *CSRFController) GetToken(w http.ResponseWriter, r *http.Request) {
	tok, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		logger.From(r.Context()).Error("failed to generate CSRF token", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal.WithCause(err))
		return
	}

	now := c.now()
	ck := helpers.BuildCookie(c.cfg.Policy, c.cfg.CookieName, tok, now.Add(c.cfg.TTL), now)
	ck.HttpOnly = false
	http.SetCookie(w, ck)

	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, dto.CSRFResponse{CSRFToken: tok})
}
