// Package auth contiene los controllers de usuarios, sesión, contraseñas y MFA.
package auth

import (
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	svc "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/auth"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/profile"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/jwt"
)

// CSRFSettings atributos de la cookie _csrf.
type CSRFSettings struct {
	CookieName string
	TTL        time.Duration
	Policy     helpers.CookiePolicy
}

// Deps dependencias compartidas por los controllers.
type Deps struct {
	Services svc.Services
	Profile  profile.Service
	Sessions *jwt.SessionManager
	Cookie   helpers.SessionCookie
	Device   *helpers.DeviceIdentity
	CSRF     CSRFSettings
}

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Login    *LoginController
	Register *RegisterController
	Password *PasswordController
	Recovery *RecoveryController
	MFA      *MFAController
	Profile  *ProfileController
	CSRF     *CSRFController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(d Deps) *Controllers {
	return &Controllers{
		Login:    NewLoginController(d.Services.Login, d.Cookie, d.Device),
		Register: NewRegisterController(d.Services.Register),
		Password: NewPasswordController(d.Services.Password, d.Sessions),
		Recovery: NewRecoveryController(d.Services.Recovery),
		MFA:      NewMFAController(d.Services.MFA),
		Profile:  NewProfileController(d.Profile),
		CSRF:     NewCSRFController(d.CSRF),
	}
}
