// Package auth contiene los cuerpos JSON de los endpoints de usuarios y MFA.
package auth

// LoginRequest body de POST /api/usuarios/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// MFACode solo se envía en el segundo paso cuando la cuenta tiene MFA.
	MFACode string `json:"mfaCode,omitempty"`
}

// LoginResponse sesión iniciada. El token viaja solo en la cookie.
type LoginResponse struct {
	Message   string `json:"message"`
	UserID    int64  `json:"userId"`
	Nombre    string `json:"nombre"`
	Rol       string `json:"rol"`
	ExpiresAt int64  `json:"expiresAt"` // epoch ms
}

// MFARequiredResponse la contraseña fue correcta y falta el código TOTP.
type MFARequiredResponse struct {
	MFARequired bool  `json:"mfaRequired"`
	UserID      int64 `json:"userId"`
}

// CSRFResponse body de GET /api/get-csrf-token.
type CSRFResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// MessageResponse respuesta genérica de éxito.
type MessageResponse struct {
	Message string `json:"message"`
}
