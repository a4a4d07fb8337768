package auth

// VerifyPasswordRequest body de POST /api/usuarios/verify-password.
type VerifyPasswordRequest struct {
	UserID          int64  `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
}

// ChangePasswordRequest body de POST /api/usuarios/change-password.
// ResetToken es el permiso que devuelve validarToken cuando no hay sesión.
type ChangePasswordRequest struct {
	UserID      int64  `json:"userId"`
	NewPassword string `json:"newPassword"`
	ResetToken  string `json:"resetToken,omitempty"`
}

// RecoveryRequest body de POST /api/usuarios/recuperacion.
type RecoveryRequest struct {
	Email        string `json:"email"`
	CaptchaToken string `json:"captchaToken"`
}

// ValidateTokenRequest body de POST /api/usuarios/validarToken/contrasena.
type ValidateTokenRequest struct {
	UserID int64  `json:"userId"`
	Token  string `json:"token"`
}

// ValidateTokenResponse token consumido; ResetToken habilita un cambio de contraseña.
type ValidateTokenResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
	ExpiresAt  int64  `json:"expiresAt"` // epoch ms
}
