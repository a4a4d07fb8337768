package auth

// MFAAccountRequest body de enable-mfa y disable-mfa.
type MFAAccountRequest struct {
	UserID int64 `json:"userId"`
}

// MFAVerifyRequest body de POST /api/mfa/verify-mfa.
type MFAVerifyRequest struct {
	UserID int64  `json:"userId"`
	Token  string `json:"token"`
}

type MFAEnableResponse struct {
	QRCode     string `json:"qrCode"`
	OTPAuthURL string `json:"otpauthUrl,omitempty"`
}

type MFAStatusResponse struct {
	MFAEnabled bool `json:"mfaEnabled"`
}
