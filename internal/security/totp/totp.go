// Package totp enrola y verifica códigos TOTP (RFC 6238: SHA1, 6 dígitos,
// periodo 30s) con github.com/pquerna/otp y genera el QR de enrolamiento con
// github.com/skip2/go-qrcode.
package totp

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
)

const period = 30

// Config del manager. Skew es la cantidad de pasos de 30s tolerados a cada lado.
type Config struct {
	Issuer string
	Skew   uint
	QRSize int
	Now    func() time.Time
}

// Enrollment es lo que se entrega al usuario al habilitar MFA.
type Enrollment struct {
	Secret string
	URL    string
	// QRCode es un data URL PNG listo para un <img src>.
	QRCode string
}

type Manager struct {
	cfg Config
}

func New(cfg Config) *Manager {
	if cfg.QRSize <= 0 {
		cfg.QRSize = 256
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{cfg: cfg}
}

// Generate crea un secreto nuevo y su QR. accountName es la etiqueta que ve el
// usuario en su app autenticadora (el correo).
func (m *Manager) Generate(accountName string) (Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.cfg.Issuer,
		AccountName: accountName,
		Period:      period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("totp: generate: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, m.cfg.QRSize)
	if err != nil {
		return Enrollment{}, fmt.Errorf("totp: qr: %w", err)
	}
	return Enrollment{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Verify valida el código contra el secreto en el instante actual.
// Un código incorrecto o un secreto corrupto devuelven false, nunca error.
func (m *Manager) Verify(code, secret string) bool {
	return m.VerifyAt(code, secret, m.cfg.Now())
}

// VerifyAt igual que Verify pero en un instante dado.
func (m *Manager) VerifyAt(code, secret string, at time.Time) bool {
	code = strings.ReplaceAll(strings.TrimSpace(code), " ", "")
	if code == "" || strings.TrimSpace(secret) == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    period,
		Skew:      m.cfg.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// CodeAt genera el código vigente en un instante. Lo usan tests y la CLI.
func CodeAt(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    period,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
