// Package captcha verifica tokens de Google reCAPTCHA contra siteverify.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrRejected el proveedor respondió success=false o el token vino vacío.
	ErrRejected = errors.New("captcha: token rechazado")
	// ErrUnavailable no se pudo consultar al proveedor.
	ErrUnavailable = errors.New("captcha: proveedor no disponible")
)

// Verifier valida un token de captcha emitido al navegador.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Recaptcha implementa Verifier contra https://www.google.com/recaptcha/api/siteverify.
type Recaptcha struct {
	secret    string
	verifyURL string
	client    *http.Client
}

func NewRecaptcha(secret, verifyURL string, timeout time.Duration) *Recaptcha {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recaptcha{
		secret:    secret,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (r *Recaptcha) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return ErrRejected
	}
	form := url.Values{"secret": {r.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if !out.Success {
		return fmt.Errorf("%w: %s", ErrRejected, strings.Join(out.ErrorCodes, ","))
	}
	return nil
}

// Noop acepta cualquier token. Se usa cuando CAPTCHA_ENABLED=false.
type Noop struct{}

func (Noop) Verify(context.Context, string, string) error { return nil }
