// Package errors define el AppError que viaja de services/controllers al
// cliente y el catálogo de errores predefinidos de la API.
package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar de los errores de la API.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa original, solo para logs

	// RemainingSeconds solo aplica a ACCOUNT_LOCKED.
	RemainingSeconds *int64 `json:"remainingSeconds,omitempty"`
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap crea un AppError envolviendo un error existente
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// FromError convierte cualquier error en AppError. Lo que no sea AppError se
// trata como error interno y conserva la causa para el log.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail devuelve una COPIA con el detalle agregado.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa agregada.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// WithRemainingSeconds devuelve una COPIA con los segundos de bloqueo restantes.
func (e *AppError) WithRemainingSeconds(s int64) *AppError {
	newErr := *e
	newErr.RemainingSeconds = &s
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// 400
var (
	ErrInvalidInput     = New(http.StatusBadRequest, "INVALID_INPUT", "Datos de entrada inválidos")
	ErrInvalidJSON      = New(http.StatusBadRequest, "INVALID_JSON", "El cuerpo de la petición no es JSON válido")
	ErrMissingFields    = New(http.StatusBadRequest, "MISSING_FIELDS", "Faltan campos obligatorios")
	ErrMfaInvalid       = New(http.StatusBadRequest, "MFA_INVALID", "Código MFA inválido")
	ErrPasswordReused   = New(http.StatusBadRequest, "PASSWORD_REUSED", "La nueva contraseña no puede ser igual a ninguna de las últimas contraseñas")
	ErrTokenInvalid     = New(http.StatusBadRequest, "TOKEN_INVALID", "Token inválido")
	ErrTokenExpired     = New(http.StatusBadRequest, "TOKEN_EXPIRED", "El token ha expirado")
	ErrSessionMalformed = New(http.StatusBadRequest, "SESSION_MALFORMED", "Token de sesión inválido")
	ErrCaptchaInvalid   = New(http.StatusBadRequest, "CAPTCHA_INVALID", "Verificación captcha fallida")
)

// 401
var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Credenciales incorrectas")
	ErrSessionExpired     = New(http.StatusUnauthorized, "SESSION_EXPIRED", "La sesión ha expirado")
	ErrPasswordMismatch   = New(http.StatusUnauthorized, "PASSWORD_MISMATCH", "La contraseña actual no coincide")
)

// 403
var (
	ErrLocked         = New(http.StatusForbidden, "ACCOUNT_LOCKED", "Cuenta bloqueada por demasiados intentos fallidos. Intenta más tarde")
	ErrSessionMissing = New(http.StatusForbidden, "SESSION_MISSING", "No se encontró una sesión activa")
	ErrForbidden      = New(http.StatusForbidden, "FORBIDDEN", "No tienes permiso para esta operación")
	ErrCSRF           = New(http.StatusForbidden, "INVALID_CSRF_TOKEN", "Token CSRF ausente o inválido")
)

// 404, 405, 409, 413, 422, 429
var (
	ErrNotFound         = New(http.StatusNotFound, "NOT_FOUND", "Recurso no encontrado")
	ErrAccountNotFound  = New(http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Usuario no encontrado")
	ErrCompanyNotFound  = New(http.StatusNotFound, "COMPANY_NOT_FOUND", "Datos de la empresa no encontrados")
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Método no permitido")
	ErrConflict         = New(http.StatusConflict, "EMAIL_TAKEN", "El correo ya está registrado")
	ErrPayloadTooLarge  = New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "El cuerpo de la petición es demasiado grande")
	ErrWeakPassword     = New(http.StatusUnprocessableEntity, "WEAK_PASSWORD", "La contraseña no cumple la política")
	ErrRateLimited      = New(http.StatusTooManyRequests, "RATE_LIMITED", "Demasiadas solicitudes, intenta más tarde")
)

// 5xx
var (
	ErrDependencyUnavailable = New(http.StatusInternalServerError, "DEPENDENCY_UNAVAILABLE", "Servicio externo no disponible")
	ErrInternal              = New(http.StatusInternalServerError, "INTERNAL_ERROR", "Error interno del servidor")
)
