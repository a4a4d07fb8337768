package middlewares

import (
	"context"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/jwt"
)

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxSessionKey   ctxKey = "session"
)

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// WithSession inyecta los claims de sesión (lo usa RequireSession y los tests).
func WithSession(ctx context.Context, c *jwt.SessionClaims) context.Context {
	return context.WithValue(ctx, ctxSessionKey, c)
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}

// GetSession devuelve los claims de la sesión o nil fuera de rutas protegidas.
func GetSession(ctx context.Context) *jwt.SessionClaims {
	if c, ok := ctx.Value(ctxSessionKey).(*jwt.SessionClaims); ok {
		return c
	}
	return nil
}
