package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/util"
)

// =================================================================================
// CAMPOS HTTP
// =================================================================================

func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

func Method(v string) zap.Field {
	return zap.String("method", v)
}

func Path(v string) zap.Field {
	return zap.String("path", v)
}

func Status(v int) zap.Field {
	return zap.Int("status", v)
}

func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

func UserAgent(v string) zap.Field {
	return zap.String("user_agent", v)
}

// =================================================================================
// CAMPOS DE NEGOCIO
// =================================================================================

// AccountID identifica la cuenta (idUsuarios).
func AccountID(v int64) zap.Field {
	return zap.Int64("account_id", v)
}

// DeviceID es el identificador de dispositivo ya descifrado de la cookie clientId.
func DeviceID(v string) zap.Field {
	return zap.String("device_id", v)
}

// Email registra el correo enmascarado (a…@g….com).
func Email(v string) zap.Field {
	return zap.String("email", util.MaskEmail(v))
}

func Role(v string) zap.Field {
	return zap.String("role", v)
}

// Outcome es el resultado de negocio de una operación (success, locked, mfa_required...).
func Outcome(v string) zap.Field {
	return zap.String("outcome", v)
}

func Attempts(v int) zap.Field {
	return zap.Int("attempts", v)
}

// LockedUntil se omite con valor cero.
func LockedUntil(t time.Time) zap.Field {
	if t.IsZero() {
		return zap.Skip()
	}
	return zap.Time("locked_until", t)
}

// =================================================================================
// CAMPOS DE SISTEMA
// =================================================================================

func Component(v string) zap.Field {
	return zap.String("component", v)
}

func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer: controller, service, repository.
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// GENÉRICOS
// =================================================================================

func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}

func String(key, v string) zap.Field {
	return zap.String(key, v)
}

func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

func Int64(key string, v int64) zap.Field {
	return zap.Int64(key, v)
}

func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
