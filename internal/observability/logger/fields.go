package logger

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// Duration registra la duración en milisegundos.
func Duration(v time.Duration) zap.Field {
	return zap.Float64("duration_ms", float64(v.Microseconds())/1000)
}

// ─── Dominio ───

func UserID(v string) zap.Field { return zap.String("user_id", v) }
func WorkspaceID(v string) zap.Field { return zap.String("workspace_id", v) }
func RoleID(v string) zap.Field { return zap.String("role_id", v) }
func AccountID(v string) zap.Field { return zap.String("account_id", v) }
func Provider(v string) zap.Field { return zap.String("provider", v) }
func ProviderID(v string) zap.Field { return zap.String("provider_id", v) }

// Email registra el email enmascarado (j***@example.com).
func Email(v string) zap.Field {
	return zap.String("email", MaskEmail(v))
}

// MaskEmail conserva la primera letra del local-part y el dominio.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer identifica la capa: handler, service, store.
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Err(err error) zap.Field { return zap.Error(err) }

// ─── Genéricos ───

func Count(v int) zap.Field { return zap.Int("count", v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
