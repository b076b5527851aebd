// Package audit registra eventos de autenticación en un logger dedicado
// ("audit"), separado del log de requests.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/taskhub/internal/observability/logger"
)

// Eventos emitidos por la API.
const (
	EventRegister     = "register"
	EventLoginSuccess = "login_success"
	EventLoginFailure = "login_failure"
	EventLogout       = "logout"
	EventOAuthLogin   = "oauth_login"
)

// Log escribe el evento con el request_id del logger del contexto.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info("audit event", append([]zap.Field{zap.String("event", event)}, fields...)...)
}
