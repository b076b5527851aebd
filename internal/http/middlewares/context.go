package middlewares

import "context"

type ctxKey string

const (
	ctxUserIDKey    ctxKey = "user_id"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithUserID inyecta el id del usuario autenticado.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetUserID retorna "" si el request no pasó por RequireSession.
func GetUserID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxUserIDKey).(string); ok {
		return s
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}
