package middlewares

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/taskhub/internal/http/errors"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/session"
)

// SessionResolver resuelve el token de la cookie a una sesión viva.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// RequireSession exige una cookie de sesión válida e inyecta el user id en
// el contexto (y en el logger del request).
func RequireSession(sessions SessionResolver, cookie session.CookieConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookie.Token(r)
			if token == "" {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			sess, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				if err != session.ErrNoSession {
					logger.From(r.Context()).Error("session lookup failed", logger.Err(err))
				}
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}

			ctx := WithUserID(r.Context(), sess.UserID)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(sess.UserID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
