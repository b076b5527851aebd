package middlewares

import (
	"net/http"
	"strconv"

	"github.com/dropDatabas3/taskhub/internal/http/errors"
	"github.com/dropDatabas3/taskhub/internal/http/helpers"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/rate"
)

// RateKeyFunc genera la clave de rate limiting de un request.
type RateKeyFunc func(r *http.Request) string

// IPRateKey usa solo la IP del cliente.
func IPRateKey(r *http.Request) string { return helpers.ClientIP(r) }

// RejectObserver recibe los rechazos por scope.
type RejectObserver interface {
	RateRejected(scope string)
}

type RateLimitConfig struct {
	Limiter rate.Limiter
	// Scope separa contadores ("global", "auth") y etiqueta la métrica.
	Scope     string
	KeyFunc   RateKeyFunc
	Whitelist []string
	Observer  RejectObserver
}

// WithRateLimit responde 429 cuando la clave supera el límite. Si el limiter
// falla el request pasa.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPRateKey
	}
	if cfg.Scope == "" {
		cfg.Scope = "global"
	}
	whitelist := make(map[string]struct{}, len(cfg.Whitelist))
	for _, p := range cfg.Whitelist {
		whitelist[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := whitelist[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			res, err := cfg.Limiter.Allow(r.Context(), cfg.Scope+"|"+cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds()+0.5)))
				}
				if cfg.Observer != nil {
					cfg.Observer.RateRejected(cfg.Scope)
				}
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}

			if res.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
