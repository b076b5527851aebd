// Package router arma el árbol de rutas chi de la API.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/taskhub/internal/http/controllers"
	"github.com/dropDatabas3/taskhub/internal/http/errors"
	mw "github.com/dropDatabas3/taskhub/internal/http/middlewares"
	"github.com/dropDatabas3/taskhub/internal/rate"
	"github.com/dropDatabas3/taskhub/internal/session"
)

type Controllers struct {
	Auth      *controllers.AuthController
	Google    *controllers.GoogleController
	User      *controllers.UserController
	Workspace *controllers.WorkspaceController
	Health    *controllers.HealthController
}

// MetricsProvider expone el handler de /metrics y el middleware de
// instrumentación.
type MetricsProvider interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
	RateRejected(scope string)
}

type Deps struct {
	Controllers Controllers
	BasePath    string
	CORSOrigins []string

	Sessions mw.SessionResolver
	Cookie   session.CookieConfig

	// GlobalLimiter y AuthLimiter son opcionales.
	GlobalLimiter rate.Limiter
	AuthLimiter   rate.Limiter

	Metrics MetricsProvider
}

// New construye el handler raíz. Todas las rutas de la API cuelgan de
// BasePath; /metrics queda fuera.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	var observer mw.RejectObserver
	if d.Metrics != nil {
		observer = d.Metrics
		r.Use(d.Metrics.Middleware)
	}
	r.Use(mw.Stack(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSOrigins),
	)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrMethodNotAllowed)
	})

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	base := "/" + strings.Trim(d.BasePath, "/")
	if base == "/" {
		base = ""
	}
	api := chi.NewRouter()
	api.Use(mw.WithRateLimit(mw.RateLimitConfig{
		Limiter:   d.GlobalLimiter,
		Scope:     "global",
		Whitelist: []string{base + "/health"},
		Observer:  observer,
	}))

	c := d.Controllers
	api.Get("/health", c.Health.Health)

	api.Route("/auth", func(ar chi.Router) {
		ar.Use(mw.WithNoStore())
		ar.Use(mw.WithRateLimit(mw.RateLimitConfig{
			Limiter:  d.AuthLimiter,
			Scope:    "auth",
			Observer: observer,
		}))
		ar.Post("/register", c.Auth.Register)
		ar.Post("/login", c.Auth.Login)
		ar.Post("/logout", c.Auth.Logout)
		if c.Google != nil {
			ar.Get("/google", c.Google.Begin)
			ar.Get("/google/callback", c.Google.Callback)
		}
	})

	api.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSession(d.Sessions, d.Cookie))
		pr.Get("/user/current", c.User.Current)
		pr.Get("/workspace/all", c.Workspace.List)
		pr.Get("/workspace/{workspaceId}", c.Workspace.Get)
	})

	if base == "" {
		r.Mount("/", api)
	} else {
		r.Mount(base, api)
	}
	return r
}
