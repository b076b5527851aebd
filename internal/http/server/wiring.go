// Package server arma las dependencias de la API a partir de la config y
// expone el ciclo de vida del http.Server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dropDatabas3/taskhub/internal/cache"
	"github.com/dropDatabas3/taskhub/internal/config"
	"github.com/dropDatabas3/taskhub/internal/email"
	"github.com/dropDatabas3/taskhub/internal/http/controllers"
	"github.com/dropDatabas3/taskhub/internal/http/router"
	"github.com/dropDatabas3/taskhub/internal/http/services"
	"github.com/dropDatabas3/taskhub/internal/metrics"
	"github.com/dropDatabas3/taskhub/internal/oauth"
	"github.com/dropDatabas3/taskhub/internal/oauth/google"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
	"github.com/dropDatabas3/taskhub/internal/rate"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/session"
	"github.com/dropDatabas3/taskhub/internal/store"
	"github.com/dropDatabas3/taskhub/internal/store/adapters/pg"
)

// App agrupa el handler y los recursos que hay que cerrar al apagar.
type App struct {
	Handler  http.Handler
	Conn     store.AdapterConnection
	Cache    cache.Client
	Metrics  *metrics.Metrics
	notifier *email.WelcomeNotifier
}

// Close espera los envíos de mail pendientes y libera cache y store.
func (a *App) Close() error {
	if a.notifier != nil {
		a.notifier.Wait()
	}
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.Conn != nil {
		errs = append(errs, a.Conn.Close())
	}
	return errors.Join(errs...)
}

// Build abre el store, verifica que exista el rol Owner y arma el router.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Named("wiring")
	started := time.Now()

	conn, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Conn: conn}

	if err := provisioning.CheckPreconditions(ctx, conn.Roles()); err != nil {
		log.Warn("owner role missing; run `taskhubctl seed roles` before provisioning users", logger.Err(err))
	}

	app.Cache, err = cache.New(ctx, cache.Config{
		Kind:            cfg.Cache.Kind,
		Addr:            cfg.Cache.Redis.Addr,
		Password:        cfg.Cache.Redis.Password,
		DB:              cfg.Cache.Redis.DB,
		Prefix:          cfg.Cache.Redis.Prefix,
		CleanupInterval: cfg.CacheCleanup(),
	})
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}

	app.Metrics = metrics.New()
	if src, ok := conn.(metrics.PoolSource); ok {
		_ = app.Metrics.Register(metrics.NewPoolCollector(src))
	}

	var notifier provisioning.Notifier
	if cfg.SMTP.Host != "" {
		app.notifier = &email.WelcomeNotifier{
			Sender: &email.SMTPSender{
				Host:               cfg.SMTP.Host,
				Port:               cfg.SMTP.Port,
				From:               cfg.SMTP.From,
				User:               cfg.SMTP.Username,
				Pass:               cfg.SMTP.Password,
				TLSMode:            cfg.SMTP.TLS,
				InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
				Timeout:            cfg.SMTPTimeout(),
			},
			AppURL:   cfg.Server.FrontendOrigin,
			Observer: app.Metrics,
		}
		notifier = app.notifier
	} else {
		log.Info("smtp host not configured, welcome mail disabled")
	}

	prov := provisioning.NewService(provisioning.Deps{
		Store:    conn,
		Observer: app.Metrics,
		Notifier: notifier,
	})

	sessions := session.NewStore(app.Cache, cfg.SessionTTL())
	cookie := CookieConfig(cfg)

	policy := password.DefaultPolicy
	policy.MinLength = cfg.Security.PasswordPolicy.MinLength
	policy.MaxLength = cfg.Security.PasswordPolicy.MaxLength

	ctrls := router.Controllers{
		Auth:      controllers.NewAuthController(services.NewAuthService(prov, conn.Users(), sessions, policy), cookie),
		User:      controllers.NewUserController(services.NewUserService(conn.Users())),
		Workspace: controllers.NewWorkspaceController(services.NewWorkspaceService(conn)),
		Health:    controllers.NewHealthController(services.NewHealthService(conn, healthCache(cfg, app.Cache), started)),
	}
	if g := cfg.OAuth.Google; g.Enabled {
		client := google.New(g.ClientID, g.ClientSecret, g.RedirectURL, g.Scopes)
		states := &oauth.StateSigner{Secret: []byte(cfg.StateSecret()), TTL: cfg.StateTTL()}
		svc := services.NewGoogleService(client, states, prov, conn.Users(), sessions)
		ctrls.Google = controllers.NewGoogleController(svc, cookie, cfg.Server.FrontendOrigin, cfg.OAuth.FrontendCallbackURL, cfg.StateTTL())
	}

	deps := router.Deps{
		Controllers: ctrls,
		BasePath:    cfg.Server.BasePath,
		CORSOrigins: corsOrigins(cfg),
		Sessions:    sessions,
		Cookie:      cookie,
		Metrics:     app.Metrics,
	}
	if cfg.Rate.Enabled {
		deps.GlobalLimiter, deps.AuthLimiter = limiters(cfg, app.Cache)
	}

	app.Handler = router.New(deps)
	log.Info("http handler ready",
		zap.String("storage", conn.Name()),
		zap.String("cache", cfg.Cache.Kind),
		zap.Bool("google", ctrls.Google != nil),
		zap.Bool("rate_limit", cfg.Rate.Enabled),
	)
	return app, nil
}

// OpenStore conecta el driver configurado. Con postgres y auto_migrate
// aplica las migraciones antes de abrir el pool.
func OpenStore(ctx context.Context, cfg *config.Config) (store.AdapterConnection, error) {
	ac := store.AdapterConfig{
		Name:           cfg.Storage.Driver,
		ConnectTimeout: cfg.ConnectTimeout(),
	}
	switch cfg.Storage.Driver {
	case "mongo":
		ac.DSN = cfg.Storage.Mongo.URI
		ac.Database = cfg.Storage.Mongo.Database
	case "postgres":
		ac.DSN = cfg.Storage.Postgres.DSN
		ac.MaxOpenConns = cfg.Storage.Postgres.MaxOpenConns
		ac.MaxIdleConns = cfg.Storage.Postgres.MaxIdleConns
		if cfg.Storage.Postgres.AutoMigrate {
			v, err := pg.MigrateUp(ac.DSN)
			if err != nil {
				return nil, fmt.Errorf("postgres migrate: %w", err)
			}
			logger.L().Info("postgres migrations applied", zap.Uint("version", v))
		}
	}
	conn, err := store.OpenAdapter(ctx, ac)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", ac.Name, err)
	}
	return conn, nil
}

// CookieConfig deriva la cookie de sesión. En producción la cookie viaja
// solo por HTTPS y con SameSite=None para el frontend en otro origen.
func CookieConfig(cfg *config.Config) session.CookieConfig {
	c := session.CookieConfig{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Session.Domain,
		SameSite: cfg.Session.SameSite,
		Secure:   cfg.Session.Secure,
	}
	if cfg.IsProduction() {
		c.Secure = true
		c.SameSite = "None"
	}
	return c
}

func corsOrigins(cfg *config.Config) []string {
	out := append([]string{}, cfg.Server.CORSAllowedOrigins...)
	if o := strings.TrimSpace(cfg.Server.FrontendOrigin); o != "" {
		out = append(out, o)
	}
	return out
}

// healthCache solo reporta el cache cuando es externo.
func healthCache(cfg *config.Config, c cache.Client) services.Pinger {
	if cfg.Cache.Kind != "redis" {
		return nil
	}
	return c
}

type redisBacked interface {
	Underlying() *redis.Client
}

// limiters usa Redis cuando el cache es Redis, así el límite se comparte
// entre instancias.
func limiters(cfg *config.Config, c cache.Client) (global, auth rate.Limiter) {
	if rb, ok := c.(redisBacked); ok {
		prefix := cfg.Cache.Redis.Prefix + "rl:"
		return rate.NewRedisLimiter(rb.Underlying(), prefix, cfg.Rate.MaxRequests, cfg.RateWindow()),
			rate.NewRedisLimiter(rb.Underlying(), prefix+"auth:", cfg.Rate.Auth.Limit, cfg.AuthRateWindow())
	}
	return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow()),
		rate.NewMemoryLimiter(cfg.Rate.Auth.Limit, cfg.AuthRateWindow())
}
