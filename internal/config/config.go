package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		BasePath           string   `yaml:"base_path"`
		FrontendOrigin     string   `yaml:"frontend_origin"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		// mongo | postgres | memory
		Driver string `yaml:"driver"`
		Mongo  struct {
			URI      string `yaml:"uri"`
			Database string `yaml:"database"`
		} `yaml:"mongo"`
		Postgres struct {
			DSN          string `yaml:"dsn"`
			MaxOpenConns int    `yaml:"max_open_conns"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
			AutoMigrate  bool   `yaml:"auto_migrate"`
		} `yaml:"postgres"`
		ConnectTimeout string `yaml:"connect_timeout"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			CleanupInterval string `yaml:"cleanup_interval"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		Secret     string `yaml:"secret"`
		Domain     string `yaml:"domain"`
		SameSite   string `yaml:"same_site"`
		Secure     bool   `yaml:"secure"`
		TTL        string `yaml:"ttl"`
	} `yaml:"session"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
		Auth        struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"auth"`
	} `yaml:"rate"`

	OAuth struct {
		Google struct {
			Enabled      bool     `yaml:"enabled"`
			ClientID     string   `yaml:"client_id"`
			ClientSecret string   `yaml:"client_secret"`
			RedirectURL  string   `yaml:"redirect_url"`
			Scopes       []string `yaml:"scopes"`
		} `yaml:"google"`
		// StateSecret firma el parámetro state (HS256). Default: session.secret.
		StateSecret         string `yaml:"state_secret"`
		StateTTL            string `yaml:"state_ttl"`
		FrontendCallbackURL string `yaml:"frontend_callback_url"`
	} `yaml:"oauth"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		// auto | starttls | ssl | none
		TLS                string `yaml:"tls"`
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
		Timeout            string `yaml:"timeout"`
	} `yaml:"smtp"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Security struct {
		PasswordPolicy struct {
			MinLength int `yaml:"min_length"`
			MaxLength int `yaml:"max_length"`
		} `yaml:"password_policy"`
	} `yaml:"security"`
}

// Load lee el YAML en path, aplica defaults, overrides por env y valida.
// Con path vacío arranca solo de defaults + env.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "taskhub"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/api"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "15s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "mongo"
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "taskhub"
	}
	if c.Storage.ConnectTimeout == "" {
		c.Storage.ConnectTimeout = "10s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "taskhub:"
	}
	if c.Cache.Memory.CleanupInterval == "" {
		c.Cache.Memory.CleanupInterval = "10m"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "session"
	}
	if c.Session.SameSite == "" {
		c.Session.SameSite = "Lax"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "24h"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 120
	}
	if c.Rate.Auth.Limit == 0 {
		c.Rate.Auth.Limit = 10
	}
	if c.Rate.Auth.Window == "" {
		c.Rate.Auth.Window = "1m"
	}
	if len(c.OAuth.Google.Scopes) == 0 {
		c.OAuth.Google.Scopes = []string{"openid", "email", "profile"}
	}
	if c.OAuth.StateTTL == "" {
		c.OAuth.StateTTL = "10m"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.Timeout == "" {
		c.SMTP.Timeout = "30s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 1
	}
	if c.Security.PasswordPolicy.MaxLength == 0 {
		c.Security.PasswordPolicy.MaxLength = 128
	}
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("APP_VERSION"); ok {
		c.App.Version = v
	}

	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	} else if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := getEnvStr("BASE_PATH"); ok {
		c.Server.BasePath = v
	}
	if v, ok := getEnvStr("FRONTEND_ORIGIN"); ok {
		c.Server.FrontendOrigin = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("MONGO_URI"); ok {
		c.Storage.Mongo.URI = v
	}
	if v, ok := getEnvStr("MONGO_DATABASE"); ok {
		c.Storage.Mongo.Database = v
	}
	if v, ok := getEnvStr("POSTGRES_DSN"); ok {
		c.Storage.Postgres.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvBool("POSTGRES_AUTO_MIGRATE"); ok {
		c.Storage.Postgres.AutoMigrate = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	if v, ok := getEnvStr("SESSION_SECRET"); ok {
		c.Session.Secret = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvBool("SESSION_SECURE"); ok {
		c.Session.Secure = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}

	if v, ok := getEnvStr("GOOGLE_CLIENT_ID"); ok {
		c.OAuth.Google.ClientID = v
		c.OAuth.Google.Enabled = true
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_SECRET"); ok {
		c.OAuth.Google.ClientSecret = v
	}
	if v, ok := getEnvStr("GOOGLE_CALLBACK_URL"); ok {
		c.OAuth.Google.RedirectURL = v
	}
	if v, ok := getEnvStr("FRONTEND_GOOGLE_CALLBACK_URL"); ok {
		c.OAuth.FrontendCallbackURL = v
	}
	if v, ok := getEnvStr("OAUTH_STATE_SECRET"); ok {
		c.OAuth.StateSecret = v
	}

	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}

	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// Validate revisa combinaciones inválidas. Los errores se acumulan.
func (c *Config) Validate() error {
	var errs []error

	for name, v := range map[string]string{
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"storage.connect_timeout":  c.Storage.ConnectTimeout,
		"cache.memory.cleanup_int": c.Cache.Memory.CleanupInterval,
		"session.ttl":              c.Session.TTL,
		"rate.window":              c.Rate.Window,
		"rate.auth.window":         c.Rate.Auth.Window,
		"oauth.state_ttl":          c.OAuth.StateTTL,
		"smtp.timeout":             c.SMTP.Timeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path must start with /"))
	}

	switch c.Storage.Driver {
	case "mongo":
		if c.Storage.Mongo.URI == "" {
			errs = append(errs, errors.New("storage.mongo.uri (MONGO_URI) is required for driver mongo"))
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, errors.New("storage.postgres.dsn (POSTGRES_DSN) is required for driver postgres"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown %q", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr (REDIS_ADDR) is required for cache kind redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.kind: unknown %q", c.Cache.Kind))
	}

	if c.Session.Secret == "" && c.IsProduction() {
		errs = append(errs, errors.New("session.secret (SESSION_SECRET) is required in production"))
	}

	if g := c.OAuth.Google; g.Enabled {
		if g.ClientID == "" || g.ClientSecret == "" || g.RedirectURL == "" {
			errs = append(errs, errors.New("oauth.google: client_id, client_secret and redirect_url are required when enabled"))
		}
	}

	switch c.SMTP.TLS {
	case "auto", "starttls", "ssl", "none":
	default:
		errs = append(errs, fmt.Errorf("smtp.tls: unknown %q", c.SMTP.TLS))
	}

	p := c.Security.PasswordPolicy
	if p.MinLength < 1 || p.MaxLength < p.MinLength {
		errs = append(errs, fmt.Errorf("security.password_policy: invalid range [%d, %d]", p.MinLength, p.MaxLength))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "prod" || c.App.Env == "production"
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Las duraciones ya fueron validadas en Load.

func (c *Config) ReadTimeout() time.Duration     { return mustDuration(c.Server.ReadTimeout) }
func (c *Config) WriteTimeout() time.Duration    { return mustDuration(c.Server.WriteTimeout) }
func (c *Config) ShutdownTimeout() time.Duration { return mustDuration(c.Server.ShutdownTimeout) }
func (c *Config) ConnectTimeout() time.Duration  { return mustDuration(c.Storage.ConnectTimeout) }
func (c *Config) CacheCleanup() time.Duration    { return mustDuration(c.Cache.Memory.CleanupInterval) }
func (c *Config) SessionTTL() time.Duration      { return mustDuration(c.Session.TTL) }
func (c *Config) RateWindow() time.Duration      { return mustDuration(c.Rate.Window) }
func (c *Config) AuthRateWindow() time.Duration  { return mustDuration(c.Rate.Auth.Window) }
func (c *Config) StateTTL() time.Duration        { return mustDuration(c.OAuth.StateTTL) }
func (c *Config) SMTPTimeout() time.Duration     { return mustDuration(c.SMTP.Timeout) }

// StateSecret secreto para firmar el state de OAuth.
func (c *Config) StateSecret() string {
	if c.OAuth.StateSecret != "" {
		return c.OAuth.StateSecret
	}
	return c.Session.Secret
}
