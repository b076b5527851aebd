// Package cache provee un key-value con TTL sobre dos backends:
//   - memory (go-cache, in-process, desarrollo y tests)
//   - redis (go-redis, compartido entre instancias)
//
// Lo usan las sesiones (internal/session) y el health check.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor. Con ttl 0 no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error

	// Stats lo reporta el health check.
	Stats(ctx context.Context) (Stats, error)
}

type Stats struct {
	Driver     string
	Keys       int64
	UsedMemory string
	Hits       int64
	Misses     int64
}

// Config configuración para crear un cliente.
type Config struct {
	Kind            string // "memory" | "redis"
	Addr            string
	Password        string
	DB              int
	Prefix          string
	CleanupInterval time.Duration
}

var ErrNotFound = errors.New("cache: key not found")

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// New crea un cliente según cfg.Kind. Redis hace ping antes de retornar.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Kind {
	case "redis":
		return NewRedis(ctx, cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix, cfg.CleanupInterval), nil
	}
	return nil, fmt.Errorf("cache: unknown kind %q", cfg.Kind)
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + k
}
