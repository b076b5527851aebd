// Package store provee el registry de adaptadores de persistencia y el
// scope transaccional que usan los flujos de aprovisionamiento.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/security/password"
)

// Adapter crea conexiones a un motor de almacenamiento.
type Adapter interface {
	// Name retorna el nombre del adapter ("mongo", "postgres", "memory").
	Name() string

	Connect(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error)
}

// AdapterConnection es una conexión activa. Los repositorios que expone
// operan en modo auto-commit; para escrituras atómicas usar BeginTx o WithinTx.
type AdapterConnection interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	repository.Set

	// BeginTx abre una transacción multi-documento.
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx es una transacción abierta. Después de Commit o Rollback cualquier
// llamada retorna repository.ErrTxDone.
type Tx interface {
	repository.Set

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// AdapterConfig configuración para conectar a un almacenamiento.
type AdapterConfig struct {
	// Name del adapter: "mongo", "postgres", "memory".
	Name string

	// DSN connection string (URI de mongo o DSN de postgres).
	DSN string

	// Database nombre de la base (solo mongo).
	Database string

	// Pool settings.
	MaxOpenConns int
	MaxIdleConns int

	// ConnectTimeout límite para el handshake inicial. Default 10s.
	ConnectTimeout time.Duration

	// PasswordParams parámetros argon2id con los que el adapter hashea
	// CreateUserInput.Password. Zero value = password.Default.
	PasswordParams password.Params
}

// HashParams retorna los parámetros efectivos de hashing.
func (c AdapterConfig) HashParams() password.Params {
	if c.PasswordParams == (password.Params{}) {
		return password.Default
	}
	return c.PasswordParams
}

// Timeout retorna ConnectTimeout o el default.
func (c AdapterConfig) Timeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return c.ConnectTimeout
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter. Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("adapter: %q already registered", name))
	}
	adapters[name] = a
}

func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAdapter abre una conexión usando el adapter de cfg.Name.
func OpenAdapter(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("adapter: %q not registered (available: %v)", cfg.Name, ListAdapters())
	}
	return a.Connect(ctx, cfg)
}
