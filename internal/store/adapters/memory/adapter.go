// Package memory implementa un adapter en memoria con transacciones
// optimistas. Cada transacción trabaja sobre una copia tomada en BeginTx y
// en Commit valida unicidad (email, provider+provider_id, nombre de rol,
// usuario+workspace) contra el estado confirmado: el segundo commit de dos
// aprovisionamientos concurrentes recibe repository.ErrConflict.
//
// Se usa en tests y en desarrollo local (storage.driver: memory).
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	return New(cfg), nil
}

// Conn es una conexión en memoria. El zero value no es usable: usar New.
type Conn struct {
	mu     sync.Mutex
	data   *dataset
	params password.Params
	closed atomic.Bool

	// Now permite fijar el reloj en tests.
	Now func() time.Time
}

var _ store.AdapterConnection = (*Conn)(nil)

// New crea una conexión vacía.
func New(cfg store.AdapterConfig) *Conn {
	return &Conn{
		data:   newDataset(),
		params: cfg.HashParams(),
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (c *Conn) Name() string { return "memory" }

func (c *Conn) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return fmt.Errorf("memory: connection closed")
	}
	return nil
}

func (c *Conn) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *Conn) scope() *scope { return &scope{conn: c} }

func (c *Conn) Users() repository.UserRepository           { return &userRepo{c.scope()} }
func (c *Conn) Accounts() repository.AccountRepository     { return &accountRepo{c.scope()} }
func (c *Conn) Workspaces() repository.WorkspaceRepository { return &workspaceRepo{c.scope()} }
func (c *Conn) Roles() repository.RoleRepository           { return &roleRepo{c.scope()} }
func (c *Conn) Members() repository.MemberRepository       { return &memberRepo{c.scope()} }

// BeginTx toma una copia del estado confirmado.
func (c *Conn) BeginTx(ctx context.Context) (store.Tx, error) {
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	snapshot := c.data.clone()
	c.mu.Unlock()
	return &memTx{conn: c, data: snapshot, dirty: newDirtySet()}, nil
}

// Counts retorna la cantidad de registros confirmados por colección.
func (c *Conn) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]int{
		"users":      len(c.data.users),
		"accounts":   len(c.data.accounts),
		"workspaces": len(c.data.workspaces),
		"roles":      len(c.data.roles),
		"members":    len(c.data.members),
	}
}

// ─── Tx ───

type memTx struct {
	mu    sync.Mutex
	conn  *Conn
	data  *dataset
	dirty *dirtySet
	done  bool
}

func (t *memTx) scope() *scope { return &scope{conn: t.conn, tx: t} }

func (t *memTx) Users() repository.UserRepository           { return &userRepo{t.scope()} }
func (t *memTx) Accounts() repository.AccountRepository     { return &accountRepo{t.scope()} }
func (t *memTx) Workspaces() repository.WorkspaceRepository { return &workspaceRepo{t.scope()} }
func (t *memTx) Roles() repository.RoleRepository           { return &roleRepo{t.scope()} }
func (t *memTx) Members() repository.MemberRepository       { return &memberRepo{t.scope()} }

func (t *memTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return repository.ErrTxDone
	}
	t.done = true

	c := t.conn
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := t.validate(c.data); err != nil {
		return err
	}
	for id := range t.dirty.users {
		c.data.users[id] = t.data.users[id]
	}
	for id := range t.dirty.accounts {
		c.data.accounts[id] = t.data.accounts[id]
	}
	for id := range t.dirty.workspaces {
		c.data.workspaces[id] = t.data.workspaces[id]
	}
	for id := range t.dirty.roles {
		c.data.roles[id] = t.data.roles[id]
	}
	for id := range t.dirty.members {
		c.data.members[id] = t.data.members[id]
	}
	return nil
}

// validate revisa que los registros escritos en la tx sigan siendo únicos
// frente a lo confirmado por otras transacciones desde BeginTx.
func (t *memTx) validate(committed *dataset) error {
	for id := range t.dirty.users {
		if err := committed.checkUser(t.data.users[id]); err != nil {
			return err
		}
	}
	for id := range t.dirty.accounts {
		if err := committed.checkAccount(t.data.accounts[id]); err != nil {
			return err
		}
	}
	for id := range t.dirty.roles {
		if err := committed.checkRole(t.data.roles[id]); err != nil {
			return err
		}
	}
	for id := range t.dirty.members {
		if err := committed.checkMember(t.data.members[id]); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return repository.ErrTxDone
	}
	t.done = true
	t.data = nil
	return nil
}

// ─── scope ───

// scope resuelve sobre qué dataset opera un repo: el confirmado (con el
// lock de la conexión) o la copia de una tx abierta.
type scope struct {
	conn *Conn
	tx   *memTx
}

func (s *scope) enter() (*dataset, func(), error) {
	if s.tx != nil {
		s.tx.mu.Lock()
		if s.tx.done {
			s.tx.mu.Unlock()
			return nil, nil, repository.ErrTxDone
		}
		return s.tx.data, s.tx.mu.Unlock, nil
	}
	if s.conn.closed.Load() {
		return nil, nil, fmt.Errorf("memory: connection closed")
	}
	s.conn.mu.Lock()
	return s.conn.data, s.conn.mu.Unlock, nil
}

func (s *scope) mark(fn func(d *dirtySet)) {
	if s.tx != nil {
		fn(s.tx.dirty)
	}
}

func (s *scope) now() time.Time { return s.conn.Now() }
