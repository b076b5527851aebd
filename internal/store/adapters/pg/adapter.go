// Package pg implementa el adapter PostgreSQL con pgxpool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/store"
)

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

// querier es la superficie común de *pgxpool.Pool y pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pg: dsn required: %w", repository.ErrNoDatabase)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	} else {
		poolCfg.MinConns = 2
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.Timeout()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}

	return &pgConnection{pool: pool, params: cfg.HashParams()}, nil
}

type pgConnection struct {
	pool   *pgxpool.Pool
	params password.Params
}

func (c *pgConnection) Name() string { return "postgres" }

// Pool expone el pool para métricas (ver metrics.NewPoolCollector).
func (c *pgConnection) Pool() *pgxpool.Pool { return c.pool }

func (c *pgConnection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

func (c *pgConnection) Close() error {
	c.pool.Close()
	return nil
}

func (c *pgConnection) Users() repository.UserRepository {
	return &userRepo{q: c.pool, params: c.params}
}
func (c *pgConnection) Accounts() repository.AccountRepository     { return &accountRepo{q: c.pool} }
func (c *pgConnection) Workspaces() repository.WorkspaceRepository { return &workspaceRepo{q: c.pool} }
func (c *pgConnection) Roles() repository.RoleRepository           { return &roleRepo{q: c.pool} }
func (c *pgConnection) Members() repository.MemberRepository       { return &memberRepo{q: c.pool} }

// BeginTx abre una transacción READ COMMITTED. Las inserciones concurrentes
// sobre la misma clave única esperan al commit de la otra y fallan con 23505.
func (c *pgConnection) BeginTx(ctx context.Context) (store.Tx, error) {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("pg: begin: %w", err)
	}
	return &pgTx{tx: tx, q: &guardedQuerier{tx: tx}, params: c.params}, nil
}

// ─── Tx ───

type pgTx struct {
	mu     sync.Mutex
	tx     pgx.Tx
	q      *guardedQuerier
	params password.Params
	done   bool
}

func (t *pgTx) Users() repository.UserRepository           { return &userRepo{q: t.q, params: t.params} }
func (t *pgTx) Accounts() repository.AccountRepository     { return &accountRepo{q: t.q} }
func (t *pgTx) Workspaces() repository.WorkspaceRepository { return &workspaceRepo{q: t.q} }
func (t *pgTx) Roles() repository.RoleRepository           { return &roleRepo{q: t.q} }
func (t *pgTx) Members() repository.MemberRepository       { return &memberRepo{q: t.q} }

func (t *pgTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return repository.ErrTxDone
	}
	t.done = true
	t.q.close()
	return mapErr("commit", t.tx.Commit(ctx))
}

func (t *pgTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return repository.ErrTxDone
	}
	t.done = true
	t.q.close()
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// guardedQuerier rechaza consultas después de Commit/Rollback con ErrTxDone.
type guardedQuerier struct {
	mu     sync.RWMutex
	tx     pgx.Tx
	closed bool
}

func (g *guardedQuerier) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

func (g *guardedQuerier) isClosed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.closed
}

func (g *guardedQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if g.isClosed() {
		return pgconn.CommandTag{}, repository.ErrTxDone
	}
	return g.tx.Exec(ctx, sql, args...)
}

func (g *guardedQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if g.isClosed() {
		return nil, repository.ErrTxDone
	}
	return g.tx.Query(ctx, sql, args...)
}

func (g *guardedQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if g.isClosed() {
		return errRow{repository.ErrTxDone}
	}
	return g.tx.QueryRow(ctx, sql, args...)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// mapErr traduce errores de pgx a errores de dominio.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	if errors.Is(err, repository.ErrTxDone) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("pg: %s: %s: %w", op, pgErr.ConstraintName, repository.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("pg: %s: %s: %w", op, pgErr.ConstraintName, repository.ErrInvalidInput)
		}
	}
	return fmt.Errorf("pg: %s: %w", op, err)
}
