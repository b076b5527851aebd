// Package mongo implementa el adapter MongoDB con go.mongodb.org/mongo-driver.
//
// Las transacciones multi-documento requieren un replica set (o mongos).
// Los índices únicos se crean en Connect y son la garantía de unicidad de
// email, (provider, providerId) y nombre de rol.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver/session"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/store"
)

func init() {
	store.RegisterAdapter(&mongoAdapter{})
}

const defaultDatabase = "taskhub"

// Nombres de colecciones.
const (
	colUsers      = "users"
	colAccounts   = "accounts"
	colWorkspaces = "workspaces"
	colRoles      = "roles"
	colMembers    = "members"
)

type mongoAdapter struct{}

func (a *mongoAdapter) Name() string { return "mongo" }

func (a *mongoAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("mongo: uri required: %w", repository.ErrNoDatabase)
	}

	opts := options.Client().
		ApplyURI(cfg.DSN).
		SetConnectTimeout(cfg.Timeout()).
		SetServerSelectionTimeout(cfg.Timeout())
	if cfg.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxOpenConns))
	}
	if cfg.MaxIdleConns > 0 {
		opts.SetMinPoolSize(uint64(cfg.MaxIdleConns))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping failed: %w", err)
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = defaultDatabase
	}
	c := &mongoConnection{
		client:  client,
		db:      client.Database(dbName),
		params:  cfg.HashParams(),
		timeout: cfg.Timeout(),
	}
	if err := c.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.From(ctx).Info("mongo connected",
		logger.Layer("store"),
		logger.String("database", dbName),
	)
	return c, nil
}

type mongoConnection struct {
	client  *mongo.Client
	db      *mongo.Database
	params  password.Params
	timeout time.Duration
}

func (c *mongoConnection) Name() string { return "mongo" }

func (c *mongoConnection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *mongoConnection) Close() error {
	return c.client.Disconnect(context.Background())
}

func (c *mongoConnection) repos(sess mongo.Session) *repos {
	return &repos{db: c.db, sess: sess, params: c.params}
}

func (c *mongoConnection) Users() repository.UserRepository { return &userRepo{c.repos(nil)} }
func (c *mongoConnection) Accounts() repository.AccountRepository {
	return &accountRepo{c.repos(nil)}
}
func (c *mongoConnection) Workspaces() repository.WorkspaceRepository {
	return &workspaceRepo{c.repos(nil)}
}
func (c *mongoConnection) Roles() repository.RoleRepository     { return &roleRepo{c.repos(nil)} }
func (c *mongoConnection) Members() repository.MemberRepository { return &memberRepo{c.repos(nil)} }

// BeginTx abre una sesión con transacción snapshot/majority.
func (c *mongoConnection) BeginTx(ctx context.Context) (store.Tx, error) {
	sess, err := c.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("mongo: start session: %w", err)
	}
	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := sess.StartTransaction(txOpts); err != nil {
		sess.EndSession(ctx)
		return nil, fmt.Errorf("mongo: start transaction: %w", err)
	}
	return &mongoTx{sess: sess, repos: c.repos(sess)}, nil
}

func (c *mongoConnection) ensureIndexes(ctx context.Context) error {
	unique := func(name string) *options.IndexOptions {
		return options.Index().SetUnique(true).SetName(name)
	}
	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique("uniq_email")},
		},
		colAccounts: {
			{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "providerId", Value: 1}}, Options: unique("uniq_provider_account")},
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("by_user")},
		},
		colWorkspaces: {
			{Keys: bson.D{{Key: "inviteCode", Value: 1}}, Options: unique("uniq_invite_code")},
		},
		colRoles: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique("uniq_role_name")},
		},
		colMembers: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "workspaceId", Value: 1}}, Options: unique("uniq_membership")},
			{Keys: bson.D{{Key: "workspaceId", Value: 1}}, Options: options.Index().SetName("by_workspace")},
		},
	}
	for col, models := range specs {
		if _, err := c.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: create indexes on %s: %w", col, err)
		}
	}
	return nil
}

// ─── Tx ───

type mongoTx struct {
	mu    sync.Mutex
	sess  mongo.Session
	repos *repos
	done  bool
}

func (t *mongoTx) Users() repository.UserRepository           { return &userRepo{t.repos} }
func (t *mongoTx) Accounts() repository.AccountRepository     { return &accountRepo{t.repos} }
func (t *mongoTx) Workspaces() repository.WorkspaceRepository { return &workspaceRepo{t.repos} }
func (t *mongoTx) Roles() repository.RoleRepository           { return &roleRepo{t.repos} }
func (t *mongoTx) Members() repository.MemberRepository       { return &memberRepo{t.repos} }

func (t *mongoTx) finish(ctx context.Context, fn func(context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return repository.ErrTxDone
	}
	t.done = true
	t.repos.closed.Store(true)
	defer t.sess.EndSession(ctx)
	return fn(ctx)
}

func (t *mongoTx) Commit(ctx context.Context) error {
	return t.finish(ctx, func(ctx context.Context) error {
		return mapErr("commit", t.sess.CommitTransaction(ctx))
	})
}

func (t *mongoTx) Rollback(ctx context.Context) error {
	return t.finish(ctx, func(ctx context.Context) error {
		err := t.sess.AbortTransaction(ctx)
		if errors.Is(err, session.ErrAbortAfterCommit) || errors.Is(err, session.ErrAbortTwice) {
			return repository.ErrTxDone
		}
		return err
	})
}
