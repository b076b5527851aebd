package pg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/store"
	migrations "github.com/dropDatabas3/taskhub/migrations/postgres"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr("x", nil))
	assert.ErrorIs(t, mapErr("x", pgx.ErrNoRows), repository.ErrNotFound)

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	err := mapErr("insert user", unique)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Contains(t, err.Error(), "users_email_key")

	fk := &pgconn.PgError{Code: "23503"}
	assert.ErrorIs(t, mapErr("insert member", fk), repository.ErrInvalidInput)

	assert.ErrorIs(t, mapErr("x", repository.ErrTxDone), repository.ErrTxDone)

	boom := errors.New("boom")
	assert.ErrorIs(t, mapErr("x", boom), boom)
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", migrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://h/db", migrateURL("postgresql://h/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}

func TestMigrationsEmbedded(t *testing.T) {
	src, err := iofs.New(migrations.FS, migrations.Dir)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	r, ident, err := src.ReadUp(first)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "init", ident)
}

func TestSameSet(t *testing.T) {
	assert.True(t, sameSet([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, sameSet([]string{"a"}, []string{"a", "b"}))
}

// TestIntegrationProvisioningTables requiere TASKHUB_POSTGRES_DSN apuntando
// a una base descartable.
func TestIntegrationProvisioningTables(t *testing.T) {
	dsn := os.Getenv("TASKHUB_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TASKHUB_POSTGRES_DSN not set")
	}
	_, err := MigrateUp(dsn)
	require.NoError(t, err)

	ctx := context.Background()
	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{Name: "postgres", DSN: dsn, PasswordParams: password.Fast})
	require.NoError(t, err)
	defer conn.Close()

	email := fmt.Sprintf("pg-%d@x.com", os.Getpid())
	pw := "secret123"
	var userID string
	err = store.WithinTx(ctx, conn, func(repos repository.Set) error {
		u, err := repos.Users().Create(ctx, repository.CreateUserInput{Email: email, Name: "PG", Password: &pw})
		if err != nil {
			return err
		}
		userID = u.ID
		ws, err := repos.Workspaces().Create(ctx, repository.CreateWorkspaceInput{Name: "My Workspace", OwnerID: u.ID})
		if err != nil {
			return err
		}
		return repos.Users().SetCurrentWorkspace(ctx, u.ID, ws.ID)
	})
	require.NoError(t, err)

	u, err := conn.Users().GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, u.CheckPassword(pw))
	require.NotNil(t, u.CurrentWorkspace)

	upgraded, err := conn.Users().UpgradePassword(ctx, userID, pw, *u.PasswordHash)
	require.NoError(t, err)
	assert.False(t, upgraded)
	upgraded, err = conn.Users().UpgradePassword(ctx, userID, pw, "$2a$04$legacy")
	require.NoError(t, err)
	assert.True(t, upgraded)

	_, err = conn.Users().Create(ctx, repository.CreateUserInput{Email: email, Name: "dup"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}
