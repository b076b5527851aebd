package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/store"
)

func newConn() *Conn {
	return New(store.AdapterConfig{PasswordParams: password.Fast})
}

func strptr(s string) *string { return &s }

func TestRegisteredInStore(t *testing.T) {
	conn, err := store.OpenAdapter(context.Background(), store.AdapterConfig{Name: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", conn.Name())
	require.NoError(t, conn.Ping(context.Background()))
}

func TestUserCreateHashesPassword(t *testing.T) {
	ctx := context.Background()
	conn := newConn()

	u, err := conn.Users().Create(ctx, repository.CreateUserInput{Email: "a@x.com", Name: "A", Password: strptr("p1")})
	require.NoError(t, err)
	require.NotNil(t, u.PasswordHash)
	assert.NotEqual(t, "p1", *u.PasswordHash)
	assert.True(t, u.CheckPassword("p1"))
	assert.True(t, u.IsActive)

	got, err := conn.Users().GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUpgradePassword(t *testing.T) {
	ctx := context.Background()
	conn := newConn()

	u, err := conn.Users().Create(ctx, repository.CreateUserInput{Email: "a@x.com", Name: "A", Password: strptr("p1")})
	require.NoError(t, err)

	upgraded, err := conn.Users().UpgradePassword(ctx, u.ID, "p1", *u.PasswordHash)
	require.NoError(t, err)
	assert.False(t, upgraded, "hash already uses the connection params")

	legacy, err := bcrypt.GenerateFromPassword([]byte("p1"), bcrypt.MinCost)
	require.NoError(t, err)
	upgraded, err = conn.Users().UpgradePassword(ctx, u.ID, "p1", string(legacy))
	require.NoError(t, err)
	assert.True(t, upgraded)

	got, err := conn.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, password.NeedsRehash(password.Fast, *got.PasswordHash))
	assert.True(t, got.CheckPassword("p1"))

	_, err = conn.Users().UpgradePassword(ctx, "missing", "p1", string(legacy))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	conn := newConn()

	_, err := conn.Users().Create(ctx, repository.CreateUserInput{Email: "a@x.com", Name: "A"})
	require.NoError(t, err)
	_, err = conn.Users().Create(ctx, repository.CreateUserInput{Email: "a@x.com", Name: "B"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = conn.Accounts().Create(ctx, repository.CreateAccountInput{UserID: "u1", Provider: "GOOGLE", ProviderID: "g1"})
	require.NoError(t, err)
	_, err = conn.Accounts().Create(ctx, repository.CreateAccountInput{UserID: "u2", Provider: "GOOGLE", ProviderID: "g1"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = conn.Members().Create(ctx, repository.CreateMemberInput{UserID: "u1", WorkspaceID: "w1", RoleID: "r1"})
	require.NoError(t, err)
	_, err = conn.Members().Create(ctx, repository.CreateMemberInput{UserID: "u1", WorkspaceID: "w1", RoleID: "r2"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestTxIsolationAndCommit(t *testing.T) {
	ctx := context.Background()
	conn := newConn()

	tx, err := conn.BeginTx(ctx)
	require.NoError(t, err)

	u, err := tx.Users().Create(ctx, repository.CreateUserInput{Email: "a@x.com", Name: "A"})
	require.NoError(t, err)
	require.NoError(t, tx.Users().SetCurrentWorkspace(ctx, u.ID, "w1"))

	_, err = conn.Users().GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound, "uncommitted writes must not leak")

	require.NoError(t, tx.Commit(ctx))

	got, err := conn.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentWorkspace)
	assert.Equal(t, "w1", *got.CurrentWorkspace)

	assert.ErrorIs(t, tx.Commit(ctx), repository.ErrTxDone)
	_, err = tx.Users().GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrTxDone)
}

func TestTxRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	conn := newConn()

	tx, err := conn.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.Workspaces().Create(ctx, repository.CreateWorkspaceInput{Name: "W", OwnerID: "u"})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	assert.Equal(t, 0, conn.Counts()["workspaces"])
	assert.ErrorIs(t, tx.Rollback(ctx), repository.ErrTxDone)
}

func TestConcurrentTxConflictOnCommit(t *testing.T) {
	ctx := context.Background()
	conn := newConn()

	tx1, err := conn.BeginTx(ctx)
	require.NoError(t, err)
	tx2, err := conn.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx1.Users().Create(ctx, repository.CreateUserInput{Email: "race@x.com", Name: "1"})
	require.NoError(t, err)
	_, err = tx2.Users().Create(ctx, repository.CreateUserInput{Email: "race@x.com", Name: "2"})
	require.NoError(t, err, "each snapshot is unaware of the other")

	require.NoError(t, tx1.Commit(ctx))
	assert.ErrorIs(t, tx2.Commit(ctx), repository.ErrConflict)
	assert.Equal(t, 1, conn.Counts()["users"])
}

func TestRoleUpsertOutcomes(t *testing.T) {
	ctx := context.Background()
	conn := newConn()
	roles := conn.Roles()

	r, outcome, err := roles.Upsert(ctx, "Owner", []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, repository.UpsertCreated, outcome)

	_, outcome, err = roles.Upsert(ctx, "Owner", []string{"B", "A"})
	require.NoError(t, err)
	assert.Equal(t, repository.UpsertUnchanged, outcome)

	updated, outcome, err := roles.Upsert(ctx, "Owner", []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, repository.UpsertUpdated, outcome)
	assert.Equal(t, r.ID, updated.ID)

	byName, err := roles.GetByName(ctx, "Owner")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, byName.Permissions)
}

func TestMembersSortedByJoinedAt(t *testing.T) {
	ctx := context.Background()
	conn := newConn()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := conn.Members().Create(ctx, repository.CreateMemberInput{UserID: "u2", WorkspaceID: "w", RoleID: "r", JoinedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = conn.Members().Create(ctx, repository.CreateMemberInput{UserID: "u1", WorkspaceID: "w", RoleID: "r", JoinedAt: base})
	require.NoError(t, err)

	list, err := conn.Members().ListByWorkspace(ctx, "w")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u1", list[0].UserID)
}

func TestClosedConnection(t *testing.T) {
	conn := newConn()
	require.NoError(t, conn.Close())
	assert.Error(t, conn.Ping(context.Background()))
	_, err := conn.BeginTx(context.Background())
	assert.Error(t, err)
}
