package provisioning_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/domain/types"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/store"
	"github.com/dropDatabas3/taskhub/internal/store/adapters/memory"
)

func TestSeedRolesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := memory.New(store.AdapterConfig{PasswordParams: password.Fast})

	report, err := provisioning.SeedRoles(ctx, conn.Roles())
	require.NoError(t, err)
	for _, name := range types.SystemRoleNames {
		assert.Equal(t, repository.UpsertCreated, report[name], name)
	}

	report, err = provisioning.SeedRoles(ctx, conn.Roles())
	require.NoError(t, err)
	for _, name := range types.SystemRoleNames {
		assert.Equal(t, repository.UpsertUnchanged, report[name], name)
	}
	assert.Equal(t, len(types.SystemRoleNames), conn.Counts()["roles"])

	owner, err := conn.Roles().GetByName(ctx, types.RoleOwner)
	require.NoError(t, err)
	assert.ElementsMatch(t, types.SystemRoles[types.RoleOwner], owner.Permissions)
}

func TestSeedRolesRestoresPermissions(t *testing.T) {
	ctx := context.Background()
	conn := memory.New(store.AdapterConfig{PasswordParams: password.Fast})

	_, _, err := conn.Roles().Upsert(ctx, types.RoleMember, []string{types.PermViewOnly})
	require.NoError(t, err)

	report, err := provisioning.SeedRoles(ctx, conn.Roles())
	require.NoError(t, err)
	assert.Equal(t, repository.UpsertUpdated, report[types.RoleMember])
}

func TestCheckPreconditions(t *testing.T) {
	ctx := context.Background()
	conn := memory.New(store.AdapterConfig{PasswordParams: password.Fast})

	err := provisioning.CheckPreconditions(ctx, conn.Roles())
	require.ErrorIs(t, err, provisioning.ErrOwnerRoleNotFound)
	assert.Contains(t, err.Error(), "taskhubctl seed roles")
	assert.Zero(t, conn.Counts()["roles"])

	_, err = provisioning.SeedRoles(ctx, conn.Roles())
	require.NoError(t, err)
	assert.NoError(t, provisioning.CheckPreconditions(ctx, conn.Roles()))
}

func TestOwnerByNameNeverCreates(t *testing.T) {
	ctx := context.Background()
	conn := memory.New(store.AdapterConfig{PasswordParams: password.Fast})

	_, err := provisioning.OwnerByName{}.Owner(ctx, conn.Roles())
	assert.ErrorIs(t, err, provisioning.ErrOwnerRoleNotFound)
	assert.Zero(t, conn.Counts()["roles"])
}

func TestSeedRolesLogsSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core))
	conn := memory.New(store.AdapterConfig{PasswordParams: password.Fast})

	_, err := provisioning.SeedRoles(ctx, conn.Roles())
	require.NoError(t, err)

	summary := logs.FilterMessage("system roles seeded").All()
	require.Len(t, summary, 1)
	assert.Equal(t, int64(len(types.SystemRoleNames)), summary[0].ContextMap()["count"])
	assert.Len(t, logs.FilterMessage("role seeded").All(), len(types.SystemRoleNames))
}
