package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/taskhub/internal/cache"
	httperrors "github.com/dropDatabas3/taskhub/internal/http/errors"
	"github.com/dropDatabas3/taskhub/internal/http/services"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/session"
	"github.com/dropDatabas3/taskhub/internal/store"
	"github.com/dropDatabas3/taskhub/internal/store/adapters/memory"
)

func newAuth(t *testing.T, policy password.Policy) (services.AuthService, *memory.Conn) {
	t.Helper()
	conn := memory.New(store.AdapterConfig{PasswordParams: password.Fast})
	_, err := provisioning.SeedRoles(context.Background(), conn.Roles())
	require.NoError(t, err)
	prov := provisioning.NewService(provisioning.Deps{Store: conn})
	sessions := session.NewStore(cache.NewMemory("", time.Minute), time.Hour)
	return services.NewAuthService(prov, conn.Users(), sessions, policy), conn
}

func TestRegisterAppliesConfiguredPolicy(t *testing.T) {
	ctx := context.Background()
	svc, conn := newAuth(t, password.Policy{MinLength: 8, MaxLength: 64})

	_, err := svc.Register(ctx, provisioning.RegisterInput{Email: "a@x.com", Name: "A", Password: "p1"})
	var appErr *httperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, "password: too_short", appErr.Detail)
	assert.Zero(t, conn.Counts()["users"])

	_, err = svc.Register(ctx, provisioning.RegisterInput{Email: "a@x.com", Name: "A", Password: "long-enough"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "a@x.com", "long-enough")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}
