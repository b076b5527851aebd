package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/taskhub/internal/cache"
	"github.com/dropDatabas3/taskhub/internal/http/services"
	"github.com/dropDatabas3/taskhub/internal/oauth"
	"github.com/dropDatabas3/taskhub/internal/oauth/google"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/session"
	"github.com/dropDatabas3/taskhub/internal/store"
	"github.com/dropDatabas3/taskhub/internal/store/adapters/memory"
)

type fakeGoogle struct {
	profile     google.Profile
	exchangeErr error
}

func (f *fakeGoogle) AuthURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}

func (f *fakeGoogle) ExchangeCode(_ context.Context, code string) (*google.TokenResponse, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &google.TokenResponse{AccessToken: "at-" + code}, nil
}

func (f *fakeGoogle) UserInfo(_ context.Context, accessToken string) (*google.Profile, error) {
	p := f.profile
	return &p, nil
}

func newGoogle(t *testing.T, g services.GoogleProvider) (services.GoogleService, *memory.Conn) {
	t.Helper()
	conn := memory.New(store.AdapterConfig{PasswordParams: password.Fast})
	_, err := provisioning.SeedRoles(context.Background(), conn.Roles())
	require.NoError(t, err)
	prov := provisioning.NewService(provisioning.Deps{Store: conn})
	sessions := session.NewStore(cache.NewMemory("", time.Minute), time.Hour)
	states := &oauth.StateSigner{Secret: []byte("state-secret"), TTL: time.Minute}
	return services.NewGoogleService(g, states, prov, conn.Users(), sessions), conn
}

func TestGoogleCallbackProvisionsOnce(t *testing.T) {
	g := &fakeGoogle{profile: google.Profile{Sub: "g-1", Email: "ana@example.com", EmailVerified: true, Name: "Ana"}}
	svc, conn := newGoogle(t, g)
	ctx := context.Background()

	for i, wantCreated := range []bool{true, false} {
		url, nonce, err := svc.Begin()
		require.NoError(t, err)
		state := url[len("https://accounts.example/auth?state="):]

		res, err := svc.Callback(ctx, "code", state, nonce)
		require.NoError(t, err, "round %d", i)
		assert.Equal(t, wantCreated, res.Created)
		assert.NotEmpty(t, res.Token)
		require.NotNil(t, res.User.CurrentWorkspace)
		assert.NotNil(t, res.User.LastLogin)
	}

	c := conn.Counts()
	assert.Equal(t, 1, c["users"])
	assert.Equal(t, 1, c["accounts"])
	assert.Equal(t, 1, c["workspaces"])
}

func TestGoogleCallbackRejects(t *testing.T) {
	g := &fakeGoogle{profile: google.Profile{Sub: "g-1", Email: "ana@example.com"}}
	svc, conn := newGoogle(t, g)
	ctx := context.Background()

	url, nonce, err := svc.Begin()
	require.NoError(t, err)
	state := url[len("https://accounts.example/auth?state="):]

	_, err = svc.Callback(ctx, "code", state, "other-nonce")
	assert.ErrorIs(t, err, oauth.ErrInvalidState)

	_, err = svc.Callback(ctx, "code", "garbage", nonce)
	assert.ErrorIs(t, err, oauth.ErrInvalidState)

	g.exchangeErr = errors.New("bad code")
	_, err = svc.Callback(ctx, "code", state, nonce)
	assert.Error(t, err)

	assert.Equal(t, 0, conn.Counts()["users"])
}

func TestGoogleDisabled(t *testing.T) {
	svc, _ := newGoogle(t, nil)
	_, _, err := svc.Begin()
	assert.ErrorIs(t, err, services.ErrGoogleDisabled)
}
