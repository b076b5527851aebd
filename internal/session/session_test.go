package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/taskhub/internal/cache"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory("", time.Minute)
	s := NewStore(c, time.Hour)

	token, sess, err := s.Create(ctx, "u1", "EMAIL")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "u1", sess.UserID)

	// el token en claro nunca llega al cache
	_, err = c.Get(ctx, "sid:"+token)
	assert.True(t, cache.IsNotFound(err))

	got, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "EMAIL", got.Provider)

	require.NoError(t, s.Destroy(ctx, token))
	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResolveRejectsExpired(t *testing.T) {
	ctx := context.Background()
	s := NewStore(cache.NewMemory("", time.Minute), time.Hour)
	token, _, err := s.Create(ctx, "u1", "GOOGLE")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResolveEmptyToken(t *testing.T) {
	s := NewStore(cache.NewMemory("", time.Minute), 0)
	_, err := s.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 24*time.Hour, s.TTL())
}

// gatedCache retiene el primer Get hasta release y respeta el ctx recibido,
// como lo hace go-redis.
type gatedCache struct {
	cache.Client
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedCache) Get(ctx context.Context, key string) (string, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.Client.Get(ctx, key)
}

func TestResolveSurvivesCancelledLeader(t *testing.T) {
	gate := &gatedCache{
		Client:  cache.NewMemory("", time.Minute),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewStore(gate, time.Hour)
	token, _, err := s.Create(context.Background(), "u1", "EMAIL")
	require.NoError(t, err)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := s.Resolve(leaderCtx, token)
		leaderErr <- err
	}()
	<-gate.entered

	type result struct {
		sess *Session
		err  error
	}
	follower := make(chan result, 1)
	go func() {
		sess, err := s.Resolve(context.Background(), token)
		follower <- result{sess, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)
	close(gate.release)

	got := <-follower
	require.NoError(t, got.err)
	assert.Equal(t, "u1", got.sess.UserID)
}

func TestCookieConfig(t *testing.T) {
	cfg := CookieConfig{SameSite: "None", Secure: true}

	ck := cfg.Issue("tok", time.Hour)
	assert.Equal(t, "session", ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
	assert.Equal(t, 3600, ck.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	assert.Equal(t, "tok", cfg.Token(req))

	cleared := cfg.Clear()
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}
