package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/taskhub/internal/rate"
	"github.com/dropDatabas3/taskhub/internal/session"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "h"}, order)
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), WithRecover())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { seen = GetRequestID(r.Context()) }), WithRequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "abc", seen)
}

type stubLimiter struct {
	res rate.Result
	err error
	key string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (rate.Result, error) {
	s.key = key
	return s.res, s.err
}

type rejects struct{ scopes []string }

func (r *rejects) RateRejected(scope string) { r.scopes = append(r.scopes, scope) }

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("rejected", func(t *testing.T) {
		l := &stubLimiter{res: rate.Result{Allowed: false, RetryAfter: 30 * time.Second}}
		obs := &rejects{}
		h := Chain(ok, WithRateLimit(RateLimitConfig{Limiter: l, Scope: "auth", Observer: obs}))
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "30", rec.Header().Get("Retry-After"))
		assert.Equal(t, "auth|192.0.2.1", l.key)
		assert.Equal(t, []string{"auth"}, obs.scopes)
	})

	t.Run("allowed exposes quota", func(t *testing.T) {
		l := &stubLimiter{res: rate.Result{Allowed: true, Limit: 10, Remaining: 7}}
		h := Chain(ok, WithRateLimit(RateLimitConfig{Limiter: l}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "7", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("limiter error lets request through", func(t *testing.T) {
		h := Chain(ok, WithRateLimit(RateLimitConfig{Limiter: &stubLimiter{err: errors.New("redis down")}}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("whitelist", func(t *testing.T) {
		l := &stubLimiter{res: rate.Result{Allowed: false}}
		h := Chain(ok, WithRateLimit(RateLimitConfig{Limiter: l, Whitelist: []string{"/api/health"}}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, l.key)
	})
}

type stubSessions map[string]*session.Session

func (s stubSessions) Resolve(_ context.Context, token string) (*session.Session, error) {
	if sess, ok := s[token]; ok {
		return sess, nil
	}
	return nil, session.ErrNoSession
}

func TestRequireSession(t *testing.T) {
	var userID string
	h := Chain(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		userID = GetUserID(r.Context())
	}), RequireSession(stubSessions{"good": {UserID: "u-1"}}, session.CookieConfig{}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "good"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", userID)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "bad"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
