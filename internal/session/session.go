// Package session guarda sesiones de navegador en el cache (memory o redis).
// El cliente recibe un token opaco en la cookie; el cache solo guarda su
// hash SHA-256, nunca el token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/taskhub/internal/cache"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	tokens "github.com/dropDatabas3/taskhub/internal/security/token"
)

const keyPrefix = "sid:"

// lookupTimeout acota la consulta compartida de Resolve.
const lookupTimeout = 3 * time.Second

var ErrNoSession = errors.New("session: not found or expired")

// Session es el payload guardado por token.
type Session struct {
	UserID    string    `json:"userId"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Store struct {
	cache cache.Client
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group
}

func NewStore(c cache.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{cache: c, ttl: ttl, now: time.Now}
}

func key(token string) string { return keyPrefix + tokens.SHA256Base64URL(token) }

// Create emite un token nuevo para userID.
func (s *Store) Create(ctx context.Context, userID, provider string) (string, *Session, error) {
	token, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return "", nil, fmt.Errorf("session: generate token: %w", err)
	}
	now := s.now().UTC()
	sess := &Session{UserID: userID, Provider: provider, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}

	b, err := json.Marshal(sess)
	if err != nil {
		return "", nil, err
	}
	if err := s.cache.Set(ctx, key(token), string(b), s.ttl); err != nil {
		return "", nil, fmt.Errorf("session: store: %w", err)
	}
	logger.From(ctx).Debug("session created", logger.UserID(userID), logger.Provider(provider))
	return token, sess, nil
}

// Resolve carga la sesión de token. Lecturas concurrentes del mismo token
// comparten una sola consulta al cache; la consulta compartida no hereda la
// cancelación de ningún request y cada caller deja de esperar con su ctx.
func (s *Store) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	k := key(token)
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(k, func() (any, error) {
		lctx, cancel := context.WithTimeout(shared, lookupTimeout)
		defer cancel()
		raw, err := s.cache.Get(lctx, k)
		if cache.IsNotFound(err) {
			return nil, ErrNoSession
		}
		if err != nil {
			return nil, fmt.Errorf("session: load: %w", err)
		}
		var sess Session
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			return nil, fmt.Errorf("session: decode: %w", err)
		}
		return &sess, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	sess := *res.Val.(*Session)
	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Destroy es best-effort: un token desconocido no es error.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.cache.Delete(ctx, key(token))
}

func (s *Store) TTL() time.Duration { return s.ttl }

// CookieConfig parámetros de la cookie de sesión.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
}

func (c CookieConfig) sameSite() http.SameSite {
	switch c.SameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return "session"
	}
	return c.Name
}

// Issue construye la cookie que transporta token.
func (c CookieConfig) Issue(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	}
}

// Clear construye una cookie expirada.
func (c CookieConfig) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	}
}

// Token lee el token de la cookie del request.
func (c CookieConfig) Token(r *http.Request) string {
	ck, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return ck.Value
}
