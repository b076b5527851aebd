// Package oauth contiene lo común a los proveedores OAuth: el parámetro
// state firmado que protege el callback contra CSRF.
package oauth

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	tokens "github.com/dropDatabas3/taskhub/internal/security/token"
)

var ErrInvalidState = errors.New("oauth: invalid state")

// StateSigner emite y valida el state como JWT HS256. El nonce viaja además
// en una cookie de corta duración y se compara en el callback.
type StateSigner struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

type stateClaims struct {
	Provider string `json:"prv"`
	Nonce    string `json:"nonce"`
	jwtv5.RegisteredClaims
}

func (s *StateSigner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue retorna (state, nonce).
func (s *StateSigner) Issue(provider string) (string, string, error) {
	if len(s.Secret) == 0 {
		return "", "", errors.New("oauth: state secret not configured")
	}
	nonce, err := tokens.GenerateOpaqueToken(16)
	if err != nil {
		return "", "", err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	now := s.now()
	claims := stateClaims{
		Provider: provider,
		Nonce:    nonce,
		RegisteredClaims: jwtv5.RegisteredClaims{
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", "", fmt.Errorf("oauth: sign state: %w", err)
	}
	return signed, nonce, nil
}

// Verify valida firma, expiración, proveedor y nonce.
func (s *StateSigner) Verify(state, provider, nonce string) error {
	var claims stateClaims
	_, err := jwtv5.ParseWithClaims(state, &claims,
		func(t *jwtv5.Token) (any, error) { return s.Secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if claims.Provider != provider || nonce == "" || claims.Nonce != nonce {
		return ErrInvalidState
	}
	return nil
}
