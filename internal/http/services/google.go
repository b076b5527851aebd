package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/taskhub/internal/audit"
	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/domain/types"
	"github.com/dropDatabas3/taskhub/internal/oauth/google"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
)

// GoogleProvider es el cliente OAuth2 de Google.
type GoogleProvider interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*google.TokenResponse, error)
	UserInfo(ctx context.Context, accessToken string) (*google.Profile, error)
}

// StateIssuer firma y valida el parámetro state.
type StateIssuer interface {
	Issue(provider string) (state, nonce string, err error)
	Verify(state, provider, nonce string) error
}

var ErrGoogleDisabled = errors.New("google login is not configured")

// GoogleCallbackResult es el resultado de un callback exitoso.
type GoogleCallbackResult struct {
	LoginResult
	Workspace *repository.Workspace
	Created   bool
}

type GoogleService interface {
	// Begin retorna la URL de consentimiento y el nonce a guardar en cookie.
	Begin() (authURL, nonce string, err error)
	Callback(ctx context.Context, code, state, nonce string) (*GoogleCallbackResult, error)
}

type googleService struct {
	client   GoogleProvider
	states   StateIssuer
	prov     provisioning.Service
	users    repository.UserRepository
	sessions SessionStore
	now      func() time.Time
}

// NewGoogleService acepta client nil: todos los métodos retornan ErrGoogleDisabled.
func NewGoogleService(client GoogleProvider, states StateIssuer, prov provisioning.Service, users repository.UserRepository, sessions SessionStore) GoogleService {
	return &googleService{client: client, states: states, prov: prov, users: users, sessions: sessions, now: time.Now}
}

func (s *googleService) Begin() (string, string, error) {
	if s.client == nil {
		return "", "", ErrGoogleDisabled
	}
	state, nonce, err := s.states.Issue(types.ProviderGoogle.String())
	if err != nil {
		return "", "", err
	}
	return s.client.AuthURL(state), nonce, nil
}

func (s *googleService) Callback(ctx context.Context, code, state, nonce string) (*GoogleCallbackResult, error) {
	if s.client == nil {
		return nil, ErrGoogleDisabled
	}
	if err := s.states.Verify(state, types.ProviderGoogle.String(), nonce); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, errors.New("google callback without code")
	}

	tok, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	profile, err := s.client.UserInfo(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}
	if !profile.EmailVerified {
		logger.From(ctx).Warn("google profile email not verified", logger.Email(profile.Email))
	}

	var picture *string
	if profile.Picture != "" {
		picture = &profile.Picture
	}
	res, err := s.prov.LoginOrCreate(ctx, provisioning.LoginOrCreateInput{
		Provider:    types.ProviderGoogle.String(),
		ProviderID:  profile.Sub,
		DisplayName: profile.Name,
		Email:       profile.Email,
		Picture:     picture,
	})
	if err != nil {
		return nil, fmt.Errorf("google login: %w", err)
	}

	login, err := openSession(ctx, s.users, s.sessions, res.User, types.ProviderGoogle.String(), s.now())
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.EventOAuthLogin,
		logger.UserID(res.User.ID),
		logger.Provider(types.ProviderGoogle.String()),
		logger.Bool("created", res.Created),
	)
	return &GoogleCallbackResult{LoginResult: *login, Workspace: res.Workspace, Created: res.Created}, nil
}
