// Package services contiene la lógica de los endpoints HTTP. Los controllers
// solo traducen request/response; todo acceso al store pasa por aquí.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/taskhub/internal/audit"
	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/domain/types"
	httperrors "github.com/dropDatabas3/taskhub/internal/http/errors"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	"github.com/dropDatabas3/taskhub/internal/session"
)

// SessionStore es el subconjunto de session.Store que usan los servicios.
type SessionStore interface {
	Create(ctx context.Context, userID, provider string) (string, *session.Session, error)
	Destroy(ctx context.Context, token string) error
	TTL() time.Duration
}

// LoginResult agrupa el usuario autenticado y el token de sesión emitido.
type LoginResult struct {
	User  *repository.User
	Token string
	TTL   time.Duration
}

type AuthService interface {
	Register(ctx context.Context, in provisioning.RegisterInput) (*provisioning.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	prov     provisioning.Service
	users    repository.UserRepository
	sessions SessionStore
	policy   password.Policy
	now      func() time.Time
}

func NewAuthService(prov provisioning.Service, users repository.UserRepository, sessions SessionStore, policy password.Policy) AuthService {
	return &authService{prov: prov, users: users, sessions: sessions, policy: policy, now: time.Now}
}

// Register aplica la política de password antes de aprovisionar.
func (s *authService) Register(ctx context.Context, in provisioning.RegisterInput) (*provisioning.RegisterResult, error) {
	if in.Password != "" {
		if ok, reasons := s.policy.Validate(in.Password); !ok {
			return nil, httperrors.ErrValidation.WithDetail("password: " + strings.Join(reasons, ", "))
		}
	}
	res, err := s.prov.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.EventRegister, logger.UserID(res.UserID), logger.WorkspaceID(res.WorkspaceID))
	return res, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.prov.Verify(ctx, provisioning.VerifyInput{
		Email:    email,
		Password: password,
		Provider: types.ProviderEmail.String(),
	})
	if err != nil {
		audit.Log(ctx, audit.EventLoginFailure, logger.Email(email), logger.Provider(types.ProviderEmail.String()))
		return nil, err
	}
	res, err := openSession(ctx, s.users, s.sessions, u, types.ProviderEmail.String(), s.now())
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.EventLoginSuccess, logger.UserID(u.ID), logger.Provider(types.ProviderEmail.String()))
	return res, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	audit.Log(ctx, audit.EventLogout)
	return s.sessions.Destroy(ctx, token)
}

// openSession emite el token y registra el login. Un fallo al tocar
// LastLogin no invalida la sesión.
func openSession(ctx context.Context, users repository.UserRepository, sessions SessionStore, u *repository.User, provider string, now time.Time) (*LoginResult, error) {
	token, _, err := sessions.Create(ctx, u.ID, provider)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	at := now.UTC()
	if err := users.TouchLastLogin(ctx, u.ID, at); err != nil && !errors.Is(err, repository.ErrNotFound) {
		logger.From(ctx).Warn("failed to record last login", logger.UserID(u.ID), logger.Err(err))
	} else if err == nil {
		u.LastLogin = &at
	}
	return &LoginResult{User: u, Token: token, TTL: sessions.TTL()}, nil
}
