package provisioning

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/domain/types"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/store"
)

// LoginOrCreateInput identidad afirmada por un proveedor externo.
type LoginOrCreateInput struct {
	Provider    string
	ProviderID  string
	DisplayName string
	Email       string
	Picture     *string
}

// LoginOrCreateResult usuario resuelto. Workspace solo se completa cuando
// Created es true.
type LoginOrCreateResult struct {
	User      *repository.User
	Workspace *repository.Workspace
	Created   bool
}

// LoginOrCreate busca al usuario por email y, si no existe, crea el grafo
// completo User → Account → Workspace → Member(Owner) en una transacción.
// Un usuario existente se devuelve sin escrituras, aunque llegue por otro
// proveedor.
func (s *service) LoginOrCreate(ctx context.Context, in LoginOrCreateInput) (*LoginOrCreateResult, error) {
	start := time.Now()
	provider := types.ParseProvider(in.Provider).String()
	email := normalizeEmail(in.Email)

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("provisioning"),
		logger.Op("LoginOrCreate"),
		logger.Provider(provider),
		logger.Email(email),
	)

	if email == "" {
		log.Warn("provider identity without email")
		s.deps.Observer.ObserveFlow(FlowLoginOrCreate, OutcomeRejected, time.Since(start))
		return nil, ErrEmailRequired
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = email[:strings.IndexByte(email+"@", '@')]
	}

	var res *LoginOrCreateResult
	err := store.WithinTx(ctx, s.deps.Store, func(repos repository.Set) error {
		log.Info("provisioning transaction started")

		existing, err := repos.Users().GetByEmail(ctx, email)
		switch {
		case err == nil:
			log.Info("user found, skipping creation", logger.UserID(existing.ID))
			s.flagCrossProvider(ctx, repos, existing, provider, in.ProviderID, log)
			res = &LoginOrCreateResult{User: existing}
			return nil
		case !repository.IsNotFound(err):
			log.Error("user lookup failed", logger.Err(err))
			return err
		}

		log.Info("no user found, creating new user")
		g := &graph{}
		steps := append([]step{
			createUser(repository.CreateUserInput{
				Email:          email,
				Name:           name,
				ProfilePicture: in.Picture,
			}),
			createAccount(provider, in.ProviderID),
		}, s.workspaceSteps()...)

		if err := run(ctx, repos, g, log, steps...); err != nil {
			return err
		}
		res = &LoginOrCreateResult{User: g.user, Workspace: g.workspace, Created: true}
		return nil
	})
	if err != nil {
		log.Error("login or create failed", logger.Err(err))
		s.deps.Observer.ObserveFlow(FlowLoginOrCreate, outcomeOf(err), time.Since(start))
		return nil, err
	}

	if res.Created {
		log.Info("transaction committed", logger.UserID(res.User.ID), logger.WorkspaceID(res.Workspace.ID))
		s.deps.Observer.ObserveFlow(FlowLoginOrCreate, OutcomeCreated, time.Since(start))
		s.deps.Notifier.UserProvisioned(ctx, *res.User.WithoutPassword(), *res.Workspace)
	} else {
		s.deps.Observer.ObserveFlow(FlowLoginOrCreate, OutcomeExisting, time.Since(start))
	}
	res.User = res.User.WithoutPassword()
	return res, nil
}

// flagCrossProvider emite un WARN cuando un usuario existente entra por un
// (provider, providerId) que no tiene vinculado. Solo lectura.
func (s *service) flagCrossProvider(ctx context.Context, repos repository.Set, u *repository.User, provider, providerID string, log *zap.Logger) {
	acc, err := repos.Accounts().GetByProvider(ctx, provider, providerID)
	switch {
	case err == nil && acc.UserID == u.ID:
		return
	case err != nil && !repository.IsNotFound(err):
		log.Warn("cross provider check failed", logger.Err(err))
		return
	}
	log.Warn("existing user reused by email from an unlinked provider identity",
		logger.UserID(u.ID),
		logger.ProviderID(providerID),
	)
	s.deps.Observer.CrossProviderReuse(provider)
}
