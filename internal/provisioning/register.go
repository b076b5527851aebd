package provisioning

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/domain/types"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/store"
)

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

type RegisterResult struct {
	UserID      string `json:"userId"`
	WorkspaceID string `json:"workspaceId"`
}

// Register crea un usuario con email y password junto con su workspace por
// defecto. Un email ya registrado es un error del cliente (ErrEmailExists),
// no un login.
func (s *service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	start := time.Now()
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("provisioning"),
		logger.Op("Register"),
		logger.Email(email),
	)

	if email == "" || name == "" || in.Password == "" {
		s.deps.Observer.ObserveFlow(FlowRegister, OutcomeRejected, time.Since(start))
		return nil, ErrMissingFields
	}

	g := &graph{}
	err := store.WithinTx(ctx, s.deps.Store, func(repos repository.Set) error {
		log.Info("provisioning transaction started")

		_, err := repos.Users().GetByEmail(ctx, email)
		switch {
		case err == nil:
			log.Warn("email already registered")
			return ErrEmailExists
		case !repository.IsNotFound(err):
			return err
		}

		pw := in.Password
		steps := append([]step{
			createUser(repository.CreateUserInput{Email: email, Name: name, Password: &pw}),
			createAccount(types.ProviderEmail.String(), email),
		}, s.workspaceSteps()...)
		return run(ctx, repos, g, log, steps...)
	})
	if err != nil {
		log.Error("registration failed", logger.Err(err))
		s.deps.Observer.ObserveFlow(FlowRegister, outcomeOf(err), time.Since(start))
		return nil, err
	}

	log.Info("transaction committed", logger.UserID(g.user.ID), logger.WorkspaceID(g.workspace.ID))
	s.deps.Observer.ObserveFlow(FlowRegister, OutcomeCreated, time.Since(start))
	s.deps.Notifier.UserProvisioned(ctx, *g.user.WithoutPassword(), *g.workspace)

	return &RegisterResult{UserID: g.user.ID, WorkspaceID: g.workspace.ID}, nil
}
