package provisioning

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
)

// graph acumula lo creado por los pasos de una misma transacción.
type graph struct {
	user      *repository.User
	account   *repository.Account
	workspace *repository.Workspace
	role      *repository.Role
	member    *repository.Member
}

type step struct {
	name string
	run  func(ctx context.Context, repos repository.Set, g *graph, log *zap.Logger) error
}

// run ejecuta los pasos en orden y corta en el primer error, que se
// devuelve sin envolver.
func run(ctx context.Context, repos repository.Set, g *graph, log *zap.Logger, steps ...step) error {
	for _, s := range steps {
		if err := s.run(ctx, repos, g, log); err != nil {
			log.Error("provisioning step failed", logger.String("step", s.name), logger.Err(err))
			return err
		}
	}
	return nil
}

func createUser(in repository.CreateUserInput) step {
	return step{name: "create_user", run: func(ctx context.Context, repos repository.Set, g *graph, log *zap.Logger) error {
		u, err := repos.Users().Create(ctx, in)
		if err != nil {
			return err
		}
		g.user = u
		log.Info("user created", logger.UserID(u.ID))
		return nil
	}}
}

func createAccount(provider, providerID string) step {
	return step{name: "create_account", run: func(ctx context.Context, repos repository.Set, g *graph, log *zap.Logger) error {
		a, err := repos.Accounts().Create(ctx, repository.CreateAccountInput{
			UserID:     g.user.ID,
			Provider:   provider,
			ProviderID: providerID,
		})
		if err != nil {
			return err
		}
		g.account = a
		log.Info("account created", logger.UserID(g.user.ID), logger.AccountID(a.ID), logger.Provider(provider))
		return nil
	}}
}

// workspaceSteps son los pasos compartidos por ambos flujos una vez que
// existen User y Account.
func (s *service) workspaceSteps() []step {
	return []step{
		{name: "create_workspace", run: func(ctx context.Context, repos repository.Set, g *graph, log *zap.Logger) error {
			ws, err := repos.Workspaces().Create(ctx, repository.CreateWorkspaceInput{
				Name:        DefaultWorkspaceName,
				Description: defaultWorkspaceDescription(g.user.Name),
				OwnerID:     g.user.ID,
			})
			if err != nil {
				return err
			}
			g.workspace = ws
			log.Info("workspace created", logger.WorkspaceID(ws.ID), logger.String("owner_id", g.user.ID))
			return nil
		}},
		{name: "resolve_owner_role", run: func(ctx context.Context, repos repository.Set, g *graph, log *zap.Logger) error {
			role, err := s.deps.Roles.Owner(ctx, repos.Roles())
			if err != nil {
				return err
			}
			g.role = role
			return nil
		}},
		{name: "create_member", run: func(ctx context.Context, repos repository.Set, g *graph, log *zap.Logger) error {
			m, err := repos.Members().Create(ctx, repository.CreateMemberInput{
				UserID:      g.user.ID,
				WorkspaceID: g.workspace.ID,
				RoleID:      g.role.ID,
				JoinedAt:    s.deps.Now(),
			})
			if err != nil {
				return err
			}
			g.member = m
			log.Info("member created with owner role", logger.UserID(g.user.ID), logger.WorkspaceID(g.workspace.ID), logger.RoleID(g.role.ID))
			return nil
		}},
		{name: "set_current_workspace", run: func(ctx context.Context, repos repository.Set, g *graph, log *zap.Logger) error {
			if err := repos.Users().SetCurrentWorkspace(ctx, g.user.ID, g.workspace.ID); err != nil {
				return err
			}
			wsID := g.workspace.ID
			g.user.CurrentWorkspace = &wsID
			log.Info("current workspace set", logger.UserID(g.user.ID), logger.WorkspaceID(wsID))
			return nil
		}},
	}
}
