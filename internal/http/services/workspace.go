package services

import (
	"context"
	"time"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/http/dto"
	httperrors "github.com/dropDatabas3/taskhub/internal/http/errors"
)

type UserService interface {
	Current(ctx context.Context, userID string) (*repository.User, error)
}

type userService struct{ users repository.UserRepository }

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Current retorna 401 si la sesión apunta a un usuario borrado.
func (s *userService) Current(ctx context.Context, userID string) (*repository.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if repository.IsNotFound(err) {
		return nil, httperrors.ErrUnauthorized.WithCause(err)
	}
	if err != nil {
		return nil, err
	}
	return u.WithoutPassword(), nil
}

type WorkspaceService interface {
	List(ctx context.Context, userID string) ([]repository.Workspace, error)
	Get(ctx context.Context, userID, workspaceID string) (*dto.WorkspaceDetail, error)
}

type workspaceService struct{ repos repository.Set }

func NewWorkspaceService(repos repository.Set) WorkspaceService {
	return &workspaceService{repos: repos}
}

func (s *workspaceService) List(ctx context.Context, userID string) ([]repository.Workspace, error) {
	members, err := s.repos.Members().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.WorkspaceID)
	}
	if len(ids) == 0 {
		return []repository.Workspace{}, nil
	}
	return s.repos.Workspaces().ListByIDs(ctx, ids)
}

// Get solo responde a miembros del workspace; a los demás les responde 404
// para no revelar su existencia.
func (s *workspaceService) Get(ctx context.Context, userID, workspaceID string) (*dto.WorkspaceDetail, error) {
	if _, err := s.repos.Members().Get(ctx, userID, workspaceID); err != nil {
		if repository.IsNotFound(err) {
			return nil, httperrors.ErrNotFound.WithMessage("Workspace not found")
		}
		return nil, err
	}
	ws, err := s.repos.Workspaces().GetByID(ctx, workspaceID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, httperrors.ErrNotFound.WithMessage("Workspace not found")
		}
		return nil, err
	}
	members, err := s.repos.Members().ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	roles := map[string]*repository.Role{}
	out := &dto.WorkspaceDetail{Workspace: *ws, Members: make([]dto.WorkspaceMember, 0, len(members))}
	for _, m := range members {
		u, err := s.repos.Users().GetByID(ctx, m.UserID)
		if repository.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		role, ok := roles[m.RoleID]
		if !ok {
			role, err = s.repos.Roles().GetByID(ctx, m.RoleID)
			if err != nil && !repository.IsNotFound(err) {
				return nil, err
			}
			roles[m.RoleID] = role
		}
		out.Members = append(out.Members, dto.WorkspaceMember{
			ID:       m.ID,
			User:     u.WithoutPassword(),
			Role:     role,
			JoinedAt: m.JoinedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
