package repository

import (
	"context"
	"time"
)

// Member asocia (User, Workspace, Role).
type Member struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	WorkspaceID string    `json:"workspaceId"`
	RoleID      string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type CreateMemberInput struct {
	UserID      string
	WorkspaceID string
	RoleID      string
	JoinedAt    time.Time
}

type MemberRepository interface {
	// Create retorna ErrConflict si el usuario ya es miembro del workspace.
	Create(ctx context.Context, in CreateMemberInput) (*Member, error)

	// Get retorna ErrNotFound si el usuario no es miembro.
	Get(ctx context.Context, userID, workspaceID string) (*Member, error)

	ListByUser(ctx context.Context, userID string) ([]Member, error)

	ListByWorkspace(ctx context.Context, workspaceID string) ([]Member, error)
}
