package repository

import (
	"context"
	"time"
)

// Workspace agrupa proyectos y miembros. OwnerID es el usuario que lo creó.
type Workspace struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner"`
	InviteCode  string    `json:"inviteCode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateWorkspaceInput struct {
	Name        string
	Description string
	OwnerID     string
}

type WorkspaceRepository interface {
	// Create genera el invite code.
	Create(ctx context.Context, in CreateWorkspaceInput) (*Workspace, error)

	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Workspace, error)

	// ListByIDs ignora ids inexistentes.
	ListByIDs(ctx context.Context, ids []string) ([]Workspace, error)
}
