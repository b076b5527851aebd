package dto

import "github.com/dropDatabas3/taskhub/internal/domain/repository"

type WorkspaceListResponse struct {
	Message    string                 `json:"message"`
	Workspaces []repository.Workspace `json:"workspaces"`
}

// WorkspaceMember es un Member con el usuario y el rol expandidos.
type WorkspaceMember struct {
	ID       string           `json:"_id"`
	User     *repository.User `json:"userId"`
	Role     *repository.Role `json:"role"`
	JoinedAt string           `json:"joinedAt"`
}

type WorkspaceDetail struct {
	repository.Workspace
	Members []WorkspaceMember `json:"members"`
}

type WorkspaceResponse struct {
	Message   string          `json:"message"`
	Workspace WorkspaceDetail `json:"workspace"`
}
