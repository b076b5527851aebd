package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/taskhub/internal/http/dto"
	"github.com/dropDatabas3/taskhub/internal/http/errors"
	"github.com/dropDatabas3/taskhub/internal/http/helpers"
	"github.com/dropDatabas3/taskhub/internal/http/services"
)

type UserController struct{ service services.UserService }

func NewUserController(service services.UserService) *UserController {
	return &UserController{service: service}
}

// Current GET /user/current
func (c *UserController) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	u, err := c.service.Current(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "current_user", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.UserResponse{Message: "User fetch successfully", User: u})
}

type WorkspaceController struct{ service services.WorkspaceService }

func NewWorkspaceController(service services.WorkspaceService) *WorkspaceController {
	return &WorkspaceController{service: service}
}

// List GET /workspace/all
func (c *WorkspaceController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	list, err := c.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "list_workspaces", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.WorkspaceListResponse{Message: "Workspaces fetched successfully", Workspaces: list})
}

// Get GET /workspace/{workspaceId}
func (c *WorkspaceController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	wsID := chi.URLParam(r, "workspaceId")
	if wsID == "" {
		errors.WriteError(w, errors.ErrInvalidParameter.WithDetail("workspaceId is required"))
		return
	}
	ws, err := c.service.Get(r.Context(), userID, wsID)
	if err != nil {
		writeServiceError(w, r, "get_workspace", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.WorkspaceResponse{Message: "Workspace fetched successfully", Workspace: *ws})
}
