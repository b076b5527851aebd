// Package dto define los cuerpos de request y response de la API.
package dto

import "github.com/dropDatabas3/taskhub/internal/domain/repository"

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	// La longitud la decide password.Policy en el service.
	Password string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	Message     string `json:"message"`
	UserID      string `json:"userId"`
	WorkspaceID string `json:"workspaceId"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// UserResponse envuelve al usuario sin hash de password.
type UserResponse struct {
	Message string           `json:"message"`
	User    *repository.User `json:"user"`
}
