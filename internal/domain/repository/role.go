package repository

import (
	"context"
	"time"
)

// Role es un conjunto nombrado de permisos.
type Role struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UpsertOutcome describe el efecto de RoleRepository.Upsert.
type UpsertOutcome string

const (
	UpsertCreated   UpsertOutcome = "created"
	UpsertUpdated   UpsertOutcome = "updated"
	UpsertUnchanged UpsertOutcome = "unchanged"
)

type RoleRepository interface {
	// GetByName retorna ErrNotFound si no existe.
	GetByName(ctx context.Context, name string) (*Role, error)

	GetByID(ctx context.Context, id string) (*Role, error)

	List(ctx context.Context) ([]Role, error)

	// Upsert crea el rol o reemplaza sus permisos. Solo lo usa el seeding.
	Upsert(ctx context.Context, name string, permissions []string) (*Role, UpsertOutcome, error)
}
