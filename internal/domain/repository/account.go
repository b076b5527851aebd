package repository

import (
	"context"
	"time"
)

// Account vincula un User con un par (provider, provider_id).
type Account struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"userId"`
	Provider   string    `json:"provider"`
	ProviderID string    `json:"providerId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateAccountInput struct {
	UserID     string
	Provider   string
	ProviderID string
}

// AccountRepository define operaciones sobre identity accounts.
type AccountRepository interface {
	// GetByProvider retorna ErrNotFound si no existe.
	GetByProvider(ctx context.Context, provider, providerID string) (*Account, error)

	// Create retorna ErrConflict si (provider, provider_id) ya existe.
	Create(ctx context.Context, in CreateAccountInput) (*Account, error)

	ListByUser(ctx context.Context, userID string) ([]Account, error)
}
