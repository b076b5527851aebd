package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/taskhub/internal/security/password"
)

// User es la persona detrás de una o más IdentityAccount.
type User struct {
	ID               string     `json:"_id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	ProfilePicture   *string    `json:"profilePicture"`
	PasswordHash     *string    `json:"-"`
	CurrentWorkspace *string    `json:"currentWorkspace"`
	IsActive         bool       `json:"isActive"`
	LastLogin        *time.Time `json:"lastLogin"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// CheckPassword compara plain contra el secreto guardado. Usuarios sin
// password (solo OAuth) nunca verifican.
func (u *User) CheckPassword(plain string) bool {
	if u == nil || u.PasswordHash == nil || *u.PasswordHash == "" {
		return false
	}
	return password.Verify(plain, *u.PasswordHash)
}

// WithoutPassword retorna una copia sin el hash.
func (u User) WithoutPassword() *User {
	u.PasswordHash = nil
	return &u
}

// CreateUserInput contiene los datos para crear un usuario.
// Password llega en texto plano: el adapter lo hashea antes de persistir.
type CreateUserInput struct {
	Email          string
	Name           string
	ProfilePicture *string
	Password       *string
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// GetByEmail retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// Create inserta el usuario. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	// SetCurrentWorkspace actualiza la referencia al workspace activo.
	SetCurrentWorkspace(ctx context.Context, userID, workspaceID string) error

	// TouchLastLogin registra el último login exitoso.
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error

	// UpgradePassword rehashea plain con los parámetros del adapter cuando
	// current no los usa. Retorna true si reescribió el hash.
	UpgradePassword(ctx context.Context, userID, plain, current string) (bool, error)
}
