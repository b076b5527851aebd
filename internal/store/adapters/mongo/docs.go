package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
)

type userDoc struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty"`
	Email            string              `bson:"email"`
	Name             string              `bson:"name"`
	ProfilePicture   *string             `bson:"profilePicture"`
	Password         *string             `bson:"password,omitempty"`
	CurrentWorkspace *primitive.ObjectID `bson:"currentWorkspace"`
	IsActive         bool                `bson:"isActive"`
	LastLogin        *time.Time          `bson:"lastLogin"`
	CreatedAt        time.Time           `bson:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt"`
}

func (d userDoc) toDomain() *repository.User {
	u := &repository.User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		Name:           d.Name,
		ProfilePicture: d.ProfilePicture,
		PasswordHash:   d.Password,
		IsActive:       d.IsActive,
		LastLogin:      d.LastLogin,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.CurrentWorkspace != nil && !d.CurrentWorkspace.IsZero() {
		ws := d.CurrentWorkspace.Hex()
		u.CurrentWorkspace = &ws
	}
	return u
}

type accountDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     primitive.ObjectID `bson:"userId"`
	Provider   string             `bson:"provider"`
	ProviderID string             `bson:"providerId"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d accountDoc) toDomain() *repository.Account {
	return &repository.Account{
		ID:         d.ID.Hex(),
		UserID:     d.UserID.Hex(),
		Provider:   d.Provider,
		ProviderID: d.ProviderID,
		CreatedAt:  d.CreatedAt,
	}
}

type workspaceDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Owner       primitive.ObjectID `bson:"owner"`
	InviteCode  string             `bson:"inviteCode"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d workspaceDoc) toDomain() *repository.Workspace {
	return &repository.Workspace{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		OwnerID:     d.Owner.Hex(),
		InviteCode:  d.InviteCode,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type roleDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Permissions []string           `bson:"permissions"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d roleDoc) toDomain() *repository.Role {
	return &repository.Role{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Permissions: d.Permissions,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type memberDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId"`
	WorkspaceID primitive.ObjectID `bson:"workspaceId"`
	Role        primitive.ObjectID `bson:"role"`
	JoinedAt    time.Time          `bson:"joinedAt"`
}

func (d memberDoc) toDomain() *repository.Member {
	return &repository.Member{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		WorkspaceID: d.WorkspaceID.Hex(),
		RoleID:      d.Role.Hex(),
		JoinedAt:    d.JoinedAt,
	}
}
