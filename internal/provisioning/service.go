// Package provisioning implementa el bootstrap identidad → workspace:
// login-or-create (OAuth), registro con email/password y verificación de
// credenciales.
//
// Los dos flujos de escritura corren dentro de un único store.WithinTx y
// crean, en este orden, User → Account → Workspace → Member(Owner) y luego
// fijan User.CurrentWorkspace. Si cualquier paso falla no queda ningún
// registro. La unicidad de email y (provider, providerId) la garantiza el
// store: el perdedor de una carrera recibe repository.ErrConflict.
package provisioning

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/store"
)

// Service expone los flujos de aprovisionamiento.
type Service interface {
	LoginOrCreate(ctx context.Context, in LoginOrCreateInput) (*LoginOrCreateResult, error)
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Verify(ctx context.Context, in VerifyInput) (*repository.User, error)
}

// Store es lo que los flujos necesitan de una store.AdapterConnection.
type Store interface {
	store.TxBeginner
	repository.Set
}

// Observer recibe métricas de los flujos. Ver internal/metrics.
type Observer interface {
	ObserveFlow(flow, outcome string, d time.Duration)
	CrossProviderReuse(provider string)
}

// Notifier se invoca después de un commit que creó un usuario nuevo.
// No debe bloquear: los errores quedan del lado del notifier.
type Notifier interface {
	UserProvisioned(ctx context.Context, user repository.User, workspace repository.Workspace)
}

// Deps dependencias del service.
type Deps struct {
	Store    Store
	Roles    RoleResolver
	Observer Observer
	Notifier Notifier

	// Now reloj para JoinedAt. Default time.Now (UTC).
	Now func() time.Time
}

type service struct {
	deps Deps
}

// NewService crea el service completando defaults.
func NewService(deps Deps) Service {
	if deps.Roles == nil {
		deps.Roles = OwnerByName{}
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{deps: deps}
}

// Nombres de flujo para logs y métricas.
const (
	FlowLoginOrCreate = "login_or_create"
	FlowRegister      = "register"
	FlowVerify        = "verify"
)

// Outcomes de ObserveFlow.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

func outcomeOf(err error) string {
	switch {
	case repository.IsConflict(err):
		return OutcomeConflict
	case KindOf(err) != 0:
		return OutcomeRejected
	}
	return OutcomeError
}

// DefaultWorkspaceName nombre del workspace creado en el aprovisionamiento.
const DefaultWorkspaceName = "My Workspace"

func defaultWorkspaceDescription(userName string) string {
	return "Workspace created for " + userName
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type nopObserver struct{}

func (nopObserver) ObserveFlow(string, string, time.Duration) {}
func (nopObserver) CrossProviderReuse(string)                 {}

type nopNotifier struct{}

func (nopNotifier) UserProvisioned(context.Context, repository.User, repository.Workspace) {}
