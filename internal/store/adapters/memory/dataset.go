package memory

import (
	"fmt"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
)

type dataset struct {
	users      map[string]repository.User
	accounts   map[string]repository.Account
	workspaces map[string]repository.Workspace
	roles      map[string]repository.Role
	members    map[string]repository.Member
}

func newDataset() *dataset {
	return &dataset{
		users:      make(map[string]repository.User),
		accounts:   make(map[string]repository.Account),
		workspaces: make(map[string]repository.Workspace),
		roles:      make(map[string]repository.Role),
		members:    make(map[string]repository.Member),
	}
}

func (d *dataset) clone() *dataset {
	out := newDataset()
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.accounts {
		out.accounts[k] = v
	}
	for k, v := range d.workspaces {
		out.workspaces[k] = v
	}
	for k, v := range d.roles {
		v.Permissions = append([]string(nil), v.Permissions...)
		out.roles[k] = v
	}
	for k, v := range d.members {
		out.members[k] = v
	}
	return out
}

// ─── índices únicos ───

func (d *dataset) checkUser(u repository.User) error {
	for id, other := range d.users {
		if id != u.ID && other.Email == u.Email {
			return fmt.Errorf("memory: users.email %q: %w", u.Email, repository.ErrConflict)
		}
	}
	return nil
}

func (d *dataset) checkAccount(a repository.Account) error {
	for id, other := range d.accounts {
		if id != a.ID && other.Provider == a.Provider && other.ProviderID == a.ProviderID {
			return fmt.Errorf("memory: accounts(provider, provider_id) %s/%s: %w", a.Provider, a.ProviderID, repository.ErrConflict)
		}
	}
	return nil
}

func (d *dataset) checkRole(r repository.Role) error {
	for id, other := range d.roles {
		if id != r.ID && other.Name == r.Name {
			return fmt.Errorf("memory: roles.name %q: %w", r.Name, repository.ErrConflict)
		}
	}
	return nil
}

func (d *dataset) checkMember(m repository.Member) error {
	for id, other := range d.members {
		if id != m.ID && other.UserID == m.UserID && other.WorkspaceID == m.WorkspaceID {
			return fmt.Errorf("memory: members(user, workspace): %w", repository.ErrConflict)
		}
	}
	return nil
}

// dirtySet registra los ids escritos por una tx.
type dirtySet struct {
	users      map[string]struct{}
	accounts   map[string]struct{}
	workspaces map[string]struct{}
	roles      map[string]struct{}
	members    map[string]struct{}
}

func newDirtySet() *dirtySet {
	return &dirtySet{
		users:      map[string]struct{}{},
		accounts:   map[string]struct{}{},
		workspaces: map[string]struct{}{},
		roles:      map[string]struct{}{},
		members:    map[string]struct{}{},
	}
}
