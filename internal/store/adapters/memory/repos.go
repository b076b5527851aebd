package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	tokens "github.com/dropDatabas3/taskhub/internal/security/token"
)

// ─── UserRepository ───

type userRepo struct{ s *scope }

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, u := range d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	u, ok := d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	var hash *string
	if in.Password != nil {
		h, err := password.Hash(r.s.conn.params, *in.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := r.s.now()
	u := repository.User{
		ID:             uuid.NewString(),
		Email:          in.Email,
		Name:           in.Name,
		ProfilePicture: in.ProfilePicture,
		PasswordHash:   hash,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := d.checkUser(u); err != nil {
		return nil, err
	}
	d.users[u.ID] = u
	r.s.mark(func(ds *dirtySet) { ds.users[u.ID] = struct{}{} })
	return &u, nil
}

func (r *userRepo) SetCurrentWorkspace(ctx context.Context, userID, workspaceID string) error {
	return r.update(userID, func(u *repository.User) {
		u.CurrentWorkspace = &workspaceID
	})
}

func (r *userRepo) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.update(userID, func(u *repository.User) {
		u.LastLogin = &at
	})
}

func (r *userRepo) UpgradePassword(ctx context.Context, userID, plain, current string) (bool, error) {
	if !password.NeedsRehash(r.s.conn.params, current) {
		return false, nil
	}
	h, err := password.Hash(r.s.conn.params, plain)
	if err != nil {
		return false, err
	}
	if err := r.update(userID, func(u *repository.User) { u.PasswordHash = &h }); err != nil {
		return false, err
	}
	return true, nil
}

func (r *userRepo) update(id string, fn func(u *repository.User)) error {
	d, unlock, err := r.s.enter()
	if err != nil {
		return err
	}
	defer unlock()
	u, ok := d.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = r.s.now()
	d.users[id] = u
	r.s.mark(func(ds *dirtySet) { ds.users[id] = struct{}{} })
	return nil
}

// ─── AccountRepository ───

type accountRepo struct{ s *scope }

func (r *accountRepo) GetByProvider(ctx context.Context, provider, providerID string) (*repository.Account, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, a := range d.accounts {
		if a.Provider == provider && a.ProviderID == providerID {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountRepo) Create(ctx context.Context, in repository.CreateAccountInput) (*repository.Account, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	a := repository.Account{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		Provider:   in.Provider,
		ProviderID: in.ProviderID,
		CreatedAt:  r.s.now(),
	}
	if err := d.checkAccount(a); err != nil {
		return nil, err
	}
	d.accounts[a.ID] = a
	r.s.mark(func(ds *dirtySet) { ds.accounts[a.ID] = struct{}{} })
	return &a, nil
}

func (r *accountRepo) ListByUser(ctx context.Context, userID string) ([]repository.Account, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []repository.Account
	for _, a := range d.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ─── WorkspaceRepository ───

type workspaceRepo struct{ s *scope }

func (r *workspaceRepo) Create(ctx context.Context, in repository.CreateWorkspaceInput) (*repository.Workspace, error) {
	code, err := tokens.InviteCode(8)
	if err != nil {
		return nil, err
	}
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	now := r.s.now()
	w := repository.Workspace{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		InviteCode:  code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	d.workspaces[w.ID] = w
	r.s.mark(func(ds *dirtySet) { ds.workspaces[w.ID] = struct{}{} })
	return &w, nil
}

func (r *workspaceRepo) GetByID(ctx context.Context, id string) (*repository.Workspace, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	w, ok := d.workspaces[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *workspaceRepo) ListByIDs(ctx context.Context, ids []string) ([]repository.Workspace, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]repository.Workspace, 0, len(ids))
	for _, id := range ids {
		if w, ok := d.workspaces[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

// ─── RoleRepository ───

type roleRepo struct{ s *scope }

func (r *roleRepo) GetByName(ctx context.Context, name string) (*repository.Role, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, role := range d.roles {
		if role.Name == name {
			return &role, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *roleRepo) GetByID(ctx context.Context, id string) (*repository.Role, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	role, ok := d.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &role, nil
}

func (r *roleRepo) List(ctx context.Context) ([]repository.Role, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]repository.Role, 0, len(d.roles))
	for _, role := range d.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *roleRepo) Upsert(ctx context.Context, name string, permissions []string) (*repository.Role, repository.UpsertOutcome, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, "", err
	}
	defer unlock()

	perms := append([]string(nil), permissions...)
	now := r.s.now()
	for id, role := range d.roles {
		if role.Name != name {
			continue
		}
		if sameSet(role.Permissions, perms) {
			return &role, repository.UpsertUnchanged, nil
		}
		role.Permissions = perms
		role.UpdatedAt = now
		d.roles[id] = role
		r.s.mark(func(ds *dirtySet) { ds.roles[id] = struct{}{} })
		return &role, repository.UpsertUpdated, nil
	}

	role := repository.Role{
		ID:          uuid.NewString(),
		Name:        name,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	d.roles[role.ID] = role
	r.s.mark(func(ds *dirtySet) { ds.roles[role.ID] = struct{}{} })
	return &role, repository.UpsertCreated, nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

// ─── MemberRepository ───

type memberRepo struct{ s *scope }

func (r *memberRepo) Create(ctx context.Context, in repository.CreateMemberInput) (*repository.Member, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	m := repository.Member{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		WorkspaceID: in.WorkspaceID,
		RoleID:      in.RoleID,
		JoinedAt:    in.JoinedAt,
	}
	if err := d.checkMember(m); err != nil {
		return nil, err
	}
	d.members[m.ID] = m
	r.s.mark(func(ds *dirtySet) { ds.members[m.ID] = struct{}{} })
	return &m, nil
}

func (r *memberRepo) Get(ctx context.Context, userID, workspaceID string) (*repository.Member, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, m := range d.members {
		if m.UserID == userID && m.WorkspaceID == workspaceID {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memberRepo) ListByUser(ctx context.Context, userID string) ([]repository.Member, error) {
	return r.list(func(m repository.Member) bool { return m.UserID == userID })
}

func (r *memberRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]repository.Member, error) {
	return r.list(func(m repository.Member) bool { return m.WorkspaceID == workspaceID })
}

func (r *memberRepo) list(match func(repository.Member) bool) ([]repository.Member, error) {
	d, unlock, err := r.s.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []repository.Member
	for _, m := range d.members {
		if match(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}
