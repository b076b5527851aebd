package pg

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	tokens "github.com/dropDatabas3/taskhub/internal/security/token"
)

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ─── UserRepository ───

const userColumns = `id::text, email, name, profile_picture, password_hash, current_workspace::text,
	is_active, last_login, created_at, updated_at`

type userRepo struct {
	q      querier
	params password.Params
}

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.ProfilePicture, &u.PasswordHash, &u.CurrentWorkspace,
		&u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	return u, mapErr("get user by email", err)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr("get user by id", err)
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	var hash *string
	if in.Password != nil {
		h, err := password.Hash(r.params, *in.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}
	const query = `
		INSERT INTO users (id, email, name, profile_picture, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		RETURNING ` + userColumns
	u, err := scanUser(r.q.QueryRow(ctx, query, uuid.NewString(), in.Email, in.Name, in.ProfilePicture, hash))
	return u, mapErr("insert user", err)
}

func (r *userRepo) SetCurrentWorkspace(ctx context.Context, userID, workspaceID string) error {
	if !validID(userID) || !validID(workspaceID) {
		return repository.ErrInvalidInput
	}
	return r.exec(ctx, "set current workspace",
		`UPDATE users SET current_workspace = $2, updated_at = NOW() WHERE id = $1`, userID, workspaceID)
}

func (r *userRepo) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	if !validID(userID) {
		return repository.ErrNotFound
	}
	return r.exec(ctx, "touch last login",
		`UPDATE users SET last_login = $2, updated_at = NOW() WHERE id = $1`, userID, at)
}

func (r *userRepo) UpgradePassword(ctx context.Context, userID, plain, current string) (bool, error) {
	if !validID(userID) {
		return false, repository.ErrNotFound
	}
	if !password.NeedsRehash(r.params, current) {
		return false, nil
	}
	h, err := password.Hash(r.params, plain)
	if err != nil {
		return false, err
	}
	err = r.exec(ctx, "upgrade password",
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, h)
	return err == nil, err
}

func (r *userRepo) exec(ctx context.Context, op, sql string, args ...any) error {
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ─── AccountRepository ───

const accountColumns = `id::text, user_id::text, provider, provider_id, created_at`

type accountRepo struct{ q querier }

func scanAccount(row pgx.Row) (*repository.Account, error) {
	var a repository.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Provider, &a.ProviderID, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) GetByProvider(ctx context.Context, provider, providerID string) (*repository.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE provider = $1 AND provider_id = $2`, provider, providerID))
	return a, mapErr("get account", err)
}

func (r *accountRepo) Create(ctx context.Context, in repository.CreateAccountInput) (*repository.Account, error) {
	if !validID(in.UserID) {
		return nil, repository.ErrInvalidInput
	}
	const query = `
		INSERT INTO accounts (id, user_id, provider, provider_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + accountColumns
	a, err := scanAccount(r.q.QueryRow(ctx, query, uuid.NewString(), in.UserID, in.Provider, in.ProviderID))
	return a, mapErr("insert account", err)
}

func (r *accountRepo) ListByUser(ctx context.Context, userID string) ([]repository.Account, error) {
	if !validID(userID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, mapErr("list accounts", err)
	}
	out, err := collect(rows, scanAccount)
	return out, mapErr("list accounts", err)
}

// ─── WorkspaceRepository ───

const workspaceColumns = `id::text, name, description, owner_id::text, invite_code, created_at, updated_at`

type workspaceRepo struct{ q querier }

func scanWorkspace(row pgx.Row) (*repository.Workspace, error) {
	var w repository.Workspace
	if err := row.Scan(&w.ID, &w.Name, &w.Description, &w.OwnerID, &w.InviteCode, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *workspaceRepo) Create(ctx context.Context, in repository.CreateWorkspaceInput) (*repository.Workspace, error) {
	if !validID(in.OwnerID) {
		return nil, repository.ErrInvalidInput
	}
	code, err := tokens.InviteCode(8)
	if err != nil {
		return nil, err
	}
	const query = `
		INSERT INTO workspaces (id, name, description, owner_id, invite_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + workspaceColumns
	w, err := scanWorkspace(r.q.QueryRow(ctx, query, uuid.NewString(), in.Name, in.Description, in.OwnerID, code))
	return w, mapErr("insert workspace", err)
}

func (r *workspaceRepo) GetByID(ctx context.Context, id string) (*repository.Workspace, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	w, err := scanWorkspace(r.q.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1`, id))
	return w, mapErr("get workspace", err)
}

func (r *workspaceRepo) ListByIDs(ctx context.Context, ids []string) ([]repository.Workspace, error) {
	valid := slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return !validID(id) })
	if len(valid) == 0 {
		return []repository.Workspace{}, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE id = ANY($1::uuid[]) ORDER BY array_position($1::uuid[], id)`, valid)
	if err != nil {
		return nil, mapErr("list workspaces", err)
	}
	out, err := collect(rows, scanWorkspace)
	return out, mapErr("list workspaces", err)
}

// ─── RoleRepository ───

const roleColumns = `id::text, name, permissions, created_at, updated_at`

type roleRepo struct{ q querier }

func scanRole(row pgx.Row) (*repository.Role, error) {
	var r repository.Role
	if err := row.Scan(&r.ID, &r.Name, &r.Permissions, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*repository.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
	return role, mapErr("get role by name", err)
}

func (r *roleRepo) GetByID(ctx context.Context, id string) (*repository.Role, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	role, err := scanRole(r.q.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	return role, mapErr("get role by id", err)
}

func (r *roleRepo) List(ctx context.Context) ([]repository.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, mapErr("list roles", err)
	}
	out, err := collect(rows, scanRole)
	return out, mapErr("list roles", err)
}

// Upsert usa xmax = 0 para distinguir insert de update en un solo round-trip.
func (r *roleRepo) Upsert(ctx context.Context, name string, permissions []string) (*repository.Role, repository.UpsertOutcome, error) {
	if permissions == nil {
		permissions = []string{}
	}
	existing, err := r.GetByName(ctx, name)
	if err == nil && sameSet(existing.Permissions, permissions) {
		return existing, repository.UpsertUnchanged, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	const query = `
		INSERT INTO roles (id, name, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET permissions = EXCLUDED.permissions, updated_at = NOW()
		RETURNING ` + roleColumns + `, (xmax = 0)`
	var role repository.Role
	var inserted bool
	err = r.q.QueryRow(ctx, query, uuid.NewString(), name, permissions).Scan(
		&role.ID, &role.Name, &role.Permissions, &role.CreatedAt, &role.UpdatedAt, &inserted)
	if err != nil {
		return nil, "", mapErr("upsert role", err)
	}
	if inserted {
		return &role, repository.UpsertCreated, nil
	}
	return &role, repository.UpsertUpdated, nil
}

func sameSet(a, b []string) bool {
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

// ─── MemberRepository ───

const memberColumns = `id::text, user_id::text, workspace_id::text, role_id::text, joined_at`

type memberRepo struct{ q querier }

func scanMember(row pgx.Row) (*repository.Member, error) {
	var m repository.Member
	if err := row.Scan(&m.ID, &m.UserID, &m.WorkspaceID, &m.RoleID, &m.JoinedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepo) Create(ctx context.Context, in repository.CreateMemberInput) (*repository.Member, error) {
	if !validID(in.UserID) || !validID(in.WorkspaceID) || !validID(in.RoleID) {
		return nil, repository.ErrInvalidInput
	}
	const query = `
		INSERT INTO members (id, user_id, workspace_id, role_id, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + memberColumns
	m, err := scanMember(r.q.QueryRow(ctx, query, uuid.NewString(), in.UserID, in.WorkspaceID, in.RoleID, in.JoinedAt))
	return m, mapErr("insert member", err)
}

func (r *memberRepo) Get(ctx context.Context, userID, workspaceID string) (*repository.Member, error) {
	if !validID(userID) || !validID(workspaceID) {
		return nil, repository.ErrNotFound
	}
	m, err := scanMember(r.q.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE user_id = $1 AND workspace_id = $2`, userID, workspaceID))
	return m, mapErr("get member", err)
}

func (r *memberRepo) ListByUser(ctx context.Context, userID string) ([]repository.Member, error) {
	return r.list(ctx, `SELECT `+memberColumns+` FROM members WHERE user_id = $1 ORDER BY joined_at`, userID)
}

func (r *memberRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]repository.Member, error) {
	return r.list(ctx, `SELECT `+memberColumns+` FROM members WHERE workspace_id = $1 ORDER BY joined_at`, workspaceID)
}

func (r *memberRepo) list(ctx context.Context, query, id string) ([]repository.Member, error) {
	if !validID(id) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, mapErr("list members", err)
	}
	out, err := collect(rows, scanMember)
	return out, mapErr("list members", err)
}

// collect recorre rows con scan y cierra el cursor.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
