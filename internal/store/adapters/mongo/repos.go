package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/security/password"
	tokens "github.com/dropDatabas3/taskhub/internal/security/token"
)

// repos comparte la base y, dentro de una tx, la sesión.
type repos struct {
	db     *mongo.Database
	sess   mongo.Session
	params password.Params
	closed atomic.Bool
}

// bind asocia ctx a la sesión de la tx, si la hay.
func (r *repos) bind(ctx context.Context) (context.Context, error) {
	if r.sess == nil {
		return ctx, nil
	}
	if r.closed.Load() {
		return nil, repository.ErrTxDone
	}
	return mongo.NewSessionContext(ctx, r.sess), nil
}

func (r *repos) col(name string) *mongo.Collection { return r.db.Collection(name) }

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// mapErr traduce errores del driver a errores de dominio.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo: %s: %w", op, repository.ErrConflict)
	}
	// WriteConflict (112): otra tx escribió la misma clave única primero.
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(112) {
		return fmt.Errorf("mongo: %s: write conflict: %w", op, repository.ErrConflict)
	}
	return fmt.Errorf("mongo: %s: %w", op, err)
}

func oid(id string) (primitive.ObjectID, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("mongo: invalid id %q: %w", id, repository.ErrInvalidInput)
	}
	return o, nil
}

// ─── UserRepository ───

type userRepo struct{ r *repos }

func (u *userRepo) findOne(ctx context.Context, filter bson.M) (*repository.User, error) {
	ctx, err := u.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	var doc userDoc
	if err := u.r.col(colUsers).FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr("find user", err)
	}
	return doc.toDomain(), nil
}

func (u *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	return u.findOne(ctx, bson.M{"email": email})
}

func (u *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return u.findOne(ctx, bson.M{"_id": o})
}

func (u *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	ctx, err := u.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	ts := now()
	doc := userDoc{
		ID:             primitive.NewObjectID(),
		Email:          in.Email,
		Name:           in.Name,
		ProfilePicture: in.ProfilePicture,
		IsActive:       true,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if in.Password != nil {
		h, err := password.Hash(u.r.params, *in.Password)
		if err != nil {
			return nil, err
		}
		doc.Password = &h
	}
	if _, err := u.r.col(colUsers).InsertOne(ctx, doc); err != nil {
		return nil, mapErr("insert user", err)
	}
	return doc.toDomain(), nil
}

func (u *userRepo) SetCurrentWorkspace(ctx context.Context, userID, workspaceID string) error {
	ws, err := oid(workspaceID)
	if err != nil {
		return err
	}
	return u.set(ctx, userID, bson.M{"currentWorkspace": ws})
}

func (u *userRepo) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return u.set(ctx, userID, bson.M{"lastLogin": at.UTC()})
}

func (u *userRepo) UpgradePassword(ctx context.Context, userID, plain, current string) (bool, error) {
	if !password.NeedsRehash(u.r.params, current) {
		return false, nil
	}
	h, err := password.Hash(u.r.params, plain)
	if err != nil {
		return false, err
	}
	if err := u.set(ctx, userID, bson.M{"password": h}); err != nil {
		return false, err
	}
	return true, nil
}

func (u *userRepo) set(ctx context.Context, userID string, fields bson.M) error {
	id, err := oid(userID)
	if err != nil {
		return err
	}
	ctx, err = u.r.bind(ctx)
	if err != nil {
		return err
	}
	fields["updatedAt"] = now()
	res, err := u.r.col(colUsers).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return mapErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ─── AccountRepository ───

type accountRepo struct{ r *repos }

func (a *accountRepo) GetByProvider(ctx context.Context, provider, providerID string) (*repository.Account, error) {
	ctx, err := a.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	var doc accountDoc
	err = a.r.col(colAccounts).FindOne(ctx, bson.M{"provider": provider, "providerId": providerID}).Decode(&doc)
	if err != nil {
		return nil, mapErr("find account", err)
	}
	return doc.toDomain(), nil
}

func (a *accountRepo) Create(ctx context.Context, in repository.CreateAccountInput) (*repository.Account, error) {
	userID, err := oid(in.UserID)
	if err != nil {
		return nil, err
	}
	ctx, err = a.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	doc := accountDoc{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		Provider:   in.Provider,
		ProviderID: in.ProviderID,
		CreatedAt:  now(),
	}
	if _, err := a.r.col(colAccounts).InsertOne(ctx, doc); err != nil {
		return nil, mapErr("insert account", err)
	}
	return doc.toDomain(), nil
}

func (a *accountRepo) ListByUser(ctx context.Context, userID string) ([]repository.Account, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}
	ctx, err = a.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	var docs []accountDoc
	if err := findAll(ctx, a.r.col(colAccounts), bson.M{"userId": id}, "createdAt", &docs); err != nil {
		return nil, mapErr("list accounts", err)
	}
	out := make([]repository.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toDomain())
	}
	return out, nil
}

// ─── WorkspaceRepository ───

type workspaceRepo struct{ r *repos }

func (w *workspaceRepo) Create(ctx context.Context, in repository.CreateWorkspaceInput) (*repository.Workspace, error) {
	owner, err := oid(in.OwnerID)
	if err != nil {
		return nil, err
	}
	code, err := tokens.InviteCode(8)
	if err != nil {
		return nil, err
	}
	ctx, err = w.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	ts := now()
	doc := workspaceDoc{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		Description: in.Description,
		Owner:       owner,
		InviteCode:  code,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := w.r.col(colWorkspaces).InsertOne(ctx, doc); err != nil {
		return nil, mapErr("insert workspace", err)
	}
	return doc.toDomain(), nil
}

func (w *workspaceRepo) GetByID(ctx context.Context, id string) (*repository.Workspace, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	ctx, err = w.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	var doc workspaceDoc
	if err := w.r.col(colWorkspaces).FindOne(ctx, bson.M{"_id": o}).Decode(&doc); err != nil {
		return nil, mapErr("find workspace", err)
	}
	return doc.toDomain(), nil
}

func (w *workspaceRepo) ListByIDs(ctx context.Context, ids []string) ([]repository.Workspace, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if o, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, o)
		}
	}
	if len(oids) == 0 {
		return []repository.Workspace{}, nil
	}
	ctx, err := w.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	var docs []workspaceDoc
	if err := findAll(ctx, w.r.col(colWorkspaces), bson.M{"_id": bson.M{"$in": oids}}, "", &docs); err != nil {
		return nil, mapErr("list workspaces", err)
	}
	byID := make(map[string]repository.Workspace, len(docs))
	for _, d := range docs {
		byID[d.ID.Hex()] = *d.toDomain()
	}
	out := make([]repository.Workspace, 0, len(docs))
	for _, id := range ids {
		if ws, ok := byID[id]; ok {
			out = append(out, ws)
		}
	}
	return out, nil
}

// ─── RoleRepository ───

type roleRepo struct{ r *repos }

func (rr *roleRepo) find(ctx context.Context, filter bson.M) (*repository.Role, error) {
	ctx, err := rr.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	var doc roleDoc
	if err := rr.r.col(colRoles).FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr("find role", err)
	}
	return doc.toDomain(), nil
}

func (rr *roleRepo) GetByName(ctx context.Context, name string) (*repository.Role, error) {
	return rr.find(ctx, bson.M{"name": name})
}

func (rr *roleRepo) GetByID(ctx context.Context, id string) (*repository.Role, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return rr.find(ctx, bson.M{"_id": o})
}

func (rr *roleRepo) List(ctx context.Context) ([]repository.Role, error) {
	ctx, err := rr.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	var docs []roleDoc
	if err := findAll(ctx, rr.r.col(colRoles), bson.M{}, "name", &docs); err != nil {
		return nil, mapErr("list roles", err)
	}
	out := make([]repository.Role, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toDomain())
	}
	return out, nil
}

func (rr *roleRepo) Upsert(ctx context.Context, name string, permissions []string) (*repository.Role, repository.UpsertOutcome, error) {
	existing, err := rr.GetByName(ctx, name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}
	bctx, err := rr.r.bind(ctx)
	if err != nil {
		return nil, "", err
	}
	ts := now()

	if existing == nil {
		doc := roleDoc{ID: primitive.NewObjectID(), Name: name, Permissions: permissions, CreatedAt: ts, UpdatedAt: ts}
		if _, err := rr.r.col(colRoles).InsertOne(bctx, doc); err != nil {
			return nil, "", mapErr("insert role", err)
		}
		return doc.toDomain(), repository.UpsertCreated, nil
	}

	if sameSet(existing.Permissions, permissions) {
		return existing, repository.UpsertUnchanged, nil
	}
	id, _ := primitive.ObjectIDFromHex(existing.ID)
	_, err = rr.r.col(colRoles).UpdateOne(bctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"permissions": permissions, "updatedAt": ts}},
	)
	if err != nil {
		return nil, "", mapErr("update role", err)
	}
	existing.Permissions = permissions
	existing.UpdatedAt = ts
	return existing, repository.UpsertUpdated, nil
}

func sameSet(a, b []string) bool {
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

// ─── MemberRepository ───

type memberRepo struct{ r *repos }

func (m *memberRepo) Create(ctx context.Context, in repository.CreateMemberInput) (*repository.Member, error) {
	userID, err := oid(in.UserID)
	if err != nil {
		return nil, err
	}
	wsID, err := oid(in.WorkspaceID)
	if err != nil {
		return nil, err
	}
	roleID, err := oid(in.RoleID)
	if err != nil {
		return nil, err
	}
	ctx, err = m.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	doc := memberDoc{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		WorkspaceID: wsID,
		Role:        roleID,
		JoinedAt:    in.JoinedAt.UTC(),
	}
	if _, err := m.r.col(colMembers).InsertOne(ctx, doc); err != nil {
		return nil, mapErr("insert member", err)
	}
	return doc.toDomain(), nil
}

func (m *memberRepo) Get(ctx context.Context, userID, workspaceID string) (*repository.Member, error) {
	u, err1 := primitive.ObjectIDFromHex(userID)
	w, err2 := primitive.ObjectIDFromHex(workspaceID)
	if err1 != nil || err2 != nil {
		return nil, repository.ErrNotFound
	}
	ctx, err := m.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	var doc memberDoc
	if err := m.r.col(colMembers).FindOne(ctx, bson.M{"userId": u, "workspaceId": w}).Decode(&doc); err != nil {
		return nil, mapErr("find member", err)
	}
	return doc.toDomain(), nil
}

func (m *memberRepo) ListByUser(ctx context.Context, userID string) ([]repository.Member, error) {
	return m.list(ctx, "userId", userID)
}

func (m *memberRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]repository.Member, error) {
	return m.list(ctx, "workspaceId", workspaceID)
}

func (m *memberRepo) list(ctx context.Context, field, id string) ([]repository.Member, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	ctx, err = m.r.bind(ctx)
	if err != nil {
		return nil, err
	}
	var docs []memberDoc
	if err := findAll(ctx, m.r.col(colMembers), bson.M{field: o}, "joinedAt", &docs); err != nil {
		return nil, mapErr("list members", err)
	}
	out := make([]repository.Member, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toDomain())
	}
	return out, nil
}

// findAll decodifica todos los documentos que cumplen filter, ordenados
// ascendente por sortField si no está vacío.
func findAll(ctx context.Context, col *mongo.Collection, filter bson.M, sortField string, out any) error {
	opts := options.Find()
	if sortField != "" {
		opts.SetSort(bson.D{{Key: sortField, Value: 1}})
	}
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}
