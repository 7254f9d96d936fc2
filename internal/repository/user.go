package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aeroway/aeroway-api/internal/database"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/util"
)

const usersTable = "users"

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByIDForUpdate locks the user row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByTicketNumber(ctx context.Context, ticket string) (*model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	SetTicketNumber(ctx context.Context, id, ticket string) (*model.User, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) UserRepository
}

type userRepo struct {
	q *database.Querier
}

func NewUserRepository(q *database.Querier) UserRepository {
	return &userRepo{q: q}
}

func (r *userRepo) WithTx(tx *sqlx.Tx) UserRepository {
	return &userRepo{q: bind(r.q, tx)}
}

func (r *userRepo) findBy(ctx context.Context, column string, value any) (*model.User, error) {
	var user model.User
	ok, err := r.q.SelectOne(ctx, &user, database.SelectQuery{
		Table: usersTable,
		Where: database.Fields{database.F(column, value)},
	})
	return found(&user, ok, err)
}

// FindByID treats a malformed id as a miss; the column is a UUID and
// Postgres would reject the comparison.
func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if !util.IsValidUUID(id) {
		return nil, nil
	}
	return r.findBy(ctx, "id", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findBy(ctx, "email", email)
}

func (r *userRepo) FindByTicketNumber(ctx context.Context, ticket string) (*model.User, error) {
	return r.findBy(ctx, "ticket_number", ticket)
}

func (r *userRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.User, error) {
	if !util.IsValidUUID(id) {
		return nil, nil
	}
	var users []model.User
	err := r.q.Raw(ctx, &users, `SELECT * FROM users WHERE id = $1 FOR UPDATE`, id)
	return first(users, err)
}

func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	role := params.Role
	if role == "" {
		role = model.UserRolePassenger
	}

	data := database.Fields{
		database.F("email", params.Email),
		database.F("password_hash", params.PasswordHash),
		database.F("nom", params.Nom),
		database.F("prenom", params.Prenom),
		database.F("telephone", params.Telephone),
		database.F("role", role),
	}
	data = optional(data, "num_identite", params.NumIdentite)
	data = optional(data, "date_naissance", params.DateNaissance)
	data = optional(data, "lieu_naissance", params.LieuNaissance)
	data = optional(data, "ville", params.Ville)
	data = optional(data, "pays", params.Pays)
	data = optional(data, "ticket_number", params.TicketNumber)

	var user model.User
	if err := r.q.Insert(ctx, &user, usersTable, data); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) SetTicketNumber(ctx context.Context, id, ticket string) (*model.User, error) {
	var user model.User
	ok, err := r.q.Update(ctx, &user, usersTable,
		database.Fields{
			database.F("ticket_number", ticket),
			database.F("updated_at", time.Now().UTC()),
		},
		database.Fields{database.F("id", id)},
	)
	return found(&user, ok, err)
}
