package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
)

const userColumns = "id, name, email, password_hash, email_verified_at, created_at, updated_at"

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts u and returns it with id and timestamps populated.  The
// email is normalised; an existing address yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	q := conn(ctx, r.db)
	u.Email = normalizeEmail(u.Email)
	id, err := insertID(ctx, q,
		"INSERT INTO users (name, email, password_hash, email_verified_at) VALUES (?, ?, ?, ?)",
		u.Name, u.Email, u.PasswordHash, u.EmailVerifiedAt)
	if err != nil {
		return translate(err, ErrUserNotFound)
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*u = created
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	q := conn(ctx, r.db)
	var u model.User
	err := sqlx.GetContext(ctx, q, &u, q.Rebind("SELECT "+userColumns+" FROM users WHERE email = ?"), normalizeEmail(email))
	return u, translate(err, ErrUserNotFound)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	q := conn(ctx, r.db)
	var u model.User
	err := sqlx.GetContext(ctx, q, &u, q.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	return u, translate(err, ErrUserNotFound)
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
