package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/user/entity"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

const uniqueViolation = "23505"

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGINT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT 'lastName',
  location TEXT NOT NULL DEFAULT 'My City',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CONSTRAINT users_email_key UNIQUE (email)
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts u. A taken email surfaces as *apperror.DuplicateKeyError.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, name, email, password_hash, last_name, location)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, u.LastName, u.Location)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return translate("create user", err)
	}
	return nil
}

// GetByEmail returns the user with the given email or ErrNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, name, email, password_hash, last_name, location, created_at, updated_at
		FROM users WHERE email=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, translate("get user by email", err)
	}
	return &u, nil
}

// GetByID fetches a full user row.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT id, name, email, password_hash, last_name, location, created_at, updated_at
		FROM users WHERE id=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		return nil, translate("get user by id", err)
	}
	return &u, nil
}

// Update writes the profile fields of u.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	const q = `UPDATE users SET name=$2, email=$3, last_name=$4, location=$5, updated_at=NOW()
		WHERE id=$1 RETURNING updated_at`
	row := r.db.QueryRowxContext(ctx, q, u.ID, u.Name, u.Email, u.LastName, u.Location)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		return translate("update user", err)
	}
	return nil
}

func translate(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &apperror.DuplicateKeyError{Fields: []string{fieldOf(pqErr.Constraint)}, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// fieldOf recovers the column from a "<table>_<column>_key" constraint name.
func fieldOf(constraint string) string {
	field := strings.TrimSuffix(strings.TrimPrefix(constraint, "users_"), "_key")
	if field == "" {
		return "unique"
	}
	return field
}
