// Package store implements CRUD access to the users table. Email
// uniqueness is enforced by the table's unique index; the store only
// translates the resulting SQLSTATE into apperr.ErrUserAlreadyExists.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/upascal/fast-api-backend-template/internal/apperr"
	"github.com/upascal/fast-api-backend-template/internal/auth"
	"github.com/upascal/fast-api-backend-template/internal/models"
)

const defaultListLimit = 100

type Users struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Users {
	return &Users{db: db}
}

// NormalizeEmail trims and lower-cases an email before storage or
// lookup, so the unique index holds one row per address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create hashes the password and inserts a new user row.
func (s *Users) Create(ctx context.Context, in models.UserCreate) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("store: hashing password: %w", err)
	}

	query := `
		INSERT INTO users (id, email, hashed_password, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, hashed_password, first_name, last_name,
		          is_active, is_superuser, created_at, updated_at
	`

	var user models.User
	err = s.db.GetContext(ctx, &user, query,
		uuid.New(), NormalizeEmail(in.Email), hash, in.FirstName, in.LastName, in.Active())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("store: creating user: %w", err)
	}

	return &user, nil
}

func (s *Users) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id=$1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("store: fetching user: %w", err)
	}
	return &user, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email=$1`, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("store: fetching user: %w", err)
	}
	return &user, nil
}

// Update applies only the supplied fields; a supplied password is
// re-hashed before storage.
func (s *Users) Update(ctx context.Context, id uuid.UUID, in models.UserUpdate) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = NormalizeEmail(*in.Email)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("store: hashing password: %w", err)
		}
		user.HashedPassword = hash
	}
	if in.FirstName != nil {
		user.FirstName = in.FirstName
	}
	if in.LastName != nil {
		user.LastName = in.LastName
	}
	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET email=$1, hashed_password=$2, first_name=$3, last_name=$4, updated_at=$5
		WHERE id=$6
		RETURNING id, email, hashed_password, first_name, last_name,
		          is_active, is_superuser, created_at, updated_at
	`

	var updated models.User
	err = s.db.GetContext(ctx, &updated, query,
		user.Email, user.HashedPassword, user.FirstName, user.LastName, user.UpdatedAt, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrUserAlreadyExists
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("store: updating user: %w", err)
	}

	return &updated, nil
}

// Delete removes the row permanently.
func (s *Users) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("store: deleting user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: deleting user: %w", err)
	}
	if n == 0 {
		return apperr.ErrUserNotFound
	}

	return nil
}

// List returns a page of users ordered by creation time so pagination
// stays deterministic.
func (s *Users) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	users := []models.User{}
	err := s.db.SelectContext(ctx, &users,
		`SELECT * FROM users ORDER BY created_at, id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("store: listing users: %w", err)
	}

	return users, nil
}
