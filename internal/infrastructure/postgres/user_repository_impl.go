package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/internal/domain/repository"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at, updated_at
	`, u.Name, u.Email, u.Password)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("insert user: %w", mapError(err))
	}
	return nil
}

// GetByID treats a malformed id as a missing user: ids here come from token
// subjects, not from user input.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return r.getOne(ctx, "id = CAST($1::text AS uuid)", id)
}

// GetByEmail returns the user including the password hash.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, `
		SELECT id::text, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE `+where, arg)

	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
