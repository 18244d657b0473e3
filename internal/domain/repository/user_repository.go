package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
)

// ErrNotFound is returned by stores when no record matches.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for credential store operations.
// GetByEmail includes the password hash; GetByID does not need it.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
