package repository

import (
	"context"
	"errors"

	"github.com/gatekit/gatekit/internal/domain/entity"
)

// ErrNotFound is returned by repositories when no record matches. Callers use
// it to tell "no such record" apart from a store that is unreachable.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}
