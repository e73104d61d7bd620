package repository

import (
	"context"

	"github.com/gatekit/gatekit/internal/domain/entity"
)

// TokenRepository defines the interface for confirmation/reset token storage.
type TokenRepository interface {
	Create(ctx context.Context, t *entity.Token) error
	FindByTokenAndPurpose(ctx context.Context, token string, purpose entity.TokenPurpose) (*entity.Token, error)
	Delete(ctx context.Context, token string) error
}
