package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatekit/gatekit/internal/domain/entity"
	"github.com/gatekit/gatekit/internal/domain/repository"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Create(ctx context.Context, t *entity.Token) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tokens (token, user_id, purpose, email)
		VALUES ($1, $2, $3, $4)
		RETURNING date_creation
	`, t.Token, t.UserID, string(t.Purpose), t.Email)

	return row.Scan(&t.DateCreation)
}

func (r *TokenRepository) FindByTokenAndPurpose(ctx context.Context, token string, purpose entity.TokenPurpose) (*entity.Token, error) {
	t := &entity.Token{}
	var p string

	row := r.pool.QueryRow(ctx, `
		SELECT token, user_id, purpose, email, date_creation
		FROM tokens
		WHERE token = $1 AND purpose = $2
	`, token, string(purpose))

	if err := row.Scan(&t.Token, &t.UserID, &p, &t.Email, &t.DateCreation); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	t.Purpose = entity.TokenPurpose(p)
	return t, nil
}

func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	return err
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
