package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatekit/gatekit/internal/domain/entity"
	"github.com/gatekit/gatekit/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.MFAStatus == "" {
		u.MFAStatus = entity.MFANotRequired
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, full_name, password_hash, validated, mfa_email, mfa_status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.FullName, u.PasswordHash, u.Validated, u.MFAEmail, string(u.MFAStatus))

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT id, email, full_name, password_hash, validated, mfa_email, mfa_status, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT id, email, full_name, password_hash, validated, mfa_email, mfa_status, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	var mfaEmail *string
	var mfaStatus string

	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Validated,
		&mfaEmail, &mfaStatus, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if mfaEmail != nil {
		u.MFAEmail = *mfaEmail
	}
	u.MFAStatus = entity.MFAStatus(mfaStatus)
	return u, nil
}

// Update writes the whole row. Concurrent writers for the same user id resolve
// last-writer-wins, which is acceptable because the session gate always
// re-reads current state.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, full_name = $2, password_hash = $3, validated = $4,
		    mfa_email = NULLIF($5, ''), mfa_status = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.FullName, u.PasswordHash, u.Validated, u.MFAEmail, string(u.MFAStatus), u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the row and, through the FK cascade, any tokens issued for it.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
