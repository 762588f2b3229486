package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
)

type VerificationTokenRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationTokenRepository(pool *pgxpool.Pool) *VerificationTokenRepository {
	return &VerificationTokenRepository{pool: pool}
}

// Insert replaces any prior token row for the account so at most one live
// token exists per account.
func (r *VerificationTokenRepository) Insert(ctx context.Context, t *entity.VerificationToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO verification_tokens (account_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
	`, t.AccountID, t.TokenHash, t.CreatedAt, t.ExpiresAt)
	return err
}

func (r *VerificationTokenRepository) GetByAccountID(ctx context.Context, accountID string) (*entity.VerificationToken, error) {
	t := &entity.VerificationToken{}
	row := r.pool.QueryRow(ctx, `
		SELECT account_id, token_hash, created_at, expires_at
		FROM verification_tokens
		WHERE account_id = $1
	`, accountID)
	if err := row.Scan(&t.AccountID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *VerificationTokenRepository) DeleteByAccountID(ctx context.Context, accountID string) (bool, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM verification_tokens WHERE account_id = $1`, accountID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

var _ repository.VerificationTokenRepository = (*VerificationTokenRepository)(nil)
