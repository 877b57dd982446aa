package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository over payout_idempotency_keys.
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Create binds the key to its payout within the payout's transaction. A key
// the wallet already used leaves the transaction usable and returns
// domain.ErrIdempotencyKeyTaken.
func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	query := `INSERT INTO payout_idempotency_keys (wallet_id, idempotency_key, payout_id, request_hash, response_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (wallet_id, idempotency_key) DO NOTHING`

	tag, err := tx.Exec(ctx, query,
		rec.WalletID, rec.Key, rec.PayoutID, rec.RequestHash, rec.ResponseJSON, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert idempotency key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIdempotencyKeyTaken
	}
	return nil
}

// Get fetches the record for a wallet's key.
func (r *IdempotencyRepo) Get(ctx context.Context, walletID uuid.UUID, key string) (*domain.IdempotencyRecord, error) {
	query := `SELECT wallet_id, idempotency_key, payout_id, request_hash, response_json, created_at
		FROM payout_idempotency_keys WHERE wallet_id = $1 AND idempotency_key = $2`

	rec := &domain.IdempotencyRecord{}
	err := r.pool.QueryRow(ctx, query, walletID, key).Scan(
		&rec.WalletID, &rec.Key, &rec.PayoutID, &rec.RequestHash, &rec.ResponseJSON, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	return rec, nil
}
