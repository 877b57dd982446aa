package postgres

import (
	"context"
	"fmt"

	"marketplace-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PayoutRepo implements ports.PayoutRepository. Bank details are stored only
// in encrypted form.
type PayoutRepo struct {
	pool Pool
}

func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

// Create inserts a payout request within a transaction.
func (r *PayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.PayoutRequest) error {
	query := `INSERT INTO payout_requests (id, wallet_id, transaction_id, amount, status, bank_details_enc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.WalletID, p.TransactionID, p.Amount, p.Status,
		p.BankDetailsEnc, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payout request: %w", err)
	}
	return nil
}

// ListByWallet returns the wallet's payout requests, newest first. BankDetails is left empty.
func (r *PayoutRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.PayoutRequest, error) {
	query := `SELECT id, wallet_id, transaction_id, amount, status, bank_details_enc, created_at, updated_at
		FROM payout_requests WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("list payout requests: %w", err)
	}
	defer rows.Close()

	payouts := make([]domain.PayoutRequest, 0, limit)
	for rows.Next() {
		p := domain.PayoutRequest{}
		err := rows.Scan(
			&p.ID, &p.WalletID, &p.TransactionID, &p.Amount, &p.Status,
			&p.BankDetailsEnc, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payout request: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payout requests: %w", err)
	}
	return payouts, nil
}
