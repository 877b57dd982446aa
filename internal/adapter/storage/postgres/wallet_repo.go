package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const walletColumns = `id, seller_id, balance, currency, created_at, updated_at`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Upsert returns the seller's wallet, creating it with a zero balance if absent.
// The no-op update makes RETURNING yield the existing row and lets concurrent
// first credits converge on one wallet.
func (r *WalletRepo) Upsert(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, currency string) (*domain.Wallet, error) {
	query := `INSERT INTO wallets (id, seller_id, balance, currency, created_at, updated_at)
		VALUES ($1, $2, 0, $3, NOW(), NOW())
		ON CONFLICT (seller_id) DO UPDATE SET seller_id = EXCLUDED.seller_id
		RETURNING ` + walletColumns

	w, err := scanWallet(tx.QueryRow(ctx, query, uuid.New(), sellerID, currency))
	if err != nil {
		return nil, fmt.Errorf("upsert wallet: %w", err)
	}
	return w, nil
}

// GetBySellerID fetches a wallet by seller (non-locking read).
func (r *WalletRepo) GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE seller_id = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, sellerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by seller id: %w", err)
	}
	return w, nil
}

// GetBySellerIDForUpdate fetches a wallet by seller with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetBySellerIDForUpdate(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE seller_id = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, sellerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update by seller: %w", err)
	}
	return w, nil
}

// GetByIDForUpdate fetches a wallet by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update by id: %w", err)
	}
	return w, nil
}

// IncrementBalance atomically adds amount in a single statement.
func (r *WalletRepo) IncrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64) (int64, bool, error) {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE id = $2 RETURNING balance`

	var balance int64
	if err := tx.QueryRow(ctx, query, amount, walletID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("increment wallet balance: %w", err)
	}
	return balance, true, nil
}

// DecrementBalance atomically subtracts amount unless that would take the balance below zero.
func (r *WalletRepo) DecrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64) (int64, bool, error) {
	query := `UPDATE wallets SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1 RETURNING balance`

	var balance int64
	if err := tx.QueryRow(ctx, query, amount, walletID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("decrement wallet balance: %w", err)
	}
	return balance, true, nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.SellerID, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}
