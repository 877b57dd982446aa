package ports

import (
	"context"

	"marketplace-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside the caller's unit of work.
// Lookups return (nil, nil) when the wallet does not exist.
type WalletRepository interface {
	// Upsert returns the seller's wallet, creating it with a zero balance if absent.
	Upsert(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, currency string) (*domain.Wallet, error)
	GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*domain.Wallet, error)
	GetBySellerIDForUpdate(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	// IncrementBalance adds amount and returns the new balance. found is false when no wallet matched.
	IncrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64) (balance int64, found bool, err error)
	// DecrementBalance subtracts amount only if the balance stays non-negative.
	// applied is false when the wallet is missing or the balance is too low.
	DecrementBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64) (balance int64, applied bool, err error)
}

// TransactionRepository is the append-only ledger. There is no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	ListRecent(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error)
	SumByWallet(ctx context.Context, walletID uuid.UUID) (int64, error)
}

// PayoutRepository defines persistence operations for payout requests.
type PayoutRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payout *domain.PayoutRequest) error
	ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.PayoutRequest, error)
}

// IdempotencyRepository is the durable layer behind the payout idempotency cache.
type IdempotencyRepository interface {
	// Create fails with domain.ErrIdempotencyKeyTaken when the wallet already used the key.
	Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error
	Get(ctx context.Context, walletID uuid.UUID, key string) (*domain.IdempotencyRecord, error)
}

// OrderRepository reads orders owned by the order subsystem. Settlement only flips status.
type OrderRepository interface {
	// GetByPaymentReferenceForUpdate locks the order row and loads its items with seller ids.
	GetByPaymentReferenceForUpdate(ctx context.Context, tx pgx.Tx, paymentReference string) (*domain.Order, error)
	// MarkCompleted moves a PENDING order to COMPLETED and errors if no PENDING row matched.
	MarkCompleted(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
