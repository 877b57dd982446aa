package ports

import (
	"context"
	"time"

	"marketplace-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService verifies payment gateway webhook signatures (HMAC-SHA512 over the raw body).
type SignatureService interface {
	Sign(secret string, body []byte) string
	Verify(secret string, body []byte, signature string) bool
}

// TokenService validates seller tokens issued by the identity provider.
type TokenService interface {
	Generate(sellerID uuid.UUID, ttl time.Duration) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	SellerID uuid.UUID
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached value or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// EventPublisher emits notifications after a unit of work commits.
type EventPublisher interface {
	PublishSellerCredited(ctx context.Context, event *domain.SellerCreditedEvent) error
	PublishPayoutRequested(ctx context.Context, event *domain.PayoutRequestedEvent) error
}

// --- Service Ports (Business Logic) ---

// LedgerService holds the wallet primitives shared by settlement and payouts.
// Every method runs inside the caller's transaction.
type LedgerService interface {
	GetOrCreateWallet(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (*domain.Wallet, error)
	CreditWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64, kind domain.TransactionKind, description string, orderRef *uuid.UUID) (*domain.Transaction, error)
	DebitWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64, kind domain.TransactionKind, description string) (*domain.Transaction, error)
}

// SettlementService converts a verified payment into seller wallet credits.
type SettlementService interface {
	SettleOrder(ctx context.Context, paymentReference string, verifiedAmount int64) (*domain.SettlementResult, error)
}

// PayoutService lets sellers withdraw from their wallets.
type PayoutService interface {
	RequestPayout(ctx context.Context, in domain.PayoutRequestInput) (*domain.PayoutRequest, error)
	ListPayouts(ctx context.Context, sellerID uuid.UUID, limit int) ([]domain.PayoutRequest, error)
}

// WalletService serves the seller's wallet view.
type WalletService interface {
	GetWallet(ctx context.Context, sellerID uuid.UUID, limit int) (*WalletView, error)
	ReconcileWallet(ctx context.Context, sellerID uuid.UUID) (*domain.Reconciliation, error)
}

// WalletView is a wallet with its most recent ledger entries, newest first.
type WalletView struct {
	Wallet       *domain.Wallet
	Transactions []domain.Transaction
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
