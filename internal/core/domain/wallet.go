package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is a seller's running balance. Balance is a denormalized cache of the
// sum of the wallet's ledger entries and is never negative.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Balance   int64     `json:"balance"` // minor currency units
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanCover reports whether the wallet holds at least amount.
func (w *Wallet) CanCover(amount int64) bool {
	return amount > 0 && w.Balance >= amount
}

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	TransactionKindSale          TransactionKind = "SALE"
	TransactionKindPayoutRequest TransactionKind = "PAYOUT_REQUEST"
)

// IsValid returns true for the kinds the ledger accepts.
func (k TransactionKind) IsValid() bool {
	return k == TransactionKindSale || k == TransactionKindPayoutRequest
}

// Transaction is an immutable ledger entry. Positive amounts are credits,
// negative amounts are debits.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	WalletID    uuid.UUID       `json:"wallet_id"`
	Amount      int64           `json:"amount"`
	Kind        TransactionKind `json:"kind"`
	Description string          `json:"description"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsCredit returns true if the entry increased the balance.
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// Reconciliation compares a wallet's cached balance with the sum of its ledger.
type Reconciliation struct {
	WalletID   uuid.UUID `json:"wallet_id"`
	Balance    int64     `json:"balance"`
	LedgerSum  int64     `json:"ledger_sum"`
	Consistent bool      `json:"consistent"`
}
