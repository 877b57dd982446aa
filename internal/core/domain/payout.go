package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PayoutStatus is the lifecycle state of a payout request. Only PENDING is
// set here; later transitions belong to the operator back office.
type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "PENDING"
	PayoutStatusApproved PayoutStatus = "APPROVED"
	PayoutStatusRejected PayoutStatus = "REJECTED"
	PayoutStatusPaid     PayoutStatus = "PAID"
)

// BankDetails is the payout destination.
type BankDetails struct {
	AccountNumber string `json:"account_number" validate:"required,max=34"`
	BankName      string `json:"bank_name" validate:"required,max=100"`
	AccountName   string `json:"account_name" validate:"required,max=100"`
}

// MaskedAccount returns the account number with all but the last four digits hidden.
func (b BankDetails) MaskedAccount() string {
	n := len(b.AccountNumber)
	if n <= 4 {
		return "****" + b.AccountNumber
	}
	return "****" + b.AccountNumber[n-4:]
}

// Describe is the ledger description for a payout to this destination.
func (b BankDetails) Describe() string {
	return fmt.Sprintf("Payout to %s %s", b.BankName, b.MaskedAccount())
}

// PayoutRequest is a seller-initiated withdrawal. BankDetailsEnc holds the
// encrypted destination as persisted; BankDetails is only populated in memory.
type PayoutRequest struct {
	ID             uuid.UUID    `json:"id"`
	WalletID       uuid.UUID    `json:"wallet_id"`
	TransactionID  uuid.UUID    `json:"transaction_id"`
	Amount         int64        `json:"amount"`
	Status         PayoutStatus `json:"status"`
	BankDetails    BankDetails  `json:"bank_details"`
	BankDetailsEnc string       `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsPending returns true until an operator acts on the request.
func (p *PayoutRequest) IsPending() bool {
	return p.Status == PayoutStatusPending
}

// PayoutRequestInput is the validated input of a payout.
type PayoutRequestInput struct {
	SellerID       uuid.UUID   `json:"seller_id" validate:"required"`
	Amount         int64       `json:"amount" validate:"gt=0"`
	BankDetails    BankDetails `json:"bank_details" validate:"required"`
	IdempotencyKey string      `json:"idempotency_key" validate:"omitempty,max=255"`
}

// Fingerprint hashes the parts of the request that move money. Two requests
// with the same fingerprint are the same payout.
func (in PayoutRequestInput) Fingerprint() string {
	raw, _ := json.Marshal(struct {
		Amount      int64       `json:"amount"`
		BankDetails BankDetails `json:"bank_details"`
	}{in.Amount, in.BankDetails})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
