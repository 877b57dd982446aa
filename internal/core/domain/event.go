package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is anything published to the notification bus. The id is the message key.
type Event interface {
	GetID() string
}

// SellerCreditedEvent tells a seller their wallet received sale earnings.
type SellerCreditedEvent struct {
	ID            string    `json:"id"`
	SellerID      uuid.UUID `json:"seller_id"`
	WalletID      uuid.UUID `json:"wallet_id"`
	OrderID       uuid.UUID `json:"order_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Gross         int64     `json:"gross"`
	Commission    int64     `json:"commission"`
	Net           int64     `json:"net"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (e *SellerCreditedEvent) GetID() string {
	return e.ID
}

// PayoutRequestedEvent asks operators to process a pending payout.
type PayoutRequestedEvent struct {
	ID            string    `json:"id"`
	PayoutID      uuid.UUID `json:"payout_id"`
	SellerID      uuid.UUID `json:"seller_id"`
	WalletID      uuid.UUID `json:"wallet_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	BankName      string    `json:"bank_name"`
	MaskedAccount string    `json:"masked_account"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (e *PayoutRequestedEvent) GetID() string {
	return e.ID
}
