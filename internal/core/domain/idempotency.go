package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrIdempotencyKeyTaken is returned by the idempotency store when the wallet
// already used the key.
var ErrIdempotencyKeyTaken = errors.New("idempotency key already taken")

// SettledKey marks a payment reference whose order has been settled.
func SettledKey(paymentReference string) string {
	return "settled:" + paymentReference
}

// PayoutIdempotencyKey scopes a client-supplied idempotency key to its seller.
func PayoutIdempotencyKey(sellerID uuid.UUID, key string) string {
	return "payout:" + sellerID.String() + ":" + key
}

// PayoutReplay is what a payout idempotency key resolves to: the payout it
// created (account number masked) and the fingerprint of the request.
type PayoutReplay struct {
	RequestHash string        `json:"request_hash"`
	Payout      PayoutRequest `json:"payout"`
}

// Matches reports whether in is the same request that created the replay.
func (r *PayoutReplay) Matches(in PayoutRequestInput) bool {
	return r.RequestHash == in.Fingerprint()
}

// IdempotencyRecord is the durable binding of a seller's key to its payout.
// It is written in the same transaction as the debit.
type IdempotencyRecord struct {
	WalletID     uuid.UUID
	Key          string
	PayoutID     uuid.UUID
	RequestHash  string
	ResponseJSON []byte
	CreatedAt    time.Time
}
