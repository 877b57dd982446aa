package domain

import "github.com/google/uuid"

// SettlementOutcome is the terminal result of a settlement attempt. None of
// these are errors: each one ends the gateway's retries.
type SettlementOutcome string

const (
	SettlementOutcomeSettled        SettlementOutcome = "SETTLED"
	SettlementOutcomeAlreadySettled SettlementOutcome = "ALREADY_SETTLED"
	SettlementOutcomeAmountMismatch SettlementOutcome = "AMOUNT_MISMATCH"
	SettlementOutcomeOrderNotFound  SettlementOutcome = "ORDER_NOT_FOUND"
	SettlementOutcomeIgnored        SettlementOutcome = "IGNORED"
)

// SellerCredit is one seller's share of a settled order.
type SellerCredit struct {
	SellerID      uuid.UUID `json:"seller_id"`
	WalletID      uuid.UUID `json:"wallet_id"`
	Gross         int64     `json:"gross"`
	Commission    int64     `json:"commission"`
	Net           int64     `json:"net"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

type SettlementResult struct {
	Outcome SettlementOutcome `json:"outcome"`
	OrderID *uuid.UUID        `json:"order_id,omitempty"`
	Credits []SellerCredit    `json:"credits,omitempty"`
}
