package dto

import (
	"time"

	"marketplace-settlement/internal/core/domain"
	"marketplace-settlement/internal/core/ports"
)

// WebhookEvent is the payment gateway's notification body. Only
// charge.success with data.status == "success" settles an order.
type WebhookEvent struct {
	Event string           `json:"event"`
	Data  WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"` // minor units
	Status    string `json:"status"`
}

// IsChargeSuccess reports whether the event confirms a captured payment.
func (e WebhookEvent) IsChargeSuccess() bool {
	return e.Event == "charge.success" && e.Data.Status == "success"
}

// WebhookAck is returned for every verified webhook.
type WebhookAck struct {
	Outcome string  `json:"outcome"`
	OrderID *string `json:"order_id,omitempty"`
}

// PayoutRequest is the request body for a seller payout.
type PayoutRequest struct {
	Amount      int64              `json:"amount" binding:"required,gt=0"`
	BankDetails BankDetailsRequest `json:"bankDetails"`
}

type BankDetailsRequest struct {
	AccountNumber string `json:"accountNumber" binding:"required,max=34,account_number" sanitize:"trim"`
	BankName      string `json:"bankName" binding:"required,max=100" sanitize:"trim"`
	AccountName   string `json:"accountName" binding:"required,max=100" sanitize:"trim"`
}

// PayoutHeaders are the optional request headers of a payout.
type PayoutHeaders struct {
	IdempotencyKey string `header:"Idempotency-Key" binding:"omitempty,max=255,safe_id"`
}

// ListQuery is the common ?limit= query.
type ListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// PayoutResponse never carries the full account number.
type PayoutResponse struct {
	ID            string              `json:"id"`
	WalletID      string              `json:"wallet_id"`
	TransactionID string              `json:"transaction_id"`
	Amount        int64               `json:"amount"`
	Status        string              `json:"status"`
	BankDetails   BankDetailsResponse `json:"bank_details"`
	CreatedAt     string              `json:"created_at"`
}

type BankDetailsResponse struct {
	AccountNumber string `json:"account_number"` // masked
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
}

// TransactionResponse is one ledger entry. Amount is signed.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Amount      int64   `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	OrderID     *string `json:"order_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// WalletResponse is the seller's wallet with its most recent entries.
type WalletResponse struct {
	ID           string                `json:"id"`
	SellerID     string                `json:"seller_id"`
	Balance      int64                 `json:"balance"`
	Currency     string                `json:"currency"`
	Transactions []TransactionResponse `json:"transactions"`
}

type ReconciliationResponse struct {
	WalletID   string `json:"wallet_id"`
	Balance    int64  `json:"balance"`
	LedgerSum  int64  `json:"ledger_sum"`
	Consistent bool   `json:"consistent"`
}

// ToPayoutResponse masks the account number.
func ToPayoutResponse(p *domain.PayoutRequest) PayoutResponse {
	return PayoutResponse{
		ID:            p.ID.String(),
		WalletID:      p.WalletID.String(),
		TransactionID: p.TransactionID.String(),
		Amount:        p.Amount,
		Status:        string(p.Status),
		BankDetails: BankDetailsResponse{
			AccountNumber: p.BankDetails.MaskedAccount(),
			BankName:      p.BankDetails.BankName,
			AccountName:   p.BankDetails.AccountName,
		},
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		Amount:      t.Amount,
		Type:        string(t.Kind),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.OrderID != nil {
		s := t.OrderID.String()
		resp.OrderID = &s
	}
	return resp
}

func ToWalletResponse(v *ports.WalletView) WalletResponse {
	txns := make([]TransactionResponse, 0, len(v.Transactions))
	for i := range v.Transactions {
		txns = append(txns, ToTransactionResponse(&v.Transactions[i]))
	}
	return WalletResponse{
		ID:           v.Wallet.ID.String(),
		SellerID:     v.Wallet.SellerID.String(),
		Balance:      v.Wallet.Balance,
		Currency:     v.Wallet.Currency,
		Transactions: txns,
	}
}

func ToReconciliationResponse(r *domain.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		WalletID:   r.WalletID.String(),
		Balance:    r.Balance,
		LedgerSum:  r.LedgerSum,
		Consistent: r.Consistent,
	}
}
