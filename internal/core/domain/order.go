package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is owned by the order subsystem; settlement only moves PENDING to COMPLETED.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// Order is read from the order subsystem together with its items.
type Order struct {
	ID               uuid.UUID   `json:"id"`
	BuyerID          uuid.UUID   `json:"buyer_id"`
	TotalAmount      int64       `json:"total_amount"`
	Status           OrderStatus `json:"status"`
	PaymentReference string      `json:"payment_reference"`
	Items            []OrderItem `json:"items"`
	CreatedAt        time.Time   `json:"created_at"`
}

// OrderItem is a line item resolved to the seller of its product variant.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	VariantID uuid.UUID `json:"variant_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int64     `json:"quantity"`
}

// IsCompleted returns true once the order has been settled.
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// SellerGross is the gross sale amount owed to one seller for an order.
type SellerGross struct {
	SellerID uuid.UUID
	Gross    int64
}

// GrossBySeller sums unit_price × quantity per seller, ordered by seller id so
// wallets are always locked in the same order.
func (o *Order) GrossBySeller() []SellerGross {
	totals := make(map[uuid.UUID]int64)
	for _, item := range o.Items {
		totals[item.SellerID] += item.UnitPrice * item.Quantity
	}

	out := make([]SellerGross, 0, len(totals))
	for sellerID, gross := range totals {
		out = append(out, SellerGross{SellerID: sellerID, Gross: gross})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SellerID.String() < out[j].SellerID.String()
	})
	return out
}
