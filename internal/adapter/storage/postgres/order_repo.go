package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository against the order subsystem's tables.
type OrderRepo struct{}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{}
}

// GetByPaymentReferenceForUpdate locks the order row and loads its items,
// resolving each item's seller through its product variant.
// Returns (nil, nil) when no order carries the reference.
func (r *OrderRepo) GetByPaymentReferenceForUpdate(ctx context.Context, tx pgx.Tx, paymentReference string) (*domain.Order, error) {
	query := `SELECT id, buyer_id, total_amount, status, payment_reference, created_at
		FROM orders WHERE payment_reference = $1 FOR UPDATE`

	o := &domain.Order{}
	err := tx.QueryRow(ctx, query, paymentReference).Scan(
		&o.ID, &o.BuyerID, &o.TotalAmount, &o.Status, &o.PaymentReference, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by payment reference: %w", err)
	}

	itemsQuery := `SELECT oi.id, oi.variant_id, p.seller_id, oi.unit_price, oi.quantity
		FROM order_items oi
		JOIN product_variants pv ON pv.id = oi.variant_id
		JOIN products p ON p.id = pv.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := tx.Query(ctx, itemsQuery, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := domain.OrderItem{}
		if err := rows.Scan(&item.ID, &item.VariantID, &item.SellerID, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return o, nil
}

// MarkCompleted flips a PENDING order to COMPLETED.
func (r *OrderRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, domain.OrderStatusCompleted, orderID, domain.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("mark order completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending order not found: %s", orderID)
	}
	return nil
}
