package postgres

import (
	"context"
	"testing"
	"time"

	"marketplace-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepo_GetByPaymentReferenceForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo()
	orderID := uuid.New()
	sellerA, sellerB := uuid.New(), uuid.New()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE payment_reference = \\$1 FOR UPDATE").
		WithArgs("ref-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "buyer_id", "total_amount", "status", "payment_reference", "created_at"}).
			AddRow(orderID, uuid.New(), int64(9000), domain.OrderStatusPending, "ref-1", createdAt))
	mock.ExpectQuery("SELECT .+ FROM order_items oi JOIN product_variants pv .+ JOIN products p").
		WithArgs(orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "variant_id", "seller_id", "unit_price", "quantity"}).
			AddRow(uuid.New(), uuid.New(), sellerA, int64(5000), int64(1)).
			AddRow(uuid.New(), uuid.New(), sellerB, int64(2000), int64(2)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	order, err := repo.GetByPaymentReferenceForUpdate(context.Background(), tx, "ref-1")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, int64(9000), order.TotalAmount)
	require.Len(t, order.Items, 2)
	assert.Equal(t, sellerA, order.Items[0].SellerID)
	assert.Equal(t, int64(2), order.Items[1].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetByPaymentReferenceForUpdate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE payment_reference").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	order, err := repo.GetByPaymentReferenceForUpdate(context.Background(), tx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_MarkCompleted(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		wantErr bool
	}{
		{"pending order", 1, false},
		{"already completed", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewOrderRepo()
			orderID := uuid.New()

			mock.ExpectBegin()
			mock.ExpectExec("UPDATE orders SET status").
				WithArgs(domain.OrderStatusCompleted, orderID, domain.OrderStatusPending).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.rows))

			tx, err := mock.Begin(context.Background())
			require.NoError(t, err)

			err = repo.MarkCompleted(context.Background(), tx, orderID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "pending order not found")
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
