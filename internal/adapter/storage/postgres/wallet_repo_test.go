package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(sellerID uuid.UUID, balance int64) *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		ID:        uuid.New(),
		SellerID:  sellerID,
		Balance:   balance,
		Currency:  "NGN",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "seller_id", "balance", "currency", "created_at", "updated_at"}).
		AddRow(w.ID, w.SellerID, w.Balance, w.Currency, w.CreatedAt, w.UpdatedAt)
}

func TestWalletRepo_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New(), 0)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO wallets .+ ON CONFLICT \\(seller_id\\) DO UPDATE .+ RETURNING").
		WithArgs(pgxmock.AnyArg(), w.SellerID, "NGN").
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.Upsert(context.Background(), tx, w.SellerID, "NGN")
	require.NoError(t, err)
	assert.Equal(t, w.ID, result.ID)
	assert.Equal(t, int64(0), result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetBySellerID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New(), 5000)

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE seller_id").
		WithArgs(w.SellerID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetBySellerID(context.Background(), w.SellerID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(5000), result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetBySellerID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	sellerID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE seller_id").
		WithArgs(sellerID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	result, err := repo.GetBySellerID(context.Background(), sellerID)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetBySellerIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New(), 1000)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE seller_id .+ FOR UPDATE").
		WithArgs(w.SellerID).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetBySellerIDForUpdate(context.Background(), tx, w.SellerID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByIDForUpdate_DBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(id).
		WillReturnError(errors.New("lock timeout"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, id)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_IncrementBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance = balance \\+ \\$1").
		WithArgs(int64(9000), walletID).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(9000)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	balance, found, err := repo.IncrementBalance(context.Background(), tx, walletID, 9000)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(9000), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_DecrementBalance(t *testing.T) {
	tests := []struct {
		name        string
		rows        *pgxmock.Rows
		wantApplied bool
		wantBalance int64
	}{
		{
			name:        "sufficient balance",
			rows:        pgxmock.NewRows([]string{"balance"}).AddRow(int64(3000)),
			wantApplied: true,
			wantBalance: 3000,
		},
		{
			name:        "floor reached",
			rows:        pgxmock.NewRows([]string{"balance"}),
			wantApplied: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewWalletRepo(mock)
			walletID := uuid.New()

			mock.ExpectBegin()
			mock.ExpectQuery("UPDATE wallets SET balance = balance - \\$1 .+ AND balance >= \\$1").
				WithArgs(int64(2000), walletID).
				WillReturnRows(tt.rows)

			tx, err := mock.Begin(context.Background())
			require.NoError(t, err)

			balance, applied, err := repo.DecrementBalance(context.Background(), tx, walletID, 2000)
			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, applied)
			assert.Equal(t, tt.wantBalance, balance)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
