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

func newTestPayout(walletID uuid.UUID) *domain.PayoutRequest {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.PayoutRequest{
		ID:             uuid.New(),
		WalletID:       walletID,
		TransactionID:  uuid.New(),
		Amount:         2000,
		Status:         domain.PayoutStatusPending,
		BankDetailsEnc: "encrypted_bank_details",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestPayoutRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	p := newTestPayout(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payout_requests").
		WithArgs(p.ID, p.WalletID, p.TransactionID, p.Amount, p.Status, p.BankDetailsEnc, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_Create_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	p := newTestPayout(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payout_requests").
		WillReturnError(errors.New("check constraint violated"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert payout request")
}

func TestPayoutRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	p := newTestPayout(uuid.New())

	rows := pgxmock.NewRows([]string{"id", "wallet_id", "transaction_id", "amount", "status", "bank_details_enc", "created_at", "updated_at"}).
		AddRow(p.ID, p.WalletID, p.TransactionID, p.Amount, p.Status, p.BankDetailsEnc, p.CreatedAt, p.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM payout_requests WHERE wallet_id").
		WithArgs(p.WalletID, 10).
		WillReturnRows(rows)

	payouts, err := repo.ListByWallet(context.Background(), p.WalletID, 10)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, p.ID, payouts[0].ID)
	assert.Equal(t, domain.PayoutStatusPending, payouts[0].Status)
	assert.Equal(t, "encrypted_bank_details", payouts[0].BankDetailsEnc)
	assert.NoError(t, mock.ExpectationsWereMet())
}
