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

func newTestTransaction(walletID uuid.UUID, amount int64, kind domain.TransactionKind, orderID *uuid.UUID) *domain.Transaction {
	return &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		Amount:      amount,
		Kind:        kind,
		Description: "Sale earnings for order",
		OrderID:     orderID,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func transactionColumns() []string {
	return []string{"id", "wallet_id", "amount", "kind", "description", "order_id", "created_at"}
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	orderID := uuid.New()
	txn := newTestTransaction(uuid.New(), 9000, domain.TransactionKindSale, &orderID)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_transactions").
		WithArgs(txn.ID, txn.WalletID, txn.Amount, txn.Kind, txn.Description, txn.OrderID, txn.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	walletID := uuid.New()
	orderID := uuid.New()
	debit := newTestTransaction(walletID, -2000, domain.TransactionKindPayoutRequest, nil)
	credit := newTestTransaction(walletID, 5000, domain.TransactionKindSale, &orderID)

	rows := pgxmock.NewRows(transactionColumns()).
		AddRow(debit.ID, debit.WalletID, debit.Amount, debit.Kind, debit.Description, debit.OrderID, debit.CreatedAt).
		AddRow(credit.ID, credit.WalletID, credit.Amount, credit.Kind, credit.Description, credit.OrderID, credit.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM ledger_transactions WHERE wallet_id = \\$1 .+ ORDER BY created_at DESC").
		WithArgs(walletID, 20).
		WillReturnRows(rows)

	txns, err := repo.ListRecent(context.Background(), walletID, 20)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, int64(-2000), txns[0].Amount)
	assert.Nil(t, txns[0].OrderID)
	assert.Equal(t, domain.TransactionKindSale, txns[1].Kind)
	require.NotNil(t, txns[1].OrderID)
	assert.Equal(t, orderID, *txns[1].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_SumByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	walletID := uuid.New()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\)").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(3000)))

	sum, err := repo.SumByWallet(context.Background(), walletID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}
