package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-settlement/internal/core/domain"
	"marketplace-settlement/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc        *WalletServiceImpl
	walletRepo *mocks.MockWalletRepository
	txRepo     *mocks.MockTransactionRepository
	ledger     *mocks.MockLedgerService
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		ledger:     mocks.NewMockLedgerService(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewWalletService(d.walletRepo, d.txRepo, d.ledger, d.transactor, 20, 5*time.Second, newTestLogger())
	return d
}

func TestWalletService_GetWallet_CreatesOnFirstAccess(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	sellerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), SellerID: sellerID, Balance: 0, Currency: "NGN"}
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.ledger.EXPECT().GetOrCreateWallet(gomock.Any(), tx, sellerID).Return(wallet, nil)
	d.txRepo.EXPECT().ListRecent(gomock.Any(), wallet.ID, 20).Return([]domain.Transaction{}, nil)

	view, err := d.svc.GetWallet(context.Background(), sellerID, 0)
	require.NoError(t, err)
	assert.Equal(t, wallet, view.Wallet)
	assert.Empty(t, view.Transactions)
	assert.True(t, tx.committed)
}

func TestWalletService_GetWallet_WithHistory(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	sellerID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), SellerID: sellerID, Balance: 3000}
	history := []domain.Transaction{
		{ID: uuid.New(), WalletID: wallet.ID, Amount: -2000, Kind: domain.TransactionKindPayoutRequest},
		{ID: uuid.New(), WalletID: wallet.ID, Amount: 5000, Kind: domain.TransactionKindSale},
	}

	d.transactor.EXPECT().Begin(gomock.Any()).Return(&mockTx{}, nil)
	d.ledger.EXPECT().GetOrCreateWallet(gomock.Any(), gomock.Any(), sellerID).Return(wallet, nil)
	d.txRepo.EXPECT().ListRecent(gomock.Any(), wallet.ID, 5).Return(history, nil)

	view, err := d.svc.GetWallet(context.Background(), sellerID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), view.Wallet.Balance)
	assert.Len(t, view.Transactions, 2)
}

func TestWalletService_GetWallet_StorageErrors(t *testing.T) {
	t.Run("begin fails", func(t *testing.T) {
		d := setupWalletService(t)
		defer d.ctrl.Finish()

		d.transactor.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("pool closed"))

		_, err := d.svc.GetWallet(context.Background(), uuid.New(), 0)
		assertAppError(t, err, "SYS_002")
	})

	t.Run("history fails", func(t *testing.T) {
		d := setupWalletService(t)
		defer d.ctrl.Finish()

		d.transactor.EXPECT().Begin(gomock.Any()).Return(&mockTx{}, nil)
		d.ledger.EXPECT().GetOrCreateWallet(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Wallet{ID: uuid.New()}, nil)
		d.txRepo.EXPECT().ListRecent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := d.svc.GetWallet(context.Background(), uuid.New(), 0)
		assertAppError(t, err, "SYS_002")
	})
}

func TestWalletService_ReconcileWallet(t *testing.T) {
	tests := []struct {
		name       string
		balance    int64
		ledgerSum  int64
		consistent bool
	}{
		{"consistent", 3000, 3000, true},
		{"drifted", 3000, 2500, false},
		{"empty", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupWalletService(t)
			defer d.ctrl.Finish()

			sellerID := uuid.New()
			walletID := uuid.New()
			tx := &mockTx{}

			d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
			d.walletRepo.EXPECT().GetBySellerIDForUpdate(gomock.Any(), tx, sellerID).
				Return(&domain.Wallet{ID: walletID, SellerID: sellerID, Balance: tt.balance}, nil)
			d.txRepo.EXPECT().SumByWallet(gomock.Any(), walletID).Return(tt.ledgerSum, nil)

			rec, err := d.svc.ReconcileWallet(context.Background(), sellerID)
			require.NoError(t, err)
			assert.Equal(t, walletID, rec.WalletID)
			assert.Equal(t, tt.balance, rec.Balance)
			assert.Equal(t, tt.ledgerSum, rec.LedgerSum)
			assert.Equal(t, tt.consistent, rec.Consistent)
		})
	}
}

func TestWalletService_ReconcileWallet_NoWallet(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	d.transactor.EXPECT().Begin(gomock.Any()).Return(&mockTx{}, nil)
	d.walletRepo.EXPECT().GetBySellerIDForUpdate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := d.svc.ReconcileWallet(context.Background(), uuid.New())
	assertAppError(t, err, "LED_001")
}
