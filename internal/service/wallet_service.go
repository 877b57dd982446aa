package service

import (
	"context"
	"fmt"
	"time"

	"marketplace-settlement/internal/core/domain"
	"marketplace-settlement/internal/core/ports"
	"marketplace-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo   ports.WalletRepository
	txRepo       ports.TransactionRepository
	ledger       ports.LedgerService
	transactor   ports.DBTransactor
	historyLimit int
	unitTimeout  time.Duration
	log          zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	ledger ports.LedgerService,
	transactor ports.DBTransactor,
	historyLimit int,
	unitTimeout time.Duration,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo:   walletRepo,
		txRepo:       txRepo,
		ledger:       ledger,
		transactor:   transactor,
		historyLimit: historyLimit,
		unitTimeout:  unitTimeout,
		log:          log,
	}
}

// GetWallet returns the seller's wallet, opening an empty one on first access,
// with its most recent ledger entries newest first.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, sellerID uuid.UUID, limit int) (*ports.WalletView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.unitTimeout)
	defer cancel()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.ledger.GetOrCreateWallet(ctx, dbTx, sellerID)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	txns, err := s.txRepo.ListRecent(ctx, wallet.ID, clampLimit(limit, s.historyLimit))
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("list transactions: %w", err))
	}

	return &ports.WalletView{Wallet: wallet, Transactions: txns}, nil
}

// ReconcileWallet compares the cached balance with the ledger sum. The wallet
// row stays locked while the sum is taken so no credit or debit lands in between.
func (s *WalletServiceImpl) ReconcileWallet(ctx context.Context, sellerID uuid.UUID) (*domain.Reconciliation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.unitTimeout)
	defer cancel()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetBySellerIDForUpdate(ctx, dbTx, sellerID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	sum, err := s.txRepo.SumByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("sum ledger: %w", err))
	}

	rec := &domain.Reconciliation{
		WalletID:   wallet.ID,
		Balance:    wallet.Balance,
		LedgerSum:  sum,
		Consistent: wallet.Balance == sum,
	}
	if !rec.Consistent {
		s.log.Error().
			Str("wallet_id", wallet.ID.String()).
			Str("seller_id", sellerID.String()).
			Int64("balance", wallet.Balance).
			Int64("ledger_sum", sum).
			Msg("wallet balance does not match ledger")
	}
	return rec, nil
}
