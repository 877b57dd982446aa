package service

import (
	"context"
	"fmt"
	"time"

	"marketplace-settlement/internal/core/domain"
	"marketplace-settlement/internal/core/ports"
	"marketplace-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. A balance change and its
// ledger row are always written in the same transaction.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	currency   string
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. New wallets are opened in currency.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	currency string,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		currency:   currency,
		log:        log,
	}
}

// GetOrCreateWallet returns the seller's wallet, opening one with a zero balance if needed.
func (s *LedgerServiceImpl) GetOrCreateWallet(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (*domain.Wallet, error) {
	if sellerID == uuid.Nil {
		return nil, apperror.Validation("seller_id is required")
	}

	wallet, err := s.walletRepo.Upsert(ctx, tx, sellerID, s.currency)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("upsert wallet: %w", err))
	}
	return wallet, nil
}

// CreditWallet adds amount to the wallet and appends a positive ledger entry.
func (s *LedgerServiceImpl) CreditWallet(
	ctx context.Context,
	tx pgx.Tx,
	walletID uuid.UUID,
	amount int64,
	kind domain.TransactionKind,
	description string,
	orderRef *uuid.UUID,
) (*domain.Transaction, error) {
	if err := checkEntry(amount, kind); err != nil {
		return nil, err
	}

	balance, found, err := s.walletRepo.IncrementBalance(ctx, tx, walletID, amount)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("credit wallet: %w", err))
	}
	if !found {
		return nil, apperror.ErrNotFound("wallet")
	}

	txn, err := s.appendEntry(ctx, tx, walletID, amount, kind, description, orderRef)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("wallet_id", walletID.String()).
		Int64("amount", amount).
		Int64("balance", balance).
		Msg("wallet credited")
	return txn, nil
}

// DebitWallet subtracts amount and appends a negative ledger entry. The
// decrement is conditional on the balance covering it, so two racing debits
// can never both pass against the same funds.
func (s *LedgerServiceImpl) DebitWallet(
	ctx context.Context,
	tx pgx.Tx,
	walletID uuid.UUID,
	amount int64,
	kind domain.TransactionKind,
	description string,
) (*domain.Transaction, error) {
	if err := checkEntry(amount, kind); err != nil {
		return nil, err
	}

	balance, applied, err := s.walletRepo.DecrementBalance(ctx, tx, walletID, amount)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("debit wallet: %w", err))
	}
	if !applied {
		wallet, err := s.walletRepo.GetByIDForUpdate(ctx, tx, walletID)
		if err != nil {
			return nil, apperror.ErrStorageUnavailable(fmt.Errorf("re-read wallet: %w", err))
		}
		if wallet == nil {
			return nil, apperror.ErrNotFound("wallet")
		}
		return nil, apperror.ErrInsufficientFunds()
	}

	txn, err := s.appendEntry(ctx, tx, walletID, -amount, kind, description, nil)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("wallet_id", walletID.String()).
		Int64("amount", amount).
		Int64("balance", balance).
		Msg("wallet debited")
	return txn, nil
}

func (s *LedgerServiceImpl) appendEntry(
	ctx context.Context,
	tx pgx.Tx,
	walletID uuid.UUID,
	signedAmount int64,
	kind domain.TransactionKind,
	description string,
	orderRef *uuid.UUID,
) (*domain.Transaction, error) {
	txn := &domain.Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		Amount:      signedAmount,
		Kind:        kind,
		Description: description,
		OrderID:     orderRef,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, tx, txn); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("append ledger entry: %w", err))
	}
	return txn, nil
}

func checkEntry(amount int64, kind domain.TransactionKind) error {
	if amount <= 0 {
		return apperror.ErrInvalidAmount()
	}
	if !kind.IsValid() {
		return apperror.Validation(fmt.Sprintf("unknown transaction kind %q", kind))
	}
	return nil
}
