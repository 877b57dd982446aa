package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-settlement/internal/core/domain"
	"marketplace-settlement/internal/core/ports"
	"marketplace-settlement/pkg/apperror"
	"marketplace-settlement/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PayoutServiceImpl implements ports.PayoutService.
type PayoutServiceImpl struct {
	walletRepo  ports.WalletRepository
	payoutRepo  ports.PayoutRepository
	idempRepo   ports.IdempotencyRepository
	ledger      ports.LedgerService
	idempCache  ports.IdempotencyCache
	encSvc      ports.EncryptionService
	publisher   ports.EventPublisher
	transactor  ports.DBTransactor
	currency    string
	unitTimeout time.Duration
	validate    *validator.Validate
	log         zerolog.Logger
}

// NewPayoutService creates a new PayoutServiceImpl.
func NewPayoutService(
	walletRepo ports.WalletRepository,
	payoutRepo ports.PayoutRepository,
	idempRepo ports.IdempotencyRepository,
	ledger ports.LedgerService,
	idempCache ports.IdempotencyCache,
	encSvc ports.EncryptionService,
	publisher ports.EventPublisher,
	transactor ports.DBTransactor,
	currency string,
	unitTimeout time.Duration,
	validate *validator.Validate,
	log zerolog.Logger,
) *PayoutServiceImpl {
	return &PayoutServiceImpl{
		walletRepo:  walletRepo,
		payoutRepo:  payoutRepo,
		idempRepo:   idempRepo,
		ledger:      ledger,
		idempCache:  idempCache,
		encSvc:      encSvc,
		publisher:   publisher,
		transactor:  transactor,
		currency:    currency,
		unitTimeout: unitTimeout,
		validate:    validate,
		log:         log,
	}
}

// RequestPayout debits the seller's wallet and files a PENDING payout request
// in one transaction. A supplied idempotency key is checked in redis, then in
// postgres under the wallet lock, and is stored with the payout; a replay
// returns the original payout with the account number masked. Without a key
// the call is not safe to retry blindly after a storage failure.
func (s *PayoutServiceImpl) RequestPayout(ctx context.Context, in domain.PayoutRequestInput) (*domain.PayoutRequest, error) {
	in.BankDetails = domain.BankDetails{
		AccountNumber: strings.TrimSpace(in.BankDetails.AccountNumber),
		BankName:      strings.TrimSpace(in.BankDetails.BankName),
		AccountName:   strings.TrimSpace(in.BankDetails.AccountName),
	}
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	if err := s.validate.Struct(in); err != nil {
		return nil, validation.Error(err)
	}

	// Layer 1: redis
	var idempKey string
	if in.IdempotencyKey != "" {
		idempKey = domain.PayoutIdempotencyKey(in.SellerID, in.IdempotencyKey)
		cached, err := s.idempCache.Get(ctx, idempKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
		}
		if cached != nil {
			return replayPayout(cached, in)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.unitTimeout)
	defer cancel()

	payout, replayed, err := s.debitAndFile(ctx, in)
	if err != nil {
		return nil, err
	}

	// Post-process: cache without the full account number (best-effort)
	if idempKey != "" {
		cachedCopy := *payout
		if !replayed {
			cachedCopy = maskedPayout(payout)
		}
		if respJSON, err := replayJSON(in, cachedCopy); err == nil {
			if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
				s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache payout in redis")
			}
		}
	}

	if replayed {
		s.log.Info().
			Str("payout_id", payout.ID.String()).
			Str("seller_id", in.SellerID.String()).
			Msg("payout replayed from idempotency store")
		return payout, nil
	}

	event := &domain.PayoutRequestedEvent{
		ID:            uuid.NewString(),
		PayoutID:      payout.ID,
		SellerID:      in.SellerID,
		WalletID:      payout.WalletID,
		Amount:        payout.Amount,
		Currency:      s.currency,
		BankName:      payout.BankDetails.BankName,
		MaskedAccount: payout.BankDetails.MaskedAccount(),
		OccurredAt:    payout.CreatedAt,
	}
	if err := s.publisher.PublishPayoutRequested(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("payout_id", payout.ID.String()).Msg("failed to publish payout requested event")
	}

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("seller_id", in.SellerID.String()).
		Int64("amount", payout.Amount).
		Msg("payout requested")

	return payout, nil
}

// debitAndFile runs the payout unit of work. replayed is true when the key was
// already bound to a payout and nothing was written.
func (s *PayoutServiceImpl) debitAndFile(ctx context.Context, in domain.PayoutRequestInput) (payout *domain.PayoutRequest, replayed bool, err error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, false, apperror.ErrStorageUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get wallet
	wallet, err := s.walletRepo.GetBySellerIDForUpdate(ctx, dbTx, in.SellerID)
	if err != nil {
		return nil, false, apperror.ErrStorageUnavailable(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, false, apperror.ErrNotFound("wallet")
	}

	// Layer 2: database. The wallet lock orders this read after any
	// concurrent payout with the same key has committed.
	if in.IdempotencyKey != "" {
		stored, err := s.storedPayout(ctx, wallet.ID, in)
		if err != nil || stored != nil {
			return stored, stored != nil, err
		}
	}

	// Business rule: sufficient funds
	if !wallet.CanCover(in.Amount) {
		return nil, false, apperror.ErrInsufficientFunds()
	}

	txn, err := s.ledger.DebitWallet(ctx, dbTx, wallet.ID, in.Amount, domain.TransactionKindPayoutRequest, in.BankDetails.Describe())
	if err != nil {
		return nil, false, err
	}

	rawDetails, err := json.Marshal(in.BankDetails)
	if err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("marshal bank details: %w", err))
	}
	detailsEnc, err := s.encSvc.Encrypt(string(rawDetails))
	if err != nil {
		return nil, false, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt bank details: %w", err))
	}

	now := time.Now().UTC()
	payout = &domain.PayoutRequest{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		TransactionID:  txn.ID,
		Amount:         in.Amount,
		Status:         domain.PayoutStatusPending,
		BankDetails:    in.BankDetails,
		BankDetailsEnc: detailsEnc,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.payoutRepo.Create(ctx, dbTx, payout); err != nil {
		return nil, false, apperror.ErrStorageUnavailable(fmt.Errorf("create payout request: %w", err))
	}

	if in.IdempotencyKey != "" {
		respJSON, err := replayJSON(in, maskedPayout(payout))
		if err != nil {
			return nil, false, apperror.InternalError(fmt.Errorf("marshal idempotency response: %w", err))
		}
		err = s.idempRepo.Create(ctx, dbTx, &domain.IdempotencyRecord{
			WalletID:     wallet.ID,
			Key:          in.IdempotencyKey,
			PayoutID:     payout.ID,
			RequestHash:  in.Fingerprint(),
			ResponseJSON: respJSON,
			CreatedAt:    now,
		})
		if errors.Is(err, domain.ErrIdempotencyKeyTaken) {
			// Another unit of work bound the key first: undo the debit and
			// answer with its payout.
			if err := dbTx.Rollback(ctx); err != nil {
				return nil, false, apperror.ErrStorageUnavailable(fmt.Errorf("rollback tx: %w", err))
			}
			stored, err := s.storedPayout(ctx, wallet.ID, in)
			if err != nil {
				return nil, false, err
			}
			if stored == nil {
				return nil, false, apperror.ErrStorageUnavailable(errors.New("idempotency key taken but not readable"))
			}
			return stored, true, nil
		}
		if err != nil {
			return nil, false, apperror.ErrStorageUnavailable(fmt.Errorf("store idempotency key: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, false, apperror.ErrStorageUnavailable(fmt.Errorf("commit tx: %w", err))
	}
	return payout, false, nil
}

// storedPayout returns the payout the wallet's key is bound to, or nil.
func (s *PayoutServiceImpl) storedPayout(ctx context.Context, walletID uuid.UUID, in domain.PayoutRequestInput) (*domain.PayoutRequest, error) {
	rec, err := s.idempRepo.Get(ctx, walletID, in.IdempotencyKey)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("get idempotency key: %w", err))
	}
	if rec == nil {
		return nil, nil
	}
	return replayPayout(rec.ResponseJSON, in)
}

// replayPayout decodes a stored replay and checks it was produced by the same request.
func replayPayout(raw []byte, in domain.PayoutRequestInput) (*domain.PayoutRequest, error) {
	var replay domain.PayoutReplay
	if err := json.Unmarshal(raw, &replay); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal payout replay: %w", err))
	}
	if !replay.Matches(in) {
		return nil, apperror.ErrIdempotencyConflict()
	}
	return &replay.Payout, nil
}

func replayJSON(in domain.PayoutRequestInput, masked domain.PayoutRequest) ([]byte, error) {
	return json.Marshal(&domain.PayoutReplay{RequestHash: in.Fingerprint(), Payout: masked})
}

// maskedPayout is the copy of a payout that may be stored outside the
// encrypted column.
func maskedPayout(p *domain.PayoutRequest) domain.PayoutRequest {
	masked := *p
	masked.BankDetails.AccountNumber = p.BankDetails.MaskedAccount()
	return masked
}

// ListPayouts returns the seller's payout requests, newest first, with bank
// details decrypted. A seller without a wallet has no payouts.
func (s *PayoutServiceImpl) ListPayouts(ctx context.Context, sellerID uuid.UUID, limit int) ([]domain.PayoutRequest, error) {
	wallet, err := s.walletRepo.GetBySellerID(ctx, sellerID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return []domain.PayoutRequest{}, nil
	}

	payouts, err := s.payoutRepo.ListByWallet(ctx, wallet.ID, clampLimit(limit, defaultListLimit))
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("list payouts: %w", err))
	}

	for i := range payouts {
		plain, err := s.encSvc.Decrypt(payouts[i].BankDetailsEnc)
		if err != nil {
			return nil, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt bank details: %w", err))
		}
		if err := json.Unmarshal([]byte(plain), &payouts[i].BankDetails); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("unmarshal bank details: %w", err))
		}
	}
	return payouts, nil
}
