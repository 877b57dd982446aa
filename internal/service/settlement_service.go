package service

import (
	"context"
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

const idempotencyTTL = 24 * time.Hour

// SettlementOptions are the tunables of a settlement run.
type SettlementOptions struct {
	Policy      domain.CommissionPolicy
	Currency    string
	UnitTimeout time.Duration
}

// SettlementServiceImpl implements ports.SettlementService.
type SettlementServiceImpl struct {
	orderRepo  ports.OrderRepository
	ledger     ports.LedgerService
	idempCache ports.IdempotencyCache
	publisher  ports.EventPublisher
	transactor ports.DBTransactor
	opts       SettlementOptions
	validate   *validator.Validate
	log        zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	orderRepo ports.OrderRepository,
	ledger ports.LedgerService,
	idempCache ports.IdempotencyCache,
	publisher ports.EventPublisher,
	transactor ports.DBTransactor,
	opts SettlementOptions,
	validate *validator.Validate,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		orderRepo:  orderRepo,
		ledger:     ledger,
		idempCache: idempCache,
		publisher:  publisher,
		transactor: transactor,
		opts:       opts,
		validate:   validate,
		log:        log,
	}
}

type settleInput struct {
	Reference      string `json:"reference" validate:"required,max=255"`
	VerifiedAmount int64  `json:"amount" validate:"gt=0"`
}

// SettleOrder credits every seller of the order paid by paymentReference, at
// most once. OrderNotFound, AlreadySettled and AmountMismatch are outcomes,
// not errors. A returned error means nothing was committed.
func (s *SettlementServiceImpl) SettleOrder(ctx context.Context, paymentReference string, verifiedAmount int64) (*domain.SettlementResult, error) {
	in := settleInput{Reference: strings.TrimSpace(paymentReference), VerifiedAmount: verifiedAmount}
	if err := s.validate.Struct(in); err != nil {
		return nil, validation.Error(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.UnitTimeout)
	defer cancel()

	// Layer 1: Redis marker
	settledKey := domain.SettledKey(in.Reference)
	cached, err := s.idempCache.Get(ctx, settledKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", settledKey).Msg("redis settlement check failed, falling through to DB")
	}
	if cached != nil {
		result := &domain.SettlementResult{Outcome: domain.SettlementOutcomeAlreadySettled}
		if orderID, err := uuid.ParseBytes(cached); err == nil {
			result.OrderID = &orderID
		}
		return result, nil
	}

	// Layer 2: order row lock
	result, err := s.settle(ctx, in)
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case domain.SettlementOutcomeSettled:
		s.markSettled(ctx, settledKey, *result.OrderID)
		s.notifySellers(ctx, *result.OrderID, result.Credits)
	case domain.SettlementOutcomeAlreadySettled:
		s.markSettled(ctx, settledKey, *result.OrderID)
	}
	return result, nil
}

func (s *SettlementServiceImpl) settle(ctx context.Context, in settleInput) (*domain.SettlementResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order, err := s.orderRepo.GetByPaymentReferenceForUpdate(ctx, dbTx, in.Reference)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("lock order: %w", err))
	}
	if order == nil {
		s.log.Warn().Str("reference", in.Reference).Msg("no order for payment reference")
		return &domain.SettlementResult{Outcome: domain.SettlementOutcomeOrderNotFound}, nil
	}

	orderID := order.ID
	if order.IsCompleted() {
		s.log.Info().Str("order_id", orderID.String()).Msg("order already settled")
		return &domain.SettlementResult{Outcome: domain.SettlementOutcomeAlreadySettled, OrderID: &orderID}, nil
	}

	if order.TotalAmount != in.VerifiedAmount {
		s.log.Error().
			Str("order_id", orderID.String()).
			Str("reference", in.Reference).
			Int64("expected", order.TotalAmount).
			Int64("verified", in.VerifiedAmount).
			Msg("payment amount does not match order total, settlement skipped")
		return &domain.SettlementResult{Outcome: domain.SettlementOutcomeAmountMismatch, OrderID: &orderID}, nil
	}

	description := fmt.Sprintf("Sale earnings for order %s", orderID)
	credits := make([]domain.SellerCredit, 0, len(order.Items))
	for _, sg := range order.GrossBySeller() {
		commission, net := s.opts.Policy.Split(sg.Gross)

		wallet, err := s.ledger.GetOrCreateWallet(ctx, dbTx, sg.SellerID)
		if err != nil {
			return nil, err
		}

		credit := domain.SellerCredit{
			SellerID:   sg.SellerID,
			WalletID:   wallet.ID,
			Gross:      sg.Gross,
			Commission: commission,
			Net:        net,
		}
		if net > 0 {
			txn, err := s.ledger.CreditWallet(ctx, dbTx, wallet.ID, net, domain.TransactionKindSale, description, &orderID)
			if err != nil {
				return nil, err
			}
			credit.TransactionID = txn.ID
		}
		credits = append(credits, credit)
	}

	if err := s.orderRepo.MarkCompleted(ctx, dbTx, orderID); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("mark order completed: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("order_id", orderID.String()).
		Int("sellers", len(credits)).
		Int64("total", order.TotalAmount).
		Msg("order settled")

	return &domain.SettlementResult{
		Outcome: domain.SettlementOutcomeSettled,
		OrderID: &orderID,
		Credits: credits,
	}, nil
}

// markSettled is best-effort; the order status is authoritative.
func (s *SettlementServiceImpl) markSettled(ctx context.Context, key string, orderID uuid.UUID) {
	if err := s.idempCache.Set(ctx, key, []byte(orderID.String()), idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache settlement in redis")
	}
}

func (s *SettlementServiceImpl) notifySellers(ctx context.Context, orderID uuid.UUID, credits []domain.SellerCredit) {
	now := time.Now().UTC()
	for _, c := range credits {
		if c.Net <= 0 {
			continue
		}
		event := &domain.SellerCreditedEvent{
			ID:            uuid.NewString(),
			SellerID:      c.SellerID,
			WalletID:      c.WalletID,
			OrderID:       orderID,
			TransactionID: c.TransactionID,
			Gross:         c.Gross,
			Commission:    c.Commission,
			Net:           c.Net,
			Currency:      s.opts.Currency,
			OccurredAt:    now,
		}
		if err := s.publisher.PublishSellerCredited(ctx, event); err != nil {
			s.log.Warn().Err(err).
				Str("order_id", orderID.String()).
				Str("seller_id", c.SellerID.String()).
				Msg("failed to publish seller credited event")
		}
	}
}
