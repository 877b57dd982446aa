package service

import (
	"context"
	"errors"
	"sync"

	"marketplace-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// memStore is a serializable in-memory stand-in for PostgreSQL. A unit of work
// holds txMu from Begin until Commit or Rollback; Rollback restores the
// snapshot taken at Begin.
type memStore struct {
	txMu   sync.Mutex
	dataMu sync.Mutex
	data   memData
}

type memData struct {
	wallets  map[uuid.UUID]domain.Wallet
	bySeller map[uuid.UUID]uuid.UUID
	txns     []domain.Transaction
	payouts  []domain.PayoutRequest
	orders   map[string]domain.Order
	idemKeys map[idemKey]domain.IdempotencyRecord
}

type idemKey struct {
	walletID uuid.UUID
	key      string
}

func newMemStore() *memStore {
	return &memStore{data: memData{
		wallets:  map[uuid.UUID]domain.Wallet{},
		bySeller: map[uuid.UUID]uuid.UUID{},
		orders:   map[string]domain.Order{},
		idemKeys: map[idemKey]domain.IdempotencyRecord{},
	}}
}

func (d memData) clone() memData {
	out := memData{
		wallets:  make(map[uuid.UUID]domain.Wallet, len(d.wallets)),
		bySeller: make(map[uuid.UUID]uuid.UUID, len(d.bySeller)),
		txns:     append([]domain.Transaction(nil), d.txns...),
		payouts:  append([]domain.PayoutRequest(nil), d.payouts...),
		orders:   make(map[string]domain.Order, len(d.orders)),
		idemKeys: make(map[idemKey]domain.IdempotencyRecord, len(d.idemKeys)),
	}
	for k, v := range d.wallets {
		out.wallets[k] = v
	}
	for k, v := range d.bySeller {
		out.bySeller[k] = v
	}
	for k, v := range d.orders {
		out.orders[k] = v
	}
	for k, v := range d.idemKeys {
		out.idemKeys[k] = v
	}
	return out
}

func (s *memStore) with(fn func(d *memData)) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	fn(&s.data)
}

// ---- DBTransactor ----

type memTx struct {
	pgx.Tx
	store *memStore
	snap  memData
	done  bool
}

func (s *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	s.txMu.Lock()
	tx := &memTx{store: s}
	s.with(func(d *memData) { tx.snap = d.clone() })
	return tx, nil
}

func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.with(func(d *memData) { *d = t.snap })
	t.store.txMu.Unlock()
	return nil
}

// ---- seeding ----

func (s *memStore) seedOrder(ref string, items ...domain.OrderItem) domain.Order {
	o := *pendingOrder(ref, items...)
	s.with(func(d *memData) { d.orders[ref] = o })
	return o
}

func (s *memStore) seedWallet(sellerID uuid.UUID, balance int64) domain.Wallet {
	w := domain.Wallet{ID: uuid.New(), SellerID: sellerID, Balance: balance, Currency: "NGN"}
	s.with(func(d *memData) {
		d.wallets[w.ID] = w
		d.bySeller[sellerID] = w.ID
		if balance > 0 {
			d.txns = append(d.txns, domain.Transaction{
				ID: uuid.New(), WalletID: w.ID, Amount: balance, Kind: domain.TransactionKindSale, Description: "opening balance",
			})
		}
	})
	return w
}

func (s *memStore) wallet(sellerID uuid.UUID) (domain.Wallet, bool) {
	var w domain.Wallet
	var ok bool
	s.with(func(d *memData) {
		var id uuid.UUID
		if id, ok = d.bySeller[sellerID]; ok {
			w = d.wallets[id]
		}
	})
	return w, ok
}

func (s *memStore) entries(walletID uuid.UUID) []domain.Transaction {
	var out []domain.Transaction
	s.with(func(d *memData) {
		for _, t := range d.txns {
			if t.WalletID == walletID {
				out = append(out, t)
			}
		}
	})
	return out
}

func (s *memStore) order(ref string) domain.Order {
	var o domain.Order
	s.with(func(d *memData) { o = d.orders[ref] })
	return o
}

// ---- WalletRepository ----

type memWalletRepo struct{ s *memStore }

func (r memWalletRepo) Upsert(_ context.Context, _ pgx.Tx, sellerID uuid.UUID, currency string) (*domain.Wallet, error) {
	var w domain.Wallet
	r.s.with(func(d *memData) {
		if id, ok := d.bySeller[sellerID]; ok {
			w = d.wallets[id]
			return
		}
		w = domain.Wallet{ID: uuid.New(), SellerID: sellerID, Currency: currency}
		d.wallets[w.ID] = w
		d.bySeller[sellerID] = w.ID
	})
	return &w, nil
}

func (r memWalletRepo) GetBySellerID(_ context.Context, sellerID uuid.UUID) (*domain.Wallet, error) {
	if w, ok := r.s.wallet(sellerID); ok {
		return &w, nil
	}
	return nil, nil
}

func (r memWalletRepo) GetBySellerIDForUpdate(ctx context.Context, _ pgx.Tx, sellerID uuid.UUID) (*domain.Wallet, error) {
	return r.GetBySellerID(ctx, sellerID)
}

func (r memWalletRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	var w domain.Wallet
	var ok bool
	r.s.with(func(d *memData) { w, ok = d.wallets[id] })
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r memWalletRepo) IncrementBalance(_ context.Context, _ pgx.Tx, walletID uuid.UUID, amount int64) (int64, bool, error) {
	var balance int64
	var found bool
	r.s.with(func(d *memData) {
		w, ok := d.wallets[walletID]
		if !ok {
			return
		}
		w.Balance += amount
		d.wallets[walletID] = w
		balance, found = w.Balance, true
	})
	return balance, found, nil
}

func (r memWalletRepo) DecrementBalance(_ context.Context, _ pgx.Tx, walletID uuid.UUID, amount int64) (int64, bool, error) {
	var balance int64
	var applied bool
	r.s.with(func(d *memData) {
		w, ok := d.wallets[walletID]
		if !ok || w.Balance < amount {
			return
		}
		w.Balance -= amount
		d.wallets[walletID] = w
		balance, applied = w.Balance, true
	})
	return balance, applied, nil
}

// ---- TransactionRepository ----

type memTxnRepo struct{ s *memStore }

func (r memTxnRepo) Create(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
	r.s.with(func(d *memData) { d.txns = append(d.txns, *txn) })
	return nil
}

func (r memTxnRepo) ListRecent(_ context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	out := r.s.entries(walletID)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memTxnRepo) SumByWallet(_ context.Context, walletID uuid.UUID) (int64, error) {
	var sum int64
	for _, t := range r.s.entries(walletID) {
		sum += t.Amount
	}
	return sum, nil
}

// ---- PayoutRepository ----

type memPayoutRepo struct{ s *memStore }

func (r memPayoutRepo) Create(_ context.Context, _ pgx.Tx, p *domain.PayoutRequest) error {
	stored := *p
	stored.BankDetails = domain.BankDetails{}
	r.s.with(func(d *memData) { d.payouts = append(d.payouts, stored) })
	return nil
}

func (r memPayoutRepo) ListByWallet(_ context.Context, walletID uuid.UUID, limit int) ([]domain.PayoutRequest, error) {
	var out []domain.PayoutRequest
	r.s.with(func(d *memData) {
		for i := len(d.payouts) - 1; i >= 0 && len(out) < limit; i-- {
			if d.payouts[i].WalletID == walletID {
				out = append(out, d.payouts[i])
			}
		}
	})
	return out, nil
}

// ---- IdempotencyRepository ----

type memIdempotencyRepo struct{ s *memStore }

func (r memIdempotencyRepo) Create(_ context.Context, _ pgx.Tx, rec *domain.IdempotencyRecord) error {
	k := idemKey{rec.WalletID, rec.Key}
	var err error
	r.s.with(func(d *memData) {
		if _, taken := d.idemKeys[k]; taken {
			err = domain.ErrIdempotencyKeyTaken
			return
		}
		d.idemKeys[k] = *rec
	})
	return err
}

func (r memIdempotencyRepo) Get(_ context.Context, walletID uuid.UUID, key string) (*domain.IdempotencyRecord, error) {
	var rec domain.IdempotencyRecord
	var ok bool
	r.s.with(func(d *memData) { rec, ok = d.idemKeys[idemKey{walletID, key}] })
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// ---- OrderRepository ----

type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) GetByPaymentReferenceForUpdate(_ context.Context, _ pgx.Tx, ref string) (*domain.Order, error) {
	var o domain.Order
	var ok bool
	r.s.with(func(d *memData) { o, ok = d.orders[ref] })
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r memOrderRepo) MarkCompleted(_ context.Context, _ pgx.Tx, orderID uuid.UUID) error {
	var err error = errors.New("pending order not found")
	r.s.with(func(d *memData) {
		for ref, o := range d.orders {
			if o.ID == orderID && o.Status == domain.OrderStatusPending {
				o.Status = domain.OrderStatusCompleted
				d.orders[ref] = o
				err = nil
				return
			}
		}
	})
	return err
}

// ---- EventPublisher ----

type recordingPublisher struct {
	mu      sync.Mutex
	credits []*domain.SellerCreditedEvent
	payouts []*domain.PayoutRequestedEvent
}

func (p *recordingPublisher) PublishSellerCredited(_ context.Context, e *domain.SellerCreditedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.credits = append(p.credits, e)
	return nil
}

func (p *recordingPublisher) PublishPayoutRequested(_ context.Context, e *domain.PayoutRequestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payouts = append(p.payouts, e)
	return nil
}
