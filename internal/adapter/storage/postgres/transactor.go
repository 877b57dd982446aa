package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// ledgerTxOptions: settlement and payout units of work run at READ COMMITTED and
// serialize on wallet/order row locks (SELECT ... FOR UPDATE and conditional
// UPDATEs), so no stronger isolation level is needed.
var ledgerTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.ReadCommitted,
	AccessMode: pgx.ReadWrite,
}

// Transactor implements ports.DBTransactor.
type Transactor struct {
	pool Pool
}

func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin starts a read-write unit of work.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.BeginTx(ctx, ledgerTxOptions)
}
