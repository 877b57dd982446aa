package postgres

import (
	"context"
	"errors"
	"fmt"
)

// schemaProbe fails the check when the pool is reachable but the ledger
// tables were never migrated.
const schemaProbe = `SELECT to_regclass('ledger_transactions') IS NOT NULL AND to_regclass('wallets') IS NOT NULL`

var errSchemaMissing = errors.New("ledger schema not migrated")

// HealthCheck implements ports.HealthChecker for PostgreSQL.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping checks connectivity and that the ledger tables exist.
func (h *HealthCheck) Ping(ctx context.Context) error {
	var ok bool
	if err := h.pool.QueryRow(ctx, schemaProbe).Scan(&ok); err != nil {
		return fmt.Errorf("probe ledger schema: %w", err)
	}
	if !ok {
		return errSchemaMissing
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgres"
}
