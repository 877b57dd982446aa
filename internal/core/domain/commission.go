package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CommissionPolicy is the platform's cut of each seller's gross sale.
type CommissionPolicy struct {
	Rate decimal.Decimal
}

// NewCommissionPolicy parses a decimal rate such as "0.10". The rate must be in [0, 1).
func NewCommissionPolicy(rate string) (CommissionPolicy, error) {
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return CommissionPolicy{}, fmt.Errorf("parsing commission rate %q: %w", rate, err)
	}
	if r.IsNegative() || r.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return CommissionPolicy{}, fmt.Errorf("commission rate must be in [0, 1), got %s", r)
	}
	return CommissionPolicy{Rate: r}, nil
}

// Split returns the commission and net earnings for gross. The commission is
// rounded half up to whole minor units so net + commission == gross.
func (p CommissionPolicy) Split(gross int64) (commission, net int64) {
	c := decimal.NewFromInt(gross).Mul(p.Rate).Round(0)
	commission = c.IntPart()
	return commission, gross - commission
}
