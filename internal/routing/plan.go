package routing

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/payday/internal/money"
)

// Plan is the computed split of one paycheck. Remainder + TotalTransfers == Gross exactly.
type Plan struct {
	RuleKey          string // resolved rule, empty when the requested key is unknown
	Gross            decimal.Decimal
	PrimaryAccountID int64
	Transfers        []Transfer
	TotalTransfers   decimal.Decimal
	Remainder        decimal.Decimal // may be negative
}

// Plan splits gross under the rule named by key. The empty key selects the
// default rule; an unknown key routes nothing and leaves the gross in the
// primary account.
func (t *Table) Plan(gross decimal.Decimal, key string) (*Plan, error) {
	if err := money.ValidateAmount(gross); err != nil {
		return nil, err
	}

	p := &Plan{
		Gross:            gross,
		PrimaryAccountID: t.primaryID,
		TotalTransfers:   decimal.Zero,
	}

	if rule, ok := t.Rule(key); ok {
		p.RuleKey = rule.Key
		p.Transfers = rule.Transfers
		p.TotalTransfers = rule.Total()
	} else {
		slog.Warn("unknown pay type, nothing routed", "pay_type", key)
	}

	p.Remainder = gross.Sub(p.TotalTransfers)

	if p.Remainder.IsNegative() {
		slog.Warn("paycheck does not cover transfers, primary account will drop",
			"gross", money.Format(gross),
			"transfers", money.Format(p.TotalTransfers),
			"rule", p.RuleKey,
		)
	}

	return p, nil
}

// Deltas maps every touched account to its balance change.
func (p *Plan) Deltas() map[int64]decimal.Decimal {
	deltas := map[int64]decimal.Decimal{p.PrimaryAccountID: p.Remainder}
	for _, tr := range p.Transfers {
		deltas[tr.AccountID] = deltas[tr.AccountID].Add(tr.Amount)
	}

	return deltas
}
