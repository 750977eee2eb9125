package account

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("account not found")

// Account is a named bucket of money with its current cleared balance.
type Account struct {
	ID        int64
	Name      string
	Balance   decimal.Decimal // current cleared balance
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Invalidator is told when an account is created or its balance is overwritten.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
