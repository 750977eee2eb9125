package funds

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/payday/internal/ledger"
	"github.com/MrJamesThe3rd/payday/internal/money"
	"github.com/MrJamesThe3rd/payday/internal/routing"
)

var (
	ErrInvalidAmount  = money.ErrInvalidAmount
	ErrInvalidAccount = errors.New("invalid account")
)

// Kind names the operation that produced a movement.
type Kind string

const (
	KindPaycheck Kind = "paycheck"
	KindDeposit  Kind = "deposit"
	KindExpense  Kind = "expense"
)

// Movement is the committed result of one operation.
type Movement struct {
	Kind     Kind
	Plan     *routing.Plan // paychecks only
	BillID   *int64
	Deltas   map[int64]decimal.Decimal
	Balances map[int64]decimal.Decimal // resulting balance of every touched account
	Entries  []*ledger.Entry           // appended entries, in insertion order
	At       time.Time
}

// AccountIDs lists the touched accounts in ascending order.
func (m *Movement) AccountIDs() []int64 {
	return sortedIDs(m.Deltas)
}
