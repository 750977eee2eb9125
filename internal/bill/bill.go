package bill

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("bill not found")
	ErrNotActive      = errors.New("bill already paid this cycle")
	ErrInvalid        = errors.New("invalid bill")
	ErrUnknownAccount = errors.New("paying account does not exist")
)

// Bill is a recurring monthly obligation paid from one account. Active means
// unpaid in the current cycle.
type Bill struct {
	ID              int64
	Name            string
	ExpectedAmount  decimal.Decimal
	PayingAccountID int64
	DueDay          *int // day of month, 1-31
	Active          bool
	CreatedAt       time.Time
}

// NextDue returns the first due date on or after from. Due days past the end of
// a month fall on its last day. Bills without a due day report false.
func (b *Bill) NextDue(from time.Time) (time.Time, bool) {
	if b.DueDay == nil {
		return time.Time{}, false
	}

	y, m, d := from.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, from.Location())

	due := dueIn(y, m, *b.DueDay, from.Location())
	if due.Before(today) {
		due = dueIn(y, m+1, *b.DueDay, from.Location())
	}

	return due, true
}

func dueIn(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()

	return first.AddDate(0, 0, min(day, last)-1)
}

// Total sums the expected amounts of bills.
func Total(bills []*Bill) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		total = total.Add(b.ExpectedAmount)
	}

	return total
}

// Invalidator is told when bill state changes outside a funds movement.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
