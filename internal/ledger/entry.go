package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the clearing state of a ledger entry. Only cleared entries exist today.
type Status string

const StatusCleared Status = "CLEARED"

// Entry records one movement of money. Credits carry a positive amount and a
// destination, debits a negative amount and a source. Entries are never updated.
type Entry struct {
	ID                   int64
	Date                 time.Time
	Amount               decimal.Decimal
	SourceAccountID      *int64
	DestinationAccountID *int64
	Status               Status
	Description          string
	CreatedAt            time.Time
}

// Credit builds an entry adding amount to the destination account.
func Credit(date time.Time, destination int64, amount decimal.Decimal, description string) *Entry {
	return &Entry{
		Date:                 date,
		Amount:               amount,
		DestinationAccountID: &destination,
		Status:               StatusCleared,
		Description:          description,
	}
}

// Debit builds an entry taking amount out of source, optionally into destination.
// The stored amount is negative.
func Debit(date time.Time, source int64, destination *int64, amount decimal.Decimal, description string) *Entry {
	return &Entry{
		Date:                 date,
		Amount:               amount.Neg(),
		SourceAccountID:      &source,
		DestinationAccountID: destination,
		Status:               StatusCleared,
		Description:          description,
	}
}

// Touches reports whether the entry moves money in or out of the account.
func (e *Entry) Touches(accountID int64) bool {
	return (e.SourceAccountID != nil && *e.SourceAccountID == accountID) ||
		(e.DestinationAccountID != nil && *e.DestinationAccountID == accountID)
}
