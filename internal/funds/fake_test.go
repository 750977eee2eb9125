package funds_test

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/bill"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
)

// memRepo is an in-memory store whose units of work stage writes until Commit.
type memRepo struct {
	balances   map[int64]decimal.Decimal
	bills      map[int64]*bill.Bill
	ledger     []*ledger.Entry
	failAppend error
}

func newMemRepo(balances map[int64]string) *memRepo {
	r := &memRepo{
		balances: make(map[int64]decimal.Decimal, len(balances)),
		bills:    make(map[int64]*bill.Bill),
	}

	for id, b := range balances {
		r.balances[id] = decimal.RequireFromString(b)
	}

	return r
}

func (r *memRepo) balance(id int64) string {
	return r.balances[id].StringFixed(2)
}

func (r *memRepo) Begin(context.Context) (funds.UnitOfWork, error) {
	return &memUnitOfWork{
		repo:     r,
		balances: maps.Clone(r.balances),
		active:   make(map[int64]bool),
	}, nil
}

type memUnitOfWork struct {
	repo     *memRepo
	balances map[int64]decimal.Decimal
	active   map[int64]bool
	entries  []*ledger.Entry
	done     bool
}

func (u *memUnitOfWork) LockAccounts(_ context.Context, ids []int64) (map[int64]*account.Account, error) {
	out := make(map[int64]*account.Account, len(ids))

	for _, id := range ids {
		b, ok := u.balances[id]
		if !ok {
			return nil, fmt.Errorf("account %d: %w", id, account.ErrNotFound)
		}

		out[id] = &account.Account{ID: id, Name: fmt.Sprintf("acc-%d", id), Balance: b}
	}

	return out, nil
}

func (u *memUnitOfWork) UpdateBalances(_ context.Context, balances map[int64]decimal.Decimal) error {
	maps.Copy(u.balances, balances)

	return nil
}

func (u *memUnitOfWork) AppendEntries(_ context.Context, entries []*ledger.Entry) error {
	if u.repo.failAppend != nil {
		return u.repo.failAppend
	}

	u.entries = append(u.entries, entries...)

	return nil
}

func (u *memUnitOfWork) LockBill(_ context.Context, id int64) (*bill.Bill, error) {
	b, ok := u.repo.bills[id]
	if !ok {
		return nil, bill.ErrNotFound
	}

	cp := *b

	return &cp, nil
}

func (u *memUnitOfWork) DeactivateBill(_ context.Context, id int64) error {
	u.active[id] = false

	return nil
}

func (u *memUnitOfWork) Commit() error {
	if u.done {
		return errors.New("unit of work already finished")
	}

	u.done = true
	u.repo.balances = u.balances

	for _, e := range u.entries {
		e.ID = int64(len(u.repo.ledger) + 1)
		u.repo.ledger = append(u.repo.ledger, e)
	}

	for id, active := range u.active {
		u.repo.bills[id].Active = active
	}

	return nil
}

func (u *memUnitOfWork) Rollback() error {
	u.done = true

	return nil
}
