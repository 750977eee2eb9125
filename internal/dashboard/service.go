// Package dashboard summarises balances and upcoming bills.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/bill"
)

//go:generate mockgen -source=service.go -destination=source_mock.go -package=dashboard
type AccountSource interface {
	List(ctx context.Context) ([]*account.Account, error)
}

type BillSource interface {
	List(ctx context.Context, activeOnly bool) ([]*bill.Bill, error)
}

type Service struct {
	accounts  AccountSource
	bills     BillSource
	primaryID int64
	cache     *Cache
	now       func() time.Time
}

func NewService(accounts AccountSource, bills BillSource, primaryID int64, cache *Cache) *Service {
	return &Service{
		accounts:  accounts,
		bills:     bills,
		primaryID: primaryID,
		cache:     cache,
		now:       time.Now,
	}
}

// WithClock overrides the clock used for due dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now

	return s
}

type Summary struct {
	Accounts         []AccountView   `json:"accounts"`
	Bills            []BillView      `json:"bills"`
	PrimaryAccountID int64           `json:"primary_account_id"`
	PrimaryBalance   decimal.Decimal `json:"primary_balance"`
	PendingBills     decimal.Decimal `json:"pending_bills"`
	SafeToSpend      decimal.Decimal `json:"safe_to_spend"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

type AccountView struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type BillView struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	ExpectedAmount  decimal.Decimal `json:"expected_amount"`
	PayingAccountID int64           `json:"paying_account_id"`
	PayingAccount   string          `json:"paying_account"`
	DueDay          *int            `json:"due_day,omitempty"`
	NextDue         string          `json:"next_due,omitempty"`
}

// Summary returns the dashboard, served from cache when nothing moved since it was built.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	now := s.now()

	key, err := s.cache.BuildKey(ctx, "dashboard", "summary", now.Format(time.DateOnly))
	if err != nil {
		slog.Warn("dashboard cache unavailable", "error", err)

		return s.build(ctx, now)
	}

	var sum Summary

	err = s.cache.FetchJSON(ctx, key, &sum, func(ctx context.Context) (any, error) {
		return s.build(ctx, now)
	})
	if err != nil {
		return nil, err
	}

	return &sum, nil
}

func (s *Service) build(ctx context.Context, now time.Time) (*Summary, error) {
	var (
		accounts []*account.Account
		bills    []*bill.Bill
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		accounts, err = s.accounts.List(gctx)
		if err != nil {
			return fmt.Errorf("listing accounts: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error

		bills, err = s.bills.List(gctx, true)
		if err != nil {
			return fmt.Errorf("listing bills: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Summarize(accounts, bills, s.primaryID, now), nil
}

// Summarize computes safe-to-spend as the primary balance minus every active
// bill, regardless of which account pays it.
func Summarize(accounts []*account.Account, activeBills []*bill.Bill, primaryID int64, now time.Time) *Summary {
	sum := &Summary{
		Accounts:         make([]AccountView, 0, len(accounts)),
		Bills:            make([]BillView, 0, len(activeBills)),
		PrimaryAccountID: primaryID,
		PrimaryBalance:   decimal.Zero,
		PendingBills:     bill.Total(activeBills),
		GeneratedAt:      now,
	}

	for _, a := range accounts {
		sum.Accounts = append(sum.Accounts, AccountView{ID: a.ID, Name: a.Name, Balance: a.Balance})

		if a.ID == primaryID {
			sum.PrimaryBalance = a.Balance
		}
	}

	names := account.Names(accounts)

	for _, b := range activeBills {
		v := BillView{
			ID:              b.ID,
			Name:            b.Name,
			ExpectedAmount:  b.ExpectedAmount,
			PayingAccountID: b.PayingAccountID,
			PayingAccount:   names[b.PayingAccountID],
			DueDay:          b.DueDay,
		}

		if due, ok := b.NextDue(now); ok {
			v.NextDue = due.Format(time.DateOnly)
		}

		sum.Bills = append(sum.Bills, v)
	}

	sum.SafeToSpend = sum.PrimaryBalance.Sub(sum.PendingBills)

	return sum
}
