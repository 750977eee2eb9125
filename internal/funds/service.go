package funds

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/bill"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
	"github.com/MrJamesThe3rd/payday/internal/money"
	"github.com/MrJamesThe3rd/payday/internal/routing"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=funds
type Repository interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork is one database transaction. Nothing it writes is visible until Commit.
type UnitOfWork interface {
	// LockAccounts locks the rows of ids for update and returns them keyed by id.
	// A missing id fails with account.ErrNotFound.
	LockAccounts(ctx context.Context, ids []int64) (map[int64]*account.Account, error)
	UpdateBalances(ctx context.Context, balances map[int64]decimal.Decimal) error
	AppendEntries(ctx context.Context, entries []*ledger.Entry) error
	LockBill(ctx context.Context, id int64) (*bill.Bill, error)
	DeactivateBill(ctx context.Context, id int64) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo     Repository
	table    *routing.Table
	notifier Notifiers
	now      func() time.Time
}

func NewService(repo Repository, table *routing.Table, notifiers ...Notifier) *Service {
	return &Service{
		repo:     repo,
		table:    table,
		notifier: notifiers,
		now:      time.Now,
	}
}

// WithClock overrides the clock used to date ledger entries.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now

	return s
}

type RouteParams struct {
	Amount  decimal.Decimal
	RuleKey string
}

type DepositParams struct {
	AccountID   int64
	Amount      decimal.Decimal
	Description string
}

type ExpenseParams struct {
	AccountID   int64
	Amount      decimal.Decimal
	BillID      *int64
	Description string
}

// change is what an operation applies inside its unit of work.
type change struct {
	kind    Kind
	plan    *routing.Plan
	billID  *int64
	deltas  map[int64]decimal.Decimal
	entries []*ledger.Entry
}

// RoutePaycheck deposits gross into the primary account and moves each fixed
// transfer of the selected rule out of it. Calling it twice moves the money twice.
func (s *Service) RoutePaycheck(ctx context.Context, params RouteParams) (*Movement, error) {
	plan, err := s.table.Plan(params.Amount, params.RuleKey)
	if err != nil {
		return nil, err
	}

	today := s.today()
	primary := plan.PrimaryAccountID

	entries := []*ledger.Entry{ledger.Credit(today, primary, plan.Gross, paycheckDescription(plan))}

	for _, tr := range plan.Transfers {
		if tr.Amount.IsZero() {
			continue
		}

		entries = append(entries, ledger.Debit(today, primary, &tr.AccountID, tr.Amount, "Transfer to "+tr.Account))
	}

	return s.run(ctx, func(context.Context, UnitOfWork) (*change, error) {
		return &change{kind: KindPaycheck, plan: plan, deltas: plan.Deltas(), entries: entries}, nil
	})
}

// Deposit adds amount to an account's balance.
func (s *Service) Deposit(ctx context.Context, params DepositParams) (*Movement, error) {
	if err := validate(params.AccountID, params.Amount); err != nil {
		return nil, err
	}

	entry := ledger.Credit(s.today(), params.AccountID, params.Amount, describe(params.Description, "Deposit"))

	return s.run(ctx, func(context.Context, UnitOfWork) (*change, error) {
		return &change{
			kind:    KindDeposit,
			deltas:  map[int64]decimal.Decimal{params.AccountID: params.Amount},
			entries: []*ledger.Entry{entry},
		}, nil
	})
}

// PayExpense takes amount out of an account. When a bill is named it is marked
// paid in the same transaction; paying an already paid bill fails with
// bill.ErrNotActive.
func (s *Service) PayExpense(ctx context.Context, params ExpenseParams) (*Movement, error) {
	if err := validate(params.AccountID, params.Amount); err != nil {
		return nil, err
	}

	today := s.today()

	return s.run(ctx, func(ctx context.Context, uow UnitOfWork) (*change, error) {
		fallback := "Expense"

		if params.BillID != nil {
			b, err := lockActiveBill(ctx, uow, *params.BillID)
			if err != nil {
				return nil, err
			}

			fallback = b.Name
		}

		entry := ledger.Debit(today, params.AccountID, nil, params.Amount, describe(params.Description, fallback))

		return &change{
			kind:    KindExpense,
			billID:  params.BillID,
			deltas:  map[int64]decimal.Decimal{params.AccountID: params.Amount.Neg()},
			entries: []*ledger.Entry{entry},
		}, nil
	})
}

// PayBill pays a bill's expected amount from its paying account.
func (s *Service) PayBill(ctx context.Context, billID int64) (*Movement, error) {
	today := s.today()

	return s.run(ctx, func(ctx context.Context, uow UnitOfWork) (*change, error) {
		b, err := lockActiveBill(ctx, uow, billID)
		if err != nil {
			return nil, err
		}

		if err := money.ValidateAmount(b.ExpectedAmount); err != nil {
			return nil, fmt.Errorf("bill %d: %w", billID, err)
		}

		entry := ledger.Debit(today, b.PayingAccountID, nil, b.ExpectedAmount, b.Name)

		return &change{
			kind:    KindExpense,
			billID:  &b.ID,
			deltas:  map[int64]decimal.Decimal{b.PayingAccountID: b.ExpectedAmount.Neg()},
			entries: []*ledger.Entry{entry},
		}, nil
	})
}

// run applies one change atomically: lock, compute, write, commit. Notifiers
// only hear about committed movements.
func (s *Service) run(ctx context.Context, prepare func(context.Context, UnitOfWork) (*change, error)) (*Movement, error) {
	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	c, err := prepare(ctx, uow)
	if err != nil {
		return nil, err
	}

	ids := sortedIDs(c.deltas)

	accounts, err := uow.LockAccounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("locking accounts: %w", err)
	}

	balances := make(map[int64]decimal.Decimal, len(ids))

	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("account %d: %w", id, account.ErrNotFound)
		}

		balances[id] = acc.Balance.Add(c.deltas[id])

		if err := money.CheckRange(balances[id]); err != nil {
			return nil, fmt.Errorf("account %d balance: %w", id, err)
		}

		if balances[id].IsNegative() && c.deltas[id].IsNegative() {
			slog.Warn("account overdrawn",
				"account_id", id,
				"account", acc.Name,
				"balance", money.Format(balances[id]),
			)
		}
	}

	if err := uow.UpdateBalances(ctx, balances); err != nil {
		return nil, fmt.Errorf("updating balances: %w", err)
	}

	if err := uow.AppendEntries(ctx, c.entries); err != nil {
		return nil, fmt.Errorf("appending ledger entries: %w", err)
	}

	if c.billID != nil {
		if err := uow.DeactivateBill(ctx, *c.billID); err != nil {
			return nil, fmt.Errorf("deactivating bill: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("committing: %w", err)
	}

	m := &Movement{
		Kind:     c.kind,
		Plan:     c.plan,
		BillID:   c.billID,
		Deltas:   c.deltas,
		Balances: balances,
		Entries:  c.entries,
		At:       s.now(),
	}

	s.notifier.Notify(ctx, m)

	return m, nil
}

func lockActiveBill(ctx context.Context, uow UnitOfWork, id int64) (*bill.Bill, error) {
	b, err := uow.LockBill(ctx, id)
	if err != nil {
		return nil, err
	}

	if !b.Active {
		return nil, fmt.Errorf("bill %d: %w", id, bill.ErrNotActive)
	}

	return b, nil
}

func validate(accountID int64, amount decimal.Decimal) error {
	if accountID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAccount, accountID)
	}

	return money.ValidateAmount(amount)
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func paycheckDescription(p *routing.Plan) string {
	if p.RuleKey == "" {
		return "Paycheck"
	}

	return "Paycheck (" + p.RuleKey + ")"
}

func describe(given, fallback string) string {
	if d := strings.TrimSpace(given); d != "" {
		return d
	}

	return fallback
}

func sortedIDs(m map[int64]decimal.Decimal) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
