package bill

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/payday/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=bill
type Repository interface {
	ListBills(ctx context.Context, activeOnly bool) ([]*Bill, error)
	GetBill(ctx context.Context, id int64) (*Bill, error)
	CreateBills(ctx context.Context, bills []*Bill) error
	ActivateAll(ctx context.Context) (int64, error)
}

type Service struct {
	repo         Repository
	invalidators []Invalidator
}

func NewService(repo Repository, invalidators ...Invalidator) *Service {
	return &Service{repo: repo, invalidators: invalidators}
}

type CreateParams struct {
	Name            string
	ExpectedAmount  decimal.Decimal
	PayingAccountID int64
	DueDay          *int
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}

	if err := money.ValidateAmount(p.ExpectedAmount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if p.PayingAccountID <= 0 {
		return fmt.Errorf("%w: paying account is required", ErrInvalid)
	}

	if p.DueDay != nil && (*p.DueDay < 1 || *p.DueDay > 31) {
		return fmt.Errorf("%w: due day %d is outside 1-31", ErrInvalid, *p.DueDay)
	}

	return nil
}

func (p CreateParams) bill() *Bill {
	return &Bill{
		Name:            strings.TrimSpace(p.Name),
		ExpectedAmount:  p.ExpectedAmount,
		PayingAccountID: p.PayingAccountID,
		DueDay:          p.DueDay,
		Active:          true,
	}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Bill, error) {
	return s.repo.ListBills(ctx, activeOnly)
}

func (s *Service) Get(ctx context.Context, id int64) (*Bill, error) {
	return s.repo.GetBill(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Bill, error) {
	created, err := s.CreateMany(ctx, []CreateParams{params})
	if err != nil {
		return nil, err
	}

	return created[0], nil
}

// CreateMany validates every bill before storing any; the batch is stored atomically.
func (s *Service) CreateMany(ctx context.Context, params []CreateParams) ([]*Bill, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: no bills given", ErrInvalid)
	}

	bills := make([]*Bill, 0, len(params))

	for i, p := range params {
		if err := p.validate(); err != nil {
			if len(params) > 1 {
				return nil, fmt.Errorf("bill %d: %w", i+1, err)
			}

			return nil, err
		}

		bills = append(bills, p.bill())
	}

	if err := s.repo.CreateBills(ctx, bills); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	return bills, nil
}

// Import reads a semicolon separated bill list and stores it as one batch.
func (s *Service) Import(ctx context.Context, r io.Reader) ([]*Bill, error) {
	params, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}

	return s.CreateMany(ctx, params)
}

// ResetMonthly marks every bill unpaid for the new cycle, whatever its state,
// and returns the number of bills touched.
func (s *Service) ResetMonthly(ctx context.Context) (int64, error) {
	n, err := s.repo.ActivateAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("resetting bills: %w", err)
	}

	slog.Info("bills reset for new cycle", "count", n)

	s.invalidate(ctx)

	return n, nil
}

func (s *Service) invalidate(ctx context.Context) {
	for _, inv := range s.invalidators {
		if err := inv.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate after bill change", "error", err)
		}
	}
}
