package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/payday/internal/money"
)

var ErrInvalidName = errors.New("account name is required")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	ListAccounts(ctx context.Context) ([]*Account, error)
	GetAccount(ctx context.Context, id int64) (*Account, error)
	CreateAccount(ctx context.Context, acc *Account) error
	SetBalance(ctx context.Context, id int64, balance decimal.Decimal) error
}

type Service struct {
	repo         Repository
	invalidators []Invalidator
}

func NewService(repo Repository, invalidators ...Invalidator) *Service {
	return &Service{repo: repo, invalidators: invalidators}
}

func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.repo.ListAccounts(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	acc := &Account{Name: name, Balance: decimal.Zero}
	if err := s.repo.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	return acc, nil
}

// SetBalance overwrites the cleared balance outright. No ledger entry is written,
// so the account drifts from the sum of its ledger entries by the difference.
func (s *Service) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) (*Account, error) {
	if err := money.CheckRange(balance); err != nil {
		return nil, err
	}

	if err := s.repo.SetBalance(ctx, id, balance); err != nil {
		return nil, fmt.Errorf("setting balance of account %d: %w", id, err)
	}

	s.invalidate(ctx)

	return s.repo.GetAccount(ctx, id)
}

func (s *Service) invalidate(ctx context.Context) {
	for _, inv := range s.invalidators {
		if err := inv.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate after account change", "error", err)
		}
	}
}

// Names maps account ids to names for display.
func Names(accounts []*Account) map[int64]string {
	names := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	return names
}
