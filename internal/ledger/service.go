package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

var ErrInvalidFilter = errors.New("invalid ledger filter")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	AccountID *int64
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// List returns entries newest first. A zero limit falls back to DefaultLimit.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidFilter)
	}

	switch {
	case filter.Limit < 0:
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidFilter)
	case filter.Limit == 0:
		filter.Limit = DefaultLimit
	case filter.Limit > MaxLimit:
		filter.Limit = MaxLimit
	}

	return s.repo.ListEntries(ctx, filter)
}
