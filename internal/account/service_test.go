package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		input     string
		setupMock func(m *account.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:  "Success",
			input: "  Vacation  ",
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, acc *account.Account) error {
						assert.Equal(t, "Vacation", acc.Name)
						assert.True(t, acc.Balance.IsZero())
						acc.ID = 9

						return nil
					})
			},
		},
		{
			name:    "EmptyName",
			input:   "   ",
			wantErr: account.ErrInvalidName,
		},
		{
			name:  "RepoError",
			input: "Vacation",
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := account.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := account.NewService(repo)
			got, err := svc.Create(context.Background(), tt.input)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(9), got.ID)
		})
	}
}

func TestService_SetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	svc := account.NewService(repo)

	balance := decimal.RequireFromString("420.00")

	gomock.InOrder(
		repo.EXPECT().SetBalance(gomock.Any(), int64(3), balance).Return(nil),
		repo.EXPECT().GetAccount(gomock.Any(), int64(3)).Return(&account.Account{ID: 3, Name: "Utilities", Balance: balance}, nil),
	)

	got, err := svc.SetBalance(context.Background(), 3, balance)
	require.NoError(t, err)
	assert.True(t, balance.Equal(got.Balance))
}

func TestService_SetBalance_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	repo.EXPECT().SetBalance(gomock.Any(), int64(99), gomock.Any()).Return(account.ErrNotFound)

	svc := account.NewService(repo)

	_, err := svc.SetBalance(context.Background(), 99, decimal.Zero)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++

	return c.err
}

func TestService_SetBalance_Invalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	repo.EXPECT().SetBalance(gomock.Any(), int64(1), gomock.Any()).Return(nil)
	repo.EXPECT().GetAccount(gomock.Any(), int64(1)).Return(&account.Account{ID: 1}, nil)
	repo.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(nil)

	inv := &countingInvalidator{err: errors.New("redis down")}
	svc := account.NewService(repo, inv)

	_, err := svc.SetBalance(context.Background(), 1, decimal.RequireFromString("500.00"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "Travel")
	require.NoError(t, err)

	assert.Equal(t, 2, inv.calls)
}

func TestService_SetBalance_OutOfRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inv := &countingInvalidator{}
	svc := account.NewService(account.NewMockRepository(ctrl), inv)

	_, err := svc.SetBalance(context.Background(), 1, decimal.RequireFromString("1e15"))
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
	assert.Zero(t, inv.calls)
}

func TestService_SetBalance_NotFoundSkipsInvalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	repo.EXPECT().SetBalance(gomock.Any(), int64(99), gomock.Any()).Return(account.ErrNotFound)

	inv := &countingInvalidator{}
	svc := account.NewService(repo, inv)

	_, err := svc.SetBalance(context.Background(), 99, decimal.Zero)
	assert.ErrorIs(t, err, account.ErrNotFound)
	assert.Zero(t, inv.calls)
}

func TestNames(t *testing.T) {
	names := account.Names([]*account.Account{
		{ID: 1, Name: "Main"},
		{ID: 2, Name: "HOA"},
	})

	assert.Equal(t, map[int64]string{1: "Main", 2: "HOA"}, names)
}
