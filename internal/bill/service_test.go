package bill_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/payday/internal/bill"
)

// memRepo keeps bills in memory so state changes can be observed across calls.
type memRepo struct {
	bills []*bill.Bill
}

func (r *memRepo) ListBills(_ context.Context, activeOnly bool) ([]*bill.Bill, error) {
	var out []*bill.Bill

	for _, b := range r.bills {
		if !activeOnly || b.Active {
			out = append(out, b)
		}
	}

	return out, nil
}

func (r *memRepo) GetBill(_ context.Context, id int64) (*bill.Bill, error) {
	for _, b := range r.bills {
		if b.ID == id {
			return b, nil
		}
	}

	return nil, bill.ErrNotFound
}

func (r *memRepo) CreateBills(_ context.Context, bills []*bill.Bill) error {
	for _, b := range bills {
		b.ID = int64(len(r.bills) + 1)
		r.bills = append(r.bills, b)
	}

	return nil
}

func (r *memRepo) ActivateAll(_ context.Context) (int64, error) {
	for _, b := range r.bills {
		b.Active = true
	}

	return int64(len(r.bills)), nil
}

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++

	return c.err
}

func TestService_ResetMonthly_ActivatesEveryBill(t *testing.T) {
	repo := &memRepo{bills: []*bill.Bill{
		{ID: 1, Name: "HOA", Active: true},
		{ID: 2, Name: "Electricity", Active: false},
		{ID: 3, Name: "Water", Active: false},
		{ID: 4, Name: "Internet", Active: true},
		{ID: 5, Name: "Phone", Active: false},
	}}
	inv := &countingInvalidator{}

	svc := bill.NewService(repo, inv)

	n, err := svc.ResetMonthly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	active, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, active, 5)

	for _, b := range repo.bills {
		assert.True(t, b.Active, b.Name)
	}

	assert.Equal(t, 1, inv.calls)
}

func TestService_ResetMonthly_InvalidatorFailureIgnored(t *testing.T) {
	repo := &memRepo{bills: []*bill.Bill{{ID: 1, Active: false}}}
	inv := &countingInvalidator{err: errors.New("redis down")}

	n, err := bill.NewService(repo, inv).ResetMonthly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, repo.bills[0].Active)
}

func TestService_ResetMonthly_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := bill.NewMockRepository(ctrl)
	repo.EXPECT().ActivateAll(gomock.Any()).Return(int64(0), errors.New("db error"))

	inv := &countingInvalidator{}

	_, err := bill.NewService(repo, inv).ResetMonthly(context.Background())
	assert.Error(t, err)
	assert.Zero(t, inv.calls)
}

func TestService_Create(t *testing.T) {
	amount := decimal.RequireFromString("35.00")

	type testCase struct {
		name      string
		params    bill.CreateParams
		setupMock func(m *bill.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: bill.CreateParams{Name: " HOA ", ExpectedAmount: amount, PayingAccountID: 2, DueDay: new(1)},
			setupMock: func(m *bill.MockRepository) {
				m.EXPECT().
					CreateBills(gomock.Any(), gomock.Len(1)).
					DoAndReturn(func(_ context.Context, bills []*bill.Bill) error {
						assert.Equal(t, "HOA", bills[0].Name)
						assert.True(t, bills[0].Active)
						bills[0].ID = 7

						return nil
					})
			},
		},
		{
			name:    "MissingName",
			params:  bill.CreateParams{ExpectedAmount: amount, PayingAccountID: 2},
			wantErr: bill.ErrInvalid,
		},
		{
			name:    "ZeroAmount",
			params:  bill.CreateParams{Name: "HOA", ExpectedAmount: decimal.Zero, PayingAccountID: 2},
			wantErr: bill.ErrInvalid,
		},
		{
			name:    "MissingAccount",
			params:  bill.CreateParams{Name: "HOA", ExpectedAmount: amount},
			wantErr: bill.ErrInvalid,
		},
		{
			name:    "DueDayOutOfRange",
			params:  bill.CreateParams{Name: "HOA", ExpectedAmount: amount, PayingAccountID: 2, DueDay: new(32)},
			wantErr: bill.ErrInvalid,
		},
		{
			name:   "UnknownAccount",
			params: bill.CreateParams{Name: "HOA", ExpectedAmount: amount, PayingAccountID: 99},
			setupMock: func(m *bill.MockRepository) {
				m.EXPECT().CreateBills(gomock.Any(), gomock.Any()).Return(bill.ErrUnknownAccount)
			},
			wantErr: bill.ErrUnknownAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := bill.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := bill.NewService(repo).Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(7), got.ID)
		})
	}
}

func TestService_Import(t *testing.T) {
	repo := &memRepo{}
	inv := &countingInvalidator{}
	svc := bill.NewService(repo, inv)

	input := "name;expected_amount;paying_account_id;due_day\nHOA;35.00;2;1\nWater;42.10;3;15\n"

	got, err := svc.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, 1, inv.calls)
}

func TestService_Import_InvalidRowStoresNothing(t *testing.T) {
	repo := &memRepo{}

	input := "name;expected_amount;paying_account_id;due_day\nHOA;35.00;2;1\nWater;42.10;3;40\n"

	_, err := bill.NewService(repo).Import(context.Background(), strings.NewReader(input))
	assert.ErrorIs(t, err, bill.ErrInvalid)
	assert.Contains(t, err.Error(), "bill 2")
	assert.Empty(t, repo.bills)
}
