package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
)

type entrySource struct {
	listFunc func(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error)
}

func (s entrySource) List(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	return s.listFunc(ctx, filter)
}

type accountSource []*account.Account

func (s accountSource) List(context.Context) ([]*account.Account, error) {
	return s, nil
}

var day = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func fixture() []*ledger.Entry {
	main, hoa := int64(1), int64(2)

	credit := ledger.Credit(day, main, decimal.RequireFromString("3000"), "Paycheck (standard)")
	credit.ID = 1

	transfer := ledger.Debit(day, main, &hoa, decimal.RequireFromString("35"), "Transfer to hoa")
	transfer.ID = 2

	expense := ledger.Debit(day, 9, nil, decimal.RequireFromString("12.5"), "Coffee; beans")
	expense.ID = 3

	return []*ledger.Entry{expense, transfer, credit}
}

func TestExportService_Export(t *testing.T) {
	var got ledger.ListFilter

	svc := NewService(
		entrySource{listFunc: func(_ context.Context, f ledger.ListFilter) ([]*ledger.Entry, error) {
			got = f
			return fixture(), nil
		}},
		accountSource{{ID: 1, Name: "Main"}, {ID: 2, Name: "HOA"}},
	)

	filter := ledger.ListFilter{StartDate: &day, Limit: 10}

	items, err := svc.Export(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, filter, got)
	assert.Equal(t, "#9", items[0].From)
	assert.Empty(t, items[0].To)
	assert.Equal(t, "Main", items[1].From)
	assert.Equal(t, "HOA", items[1].To)
	assert.Empty(t, items[2].From)
	assert.Equal(t, "Main", items[2].To)
}

func TestExportService_Export_ListError(t *testing.T) {
	boom := errors.New("boom")

	svc := NewService(
		entrySource{listFunc: func(context.Context, ledger.ListFilter) ([]*ledger.Entry, error) { return nil, boom }},
		accountSource{},
	)

	_, err := svc.Export(context.Background(), ledger.ListFilter{})
	assert.ErrorIs(t, err, boom)
}

func TestWriteCSV(t *testing.T) {
	items := []Item{
		{Entry: fixture()[0], From: "#9"},
		{Entry: fixture()[1], From: "Main", To: "HOA"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, items))

	want := "id;date;amount;from;to;status;description\n" +
		"3;2024-03-15;-12.50;#9;;CLEARED;\"Coffee; beans\"\n" +
		"2;2024-03-15;-35.00;Main;HOA;CLEARED;Transfer to hoa\n"

	assert.Equal(t, want, buf.String())
}

func TestStatement(t *testing.T) {
	entries := fixture()
	items := []Item{
		{Entry: entries[1], From: "Main", To: "HOA"},
		{Entry: entries[2], To: "Main"},
		{Entry: entries[0], From: "#9"},
	}

	got := Statement(items)

	assert.Contains(t, got, "* 2024-03-15 | Transfer to hoa | -35.00 | Main -> HOA\n")
	assert.Contains(t, got, "* 2024-03-15 | Paycheck (standard) | +3000.00 | Main\n")
	assert.Contains(t, got, "* 2024-03-15 | Coffee; beans | -12.50 | #9\n")
	assert.Contains(t, got, "3 entries, net 2952.50")
}
