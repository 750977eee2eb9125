package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/bill"
	"github.com/MrJamesThe3rd/payday/internal/dashboard"
	"github.com/MrJamesThe3rd/payday/internal/export"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	paydayhttp "github.com/MrJamesThe3rd/payday/internal/http"
	accounthttp "github.com/MrJamesThe3rd/payday/internal/http/account"
	billhttp "github.com/MrJamesThe3rd/payday/internal/http/bill"
	dashboardhttp "github.com/MrJamesThe3rd/payday/internal/http/dashboard"
	exporthttp "github.com/MrJamesThe3rd/payday/internal/http/export"
	fundshttp "github.com/MrJamesThe3rd/payday/internal/http/funds"
	ledgerhttp "github.com/MrJamesThe3rd/payday/internal/http/ledger"
	routinghttp "github.com/MrJamesThe3rd/payday/internal/http/routing"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
	"github.com/MrJamesThe3rd/payday/internal/routing"
)

type mocks struct {
	accounts *account.MockRepository
	bills    *bill.MockRepository
	ledger   *ledger.MockRepository
	funds    *funds.MockRepository
	uow      *funds.MockUnitOfWork
}

func newTestRouter(t *testing.T, rateLimit int) (http.Handler, *mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)

	m := &mocks{
		accounts: account.NewMockRepository(ctrl),
		bills:    bill.NewMockRepository(ctrl),
		ledger:   ledger.NewMockRepository(ctrl),
		funds:    funds.NewMockRepository(ctrl),
		uow:      funds.NewMockUnitOfWork(ctrl),
	}

	table, err := routing.Default()
	require.NoError(t, err)

	accountSvc := account.NewService(m.accounts)
	billSvc := bill.NewService(m.bills)
	ledgerSvc := ledger.NewService(m.ledger)
	fundsSvc := funds.NewService(m.funds, table).
		WithClock(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) })

	router := paydayhttp.New(paydayhttp.Handlers{
		Accounts:  accounthttp.NewHandler(accountSvc),
		Funds:     fundshttp.NewHandler(fundsSvc),
		Bills:     billhttp.NewHandler(billSvc),
		Ledger:    ledgerhttp.NewHandler(ledgerSvc),
		Dashboard: dashboardhttp.NewHandler(dashboard.NewService(accountSvc, billSvc, table.PrimaryAccountID(), nil)),
		Routing:   routinghttp.NewHandler(table),
		Export:    exporthttp.NewHandler(export.NewService(ledgerSvc, accountSvc)),
	}, paydayhttp.Options{
		AllowedOrigins: []string{"*"},
		RateLimit:      rateLimit,
		RateWindow:     time.Minute,
	})

	return router, m
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rec := get(router, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestPaycheck_InvalidAmount(t *testing.T) {
	for _, amount := range []string{"", "abc", "0", "-10", "1.234", "12,50", "1,2,3", "1e20", "1000000000000"} {
		t.Run(amount, func(t *testing.T) {
			router, _ := newTestRouter(t, 0)

			rec := postForm(router, "/api/v1/funds/paycheck", url.Values{"amount": {amount}})

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestPaycheck_Routes(t *testing.T) {
	router, m := newTestRouter(t, 0)

	locked := map[int64]*account.Account{}
	for id := int64(1); id <= 8; id++ {
		locked[id] = &account.Account{ID: id, Balance: decimal.Zero}
	}

	locked[1].Balance = d("1000.00")

	gomock.InOrder(
		m.funds.EXPECT().Begin(gomock.Any()).Return(m.uow, nil),
		m.uow.EXPECT().LockAccounts(gomock.Any(), []int64{1, 2, 3, 4, 5, 6, 7, 8}).Return(locked, nil),
		m.uow.EXPECT().UpdateBalances(gomock.Any(), gomock.Len(8)).Return(nil),
		m.uow.EXPECT().AppendEntries(gomock.Any(), gomock.Len(8)).Return(nil),
		m.uow.EXPECT().Commit().Return(nil),
		m.uow.EXPECT().Rollback().Return(nil),
	)

	rec := postForm(router, "/api/v1/funds/paycheck", url.Values{"amount": {"3000.00"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		RuleKey   string            `json:"rule_key"`
		Remainder string            `json:"remainder"`
		Balances  map[string]string `json:"balances"`
		Entries   []struct {
			Amount string `json:"amount"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "standard", resp.RuleKey)
	assert.Equal(t, "435.00", resp.Remainder)
	assert.Equal(t, "1435.00", resp.Balances["1"])
	assert.Equal(t, "200.00", resp.Balances["8"])
	require.Len(t, resp.Entries, 8)
	assert.Equal(t, "3000.00", resp.Entries[0].Amount)
	assert.Equal(t, "-35.00", resp.Entries[1].Amount)
}

func TestDeposit(t *testing.T) {
	router, m := newTestRouter(t, 0)

	m.funds.EXPECT().Begin(gomock.Any()).Return(m.uow, nil)
	m.uow.EXPECT().LockAccounts(gomock.Any(), []int64{4}).
		Return(map[int64]*account.Account{4: {ID: 4, Balance: d("80.00")}}, nil)
	m.uow.EXPECT().UpdateBalances(gomock.Any(), gomock.Len(1)).Return(nil)
	m.uow.EXPECT().AppendEntries(gomock.Any(), gomock.Len(1)).Return(nil)
	m.uow.EXPECT().Commit().Return(nil)
	m.uow.EXPECT().Rollback().Return(nil)

	rec := postForm(router, "/api/v1/funds/deposit", url.Values{"accountId": {"4"}, "amount": {"20.00"}})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"4":"100.00"`)
}

func TestDeposit_MissingAccount(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rec := postForm(router, "/api/v1/funds/deposit", url.Values{"amount": {"20.00"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "accountId is required")
}

func TestExpense_InactiveBill(t *testing.T) {
	router, m := newTestRouter(t, 0)

	m.funds.EXPECT().Begin(gomock.Any()).Return(m.uow, nil)
	m.uow.EXPECT().LockBill(gomock.Any(), int64(5)).Return(&bill.Bill{ID: 5, Active: false}, nil)
	m.uow.EXPECT().Rollback().Return(nil)

	rec := postForm(router, "/api/v1/funds/expense", url.Values{
		"accountId": {"3"},
		"amount":    {"50.00"},
		"billId":    {"5"},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPayBill_NotFound(t *testing.T) {
	router, m := newTestRouter(t, 0)

	m.funds.EXPECT().Begin(gomock.Any()).Return(m.uow, nil)
	m.uow.EXPECT().LockBill(gomock.Any(), int64(404)).Return(nil, bill.ErrNotFound)
	m.uow.EXPECT().Rollback().Return(nil)

	rec := postForm(router, "/api/v1/bills/404/pay", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAccount_NotFound(t *testing.T) {
	router, m := newTestRouter(t, 0)

	m.accounts.EXPECT().GetAccount(gomock.Any(), int64(9)).Return(nil, account.ErrNotFound)

	rec := get(router, "/api/v1/accounts/9")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"account not found"}`, rec.Body.String())
}

func TestSetBalance(t *testing.T) {
	router, m := newTestRouter(t, 0)

	m.accounts.EXPECT().SetBalance(gomock.Any(), int64(2), gomock.Any()).Return(nil)
	m.accounts.EXPECT().GetAccount(gomock.Any(), int64(2)).
		Return(&account.Account{ID: 2, Name: "HOA", Balance: d("-12.50")}, nil)

	form := url.Values{"balance": {"-12.50"}}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/accounts/2/balance", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"balance":"-12.50"`)
}

func TestResetBills(t *testing.T) {
	router, m := newTestRouter(t, 0)

	m.bills.EXPECT().ActivateAll(gomock.Any()).Return(int64(5), nil)

	rec := postForm(router, "/api/v1/bills/reset", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reset":5}`, rec.Body.String())
}

func TestImportBills(t *testing.T) {
	router, m := newTestRouter(t, 0)

	m.bills.EXPECT().CreateBills(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, bills []*bill.Bill) error {
			for i, b := range bills {
				b.ID = int64(i + 1)
			}

			return nil
		})

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "bills.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte("name;expected_amount;paying_account_id;due_day\nHOA;35.00;2;1\nPower;120.00;3;20\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"Power"`)
}

func TestLedger_BadFilter(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	for _, q := range []string{"account_id=x", "start_date=03/01/2024", "limit=ten", "limit=-1"} {
		rec := get(router, "/api/v1/ledger?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestLedger_List(t *testing.T) {
	router, m := newTestRouter(t, 0)

	m.ledger.EXPECT().
		ListEntries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f ledger.ListFilter) ([]*ledger.Entry, error) {
			assert.Equal(t, int64(1), *f.AccountID)
			assert.Equal(t, 10, f.Limit)

			return []*ledger.Entry{{ID: 2, Amount: d("-35"), Status: ledger.StatusCleared}}, nil
		})

	rec := get(router, "/api/v1/ledger?account_id=1&limit=10")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":"-35.00"`)
}

func TestDashboard(t *testing.T) {
	router, m := newTestRouter(t, 0)

	m.accounts.EXPECT().ListAccounts(gomock.Any()).Return([]*account.Account{
		{ID: 1, Name: "Main", Balance: d("1815.00")},
	}, nil)
	m.bills.EXPECT().ListBills(gomock.Any(), true).Return([]*bill.Bill{
		{ID: 1, Name: "Rent", ExpectedAmount: d("1200.00"), PayingAccountID: 1, Active: true},
	}, nil)

	rec := get(router, "/api/v1/dashboard")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"safe_to_spend":"615"`)
}

func TestRoutingRules(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rec := get(router, "/api/v1/routing/rules")

	require.Equal(t, http.StatusOK, rec.Code)

	var rules []struct {
		Key     string `json:"key"`
		Default bool   `json:"default"`
		Total   string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.NotEmpty(t, rules)
	assert.Equal(t, "standard", rules[0].Key)
	assert.True(t, rules[0].Default)
	assert.Equal(t, "2565.00", rules[0].Total)
}

func TestRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, 1)

	first := postForm(router, "/api/v1/funds/paycheck", url.Values{"amount": {"abc"}})
	second := postForm(router, "/api/v1/funds/paycheck", url.Values{"amount": {"abc"}})

	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestExportLedgerCSV(t *testing.T) {
	router, m := newTestRouter(t, 0)

	primary := int64(1)

	m.ledger.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return([]*ledger.Entry{
		{ID: 7, Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Amount: d("20"), DestinationAccountID: &primary, Status: ledger.StatusCleared, Description: "Deposit"},
	}, nil)
	m.accounts.EXPECT().ListAccounts(gomock.Any()).Return([]*account.Account{{ID: 1, Name: "Main"}}, nil)

	rec := get(router, "/api/v1/export/ledger.csv?start_date=2024-03-01")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "id;date;amount;from;to;status;description\n7;2024-03-15;20.00;;Main;CLEARED;Deposit\n", rec.Body.String())
}

func TestExportStatement_BadFilter(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	rec := get(router, "/api/v1/export/statement?end_date=yesterday")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
