package funds

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/payday/internal/funds"
	"github.com/MrJamesThe3rd/payday/internal/http/httpx"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

type Handler struct {
	svc *funds.Service
}

func NewHandler(svc *funds.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/deposit", h.deposit)
	r.Post("/paycheck", h.paycheck)
	r.Post("/expense", h.expense)
}

// BillRoutes mounts bill payment under /bills.
func (h *Handler) BillRoutes(r chi.Router) {
	r.Post("/{id}/pay", h.payBill)
}

type depositForm struct {
	AccountID   string `form:"accountId" validate:"required,number"`
	Amount      string `form:"amount" validate:"required"`
	Description string `form:"description" validate:"max=200"`
}

type paycheckForm struct {
	Amount  string `form:"amount" validate:"required"`
	PayType string `form:"payType" validate:"max=64"`
}

type expenseForm struct {
	AccountID   string `form:"accountId" validate:"required,number"`
	Amount      string `form:"amount" validate:"required"`
	BillID      string `form:"billId" validate:"omitempty,number"`
	ExpenseName string `form:"expenseName" validate:"max=200"`
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	form := depositForm{
		AccountID:   r.PostFormValue("accountId"),
		Amount:      r.PostFormValue("amount"),
		Description: r.PostFormValue("description"),
	}
	if err := httpx.Validate(form); err != nil {
		httpx.Error(w, r, err)
		return
	}

	accountID, err := httpx.ParseInt(form.AccountID, "accountId")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	amount, err := money.ParseAmount(form.Amount)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	m, err := h.svc.Deposit(r.Context(), funds.DepositParams{
		AccountID:   accountID,
		Amount:      amount,
		Description: form.Description,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(m))
}

func (h *Handler) paycheck(w http.ResponseWriter, r *http.Request) {
	form := paycheckForm{
		Amount:  r.PostFormValue("amount"),
		PayType: r.PostFormValue("payType"),
	}
	if err := httpx.Validate(form); err != nil {
		httpx.Error(w, r, err)
		return
	}

	amount, err := money.ParseAmount(form.Amount)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	m, err := h.svc.RoutePaycheck(r.Context(), funds.RouteParams{Amount: amount, RuleKey: form.PayType})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(m))
}

func (h *Handler) expense(w http.ResponseWriter, r *http.Request) {
	form := expenseForm{
		AccountID:   r.PostFormValue("accountId"),
		Amount:      r.PostFormValue("amount"),
		BillID:      r.PostFormValue("billId"),
		ExpenseName: r.PostFormValue("expenseName"),
	}
	if err := httpx.Validate(form); err != nil {
		httpx.Error(w, r, err)
		return
	}

	accountID, err := httpx.ParseInt(form.AccountID, "accountId")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	billID, err := httpx.OptionalInt(form.BillID, "billId")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	amount, err := money.ParseAmount(form.Amount)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	m, err := h.svc.PayExpense(r.Context(), funds.ExpenseParams{
		AccountID:   accountID,
		Amount:      amount,
		BillID:      billID,
		Description: form.ExpenseName,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(m))
}

func (h *Handler) payBill(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	m, err := h.svc.PayBill(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(m))
}
