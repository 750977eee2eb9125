package account

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/http/httpx"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}/balance", h.setBalance)
}

type accountResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Balance   string    `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(a *account.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Balance:   money.Format(a.Balance),
		UpdatedAt: a.UpdatedAt,
	}
}

type createForm struct {
	Name string `form:"name" validate:"required,max=100"`
}

type balanceForm struct {
	Balance string `form:"balance" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.List(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, toResponse(a))
	}

	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	acc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(acc))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form := createForm{Name: r.PostFormValue("name")}
	if err := httpx.Validate(form); err != nil {
		httpx.Error(w, r, err)
		return
	}

	acc, err := h.svc.Create(r.Context(), form.Name)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(acc))
}

// setBalance overwrites the balance without a ledger entry.
func (h *Handler) setBalance(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	form := balanceForm{Balance: r.PostFormValue("balance")}
	if err := httpx.Validate(form); err != nil {
		httpx.Error(w, r, err)
		return
	}

	balance, err := money.ParseBalance(form.Balance)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	acc, err := h.svc.SetBalance(r.Context(), id, balance)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(acc))
}
