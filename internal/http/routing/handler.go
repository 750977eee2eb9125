package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/payday/internal/http/httpx"
	"github.com/MrJamesThe3rd/payday/internal/money"
	"github.com/MrJamesThe3rd/payday/internal/routing"
)

type Handler struct {
	table *routing.Table
}

func NewHandler(table *routing.Table) *Handler {
	return &Handler{table: table}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rules", h.rules)
}

type transferResponse struct {
	Account   string `json:"account"`
	AccountID int64  `json:"account_id"`
	Amount    string `json:"amount"`
}

type ruleResponse struct {
	Key       string             `json:"key"`
	Label     string             `json:"label"`
	Default   bool               `json:"default"`
	Total     string             `json:"total"`
	Transfers []transferResponse `json:"transfers"`
}

func (h *Handler) rules(w http.ResponseWriter, _ *http.Request) {
	rules := h.table.Rules()
	resp := make([]ruleResponse, 0, len(rules))

	for _, rule := range rules {
		rr := ruleResponse{
			Key:       rule.Key,
			Label:     rule.Label,
			Default:   rule.Key == h.table.DefaultRule(),
			Total:     money.Format(rule.Total()),
			Transfers: make([]transferResponse, 0, len(rule.Transfers)),
		}

		for _, tr := range rule.Transfers {
			rr.Transfers = append(rr.Transfers, transferResponse{
				Account:   tr.Account,
				AccountID: tr.AccountID,
				Amount:    money.Format(tr.Amount),
			})
		}

		resp = append(resp, rr)
	}

	httpx.JSON(w, http.StatusOK, resp)
}
