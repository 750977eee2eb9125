package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/payday/internal/export"
	"github.com/MrJamesThe3rd/payday/internal/http/httpx"
	ledgerHandler "github.com/MrJamesThe3rd/payday/internal/http/ledger"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes takes the same query filters as the ledger listing.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/ledger.csv", h.csv)
	r.Get("/statement", h.statement)
}

func (h *Handler) items(w http.ResponseWriter, r *http.Request) ([]export.Item, bool) {
	filter, err := ledgerHandler.ParseFilter(r)
	if err != nil {
		httpx.Error(w, r, err)
		return nil, false
	}

	items, err := h.svc.Export(r.Context(), filter)
	if err != nil {
		httpx.Error(w, r, err)
		return nil, false
	}

	return items, true
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	items, ok := h.items(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"ledger_%s.csv\"", time.Now().Format("20060102")))

	if err := export.WriteCSV(w, items); err != nil {
		slog.Error("failed to write ledger csv", "error", err)
	}
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	items, ok := h.items(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := w.Write([]byte(export.Statement(items))); err != nil {
		slog.Error("failed to write statement", "error", err)
	}
}
