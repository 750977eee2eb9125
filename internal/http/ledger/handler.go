package ledger

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/payday/internal/http/httpx"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type entryResponse struct {
	ID                   int64         `json:"id"`
	Date                 string        `json:"date"`
	Amount               string        `json:"amount"`
	SourceAccountID      *int64        `json:"source_account_id,omitempty"`
	DestinationAccountID *int64        `json:"destination_account_id,omitempty"`
	Status               ledger.Status `json:"status"`
	Description          string        `json:"description"`
	CreatedAt            time.Time     `json:"created_at"`
}

// ParseFilter reads account_id, start_date, end_date and limit from the query.
func ParseFilter(r *http.Request) (ledger.ListFilter, error) {
	q := r.URL.Query()

	var (
		filter ledger.ListFilter
		err    error
	)

	if filter.AccountID, err = httpx.OptionalInt(q.Get("account_id"), "account_id"); err != nil {
		return filter, err
	}

	if filter.StartDate, err = parseDate(q.Get("start_date"), "start_date"); err != nil {
		return filter, err
	}

	if filter.EndDate, err = parseDate(q.Get("end_date"), "end_date"); err != nil {
		return filter, err
	}

	if s := q.Get("limit"); s != "" {
		if filter.Limit, err = strconv.Atoi(s); err != nil {
			return filter, fmt.Errorf("%w: limit must be a number", httpx.ErrValidation)
		}
	}

	return filter, nil
}

func parseDate(s, name string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", httpx.ErrValidation, name)
	}

	return &t, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	entries, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, entryResponse{
			ID:                   e.ID,
			Date:                 e.Date.Format(time.DateOnly),
			Amount:               money.Format(e.Amount),
			SourceAccountID:      e.SourceAccountID,
			DestinationAccountID: e.DestinationAccountID,
			Status:               e.Status,
			Description:          e.Description,
			CreatedAt:            e.CreatedAt,
		})
	}

	httpx.JSON(w, http.StatusOK, resp)
}
