package bill

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/payday/internal/bill"
	"github.com/MrJamesThe3rd/payday/internal/http/httpx"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

const maxUploadSize = 2 << 20

type Handler struct {
	svc *bill.Service
}

func NewHandler(svc *bill.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/import", h.importCSV)
	r.Post("/reset", h.reset)
	r.Get("/{id}", h.get)
}

type billResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ExpectedAmount  string `json:"expected_amount"`
	PayingAccountID int64  `json:"paying_account_id"`
	DueDay          *int   `json:"due_day,omitempty"`
	Active          bool   `json:"is_active"`
}

func toResponse(b *bill.Bill) billResponse {
	return billResponse{
		ID:              b.ID,
		Name:            b.Name,
		ExpectedAmount:  money.Format(b.ExpectedAmount),
		PayingAccountID: b.PayingAccountID,
		DueDay:          b.DueDay,
		Active:          b.Active,
	}
}

func toResponseList(bills []*bill.Bill) []billResponse {
	resp := make([]billResponse, 0, len(bills))
	for _, b := range bills {
		resp = append(resp, toResponse(b))
	}

	return resp
}

type createForm struct {
	Name            string `form:"name" validate:"required,max=100"`
	ExpectedAmount  string `form:"expectedAmount" validate:"required"`
	PayingAccountID string `form:"payingAccountId" validate:"required,number"`
	DueDay          string `form:"dueDay" validate:"omitempty,number"`
}

type resetResponse struct {
	Reset int64 `json:"reset"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))

	bills, err := h.svc.List(r.Context(), activeOnly)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponseList(bills))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form := createForm{
		Name:            r.PostFormValue("name"),
		ExpectedAmount:  r.PostFormValue("expectedAmount"),
		PayingAccountID: r.PostFormValue("payingAccountId"),
		DueDay:          r.PostFormValue("dueDay"),
	}
	if err := httpx.Validate(form); err != nil {
		httpx.Error(w, r, err)
		return
	}

	amount, err := money.ParseAmount(form.ExpectedAmount)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	accountID, err := httpx.ParseInt(form.PayingAccountID, "payingAccountId")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	params := bill.CreateParams{Name: form.Name, ExpectedAmount: amount, PayingAccountID: accountID}

	if s := strings.TrimSpace(form.DueDay); s != "" {
		day, _ := strconv.Atoi(s)
		params.DueDay = &day
	}

	b, err := h.svc.Create(r.Context(), params)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(b))
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	bills, err := h.svc.Import(r.Context(), file)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponseList(bills))
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ResetMonthly(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, resetResponse{Reset: n})
}
