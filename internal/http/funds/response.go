package funds

import (
	"strconv"

	"github.com/MrJamesThe3rd/payday/internal/funds"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

type movementResponse struct {
	Kind           funds.Kind        `json:"kind"`
	RuleKey        string            `json:"rule_key,omitempty"`
	Gross          string            `json:"gross,omitempty"`
	TotalTransfers string            `json:"total_transfers,omitempty"`
	Remainder      string            `json:"remainder,omitempty"`
	BillID         *int64            `json:"bill_id,omitempty"`
	Balances       map[string]string `json:"balances"`
	Entries        []entryResponse   `json:"entries"`
}

type entryResponse struct {
	ID                   int64         `json:"id"`
	Date                 string        `json:"date"`
	Amount               string        `json:"amount"`
	SourceAccountID      *int64        `json:"source_account_id,omitempty"`
	DestinationAccountID *int64        `json:"destination_account_id,omitempty"`
	Status               ledger.Status `json:"status"`
	Description          string        `json:"description"`
}

func toEntryResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:                   e.ID,
		Date:                 e.Date.Format("2006-01-02"),
		Amount:               money.Format(e.Amount),
		SourceAccountID:      e.SourceAccountID,
		DestinationAccountID: e.DestinationAccountID,
		Status:               e.Status,
		Description:          e.Description,
	}
}

func toResponse(m *funds.Movement) movementResponse {
	resp := movementResponse{
		Kind:     m.Kind,
		BillID:   m.BillID,
		Balances: make(map[string]string, len(m.Balances)),
		Entries:  make([]entryResponse, 0, len(m.Entries)),
	}

	if m.Plan != nil {
		resp.RuleKey = m.Plan.RuleKey
		resp.Gross = money.Format(m.Plan.Gross)
		resp.TotalTransfers = money.Format(m.Plan.TotalTransfers)
		resp.Remainder = money.Format(m.Plan.Remainder)
	}

	for id, b := range m.Balances {
		resp.Balances[strconv.FormatInt(id, 10)] = money.Format(b)
	}

	for _, e := range m.Entries {
		resp.Entries = append(resp.Entries, toEntryResponse(e))
	}

	return resp
}
