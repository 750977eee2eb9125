// Package events publishes committed money movements to downstream consumers.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/payday/internal/funds"
)

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

type MovementEvent struct {
	ID         uuid.UUID                  `json:"id"`
	Kind       funds.Kind                 `json:"kind"`
	OccurredAt time.Time                  `json:"occurred_at"`
	RuleKey    string                     `json:"rule_key,omitempty"`
	Gross      *decimal.Decimal           `json:"gross,omitempty"`
	Remainder  *decimal.Decimal           `json:"remainder,omitempty"`
	BillID     *int64                     `json:"bill_id,omitempty"`
	Balances   map[string]decimal.Decimal `json:"balances"`
	Entries    []EntryEvent               `json:"entries"`
}

type EntryEvent struct {
	ID                   int64           `json:"id"`
	Date                 string          `json:"date"`
	Amount               decimal.Decimal `json:"amount"`
	SourceAccountID      *int64          `json:"source_account_id,omitempty"`
	DestinationAccountID *int64          `json:"destination_account_id,omitempty"`
	Description          string          `json:"description"`
}

func NewMovementEvent(m *funds.Movement) MovementEvent {
	ev := MovementEvent{
		ID:         uuid.New(),
		Kind:       m.Kind,
		OccurredAt: m.At.UTC(),
		BillID:     m.BillID,
		Balances:   make(map[string]decimal.Decimal, len(m.Balances)),
		Entries:    make([]EntryEvent, 0, len(m.Entries)),
	}

	if m.Plan != nil {
		ev.RuleKey = m.Plan.RuleKey
		ev.Gross = &m.Plan.Gross
		ev.Remainder = &m.Plan.Remainder
	}

	for id, b := range m.Balances {
		ev.Balances[strconv.FormatInt(id, 10)] = b
	}

	for _, e := range m.Entries {
		ev.Entries = append(ev.Entries, EntryEvent{
			ID:                   e.ID,
			Date:                 e.Date.Format(time.DateOnly),
			Amount:               e.Amount,
			SourceAccountID:      e.SourceAccountID,
			DestinationAccountID: e.DestinationAccountID,
			Description:          e.Description,
		})
	}

	return ev
}

// DefaultPublishTimeout bounds how long a committed movement waits on the broker.
const DefaultPublishTimeout = 2 * time.Second

// Notifier publishes every committed movement. Paychecks are keyed by the
// primary account, other movements by the account they touch, so events for
// one account stay ordered within a partition.
type Notifier struct {
	pub     Publisher
	timeout time.Duration
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub, timeout: DefaultPublishTimeout}
}

// WithTimeout overrides DefaultPublishTimeout.
func (n *Notifier) WithTimeout(d time.Duration) *Notifier {
	n.timeout = d

	return n
}

func (n *Notifier) Notify(ctx context.Context, m *funds.Movement) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	return n.pub.Publish(ctx, Key(m), NewMovementEvent(m))
}

// Key is the partition key of m.
func Key(m *funds.Movement) string {
	if m.Plan != nil && m.Plan.PrimaryAccountID != 0 {
		return strconv.FormatInt(m.Plan.PrimaryAccountID, 10)
	}

	if ids := m.AccountIDs(); len(ids) > 0 {
		return strconv.FormatInt(ids[0], 10)
	}

	return ""
}

// Noop drops every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

func (Noop) Close() error { return nil }
