// Package export renders ledger statements for download.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

type EntrySource interface {
	List(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error)
}

type AccountSource interface {
	List(ctx context.Context) ([]*account.Account, error)
}

// Item is one ledger entry with its account names resolved.
type Item struct {
	Entry *ledger.Entry
	From  string
	To    string
}

// Service handles the export of ledger statements.
type Service struct {
	entries  EntrySource
	accounts AccountSource
}

func NewService(entries EntrySource, accounts AccountSource) *Service {
	return &Service{entries: entries, accounts: accounts}
}

// Export lists the entries matching filter, newest first, with account names.
func (s *Service) Export(ctx context.Context, filter ledger.ListFilter) ([]Item, error) {
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	names := account.Names(accounts)
	items := make([]Item, 0, len(entries))

	for _, e := range entries {
		items = append(items, Item{
			Entry: e,
			From:  accountName(names, e.SourceAccountID),
			To:    accountName(names, e.DestinationAccountID),
		})
	}

	return items, nil
}

func accountName(names map[int64]string, id *int64) string {
	if id == nil {
		return ""
	}

	if name, ok := names[*id]; ok {
		return name
	}

	return "#" + strconv.FormatInt(*id, 10)
}

var csvHeader = []string{"id", "date", "amount", "from", "to", "status", "description"}

// WriteCSV writes items as a semicolon separated file, the same dialect the
// bill import reads.
func WriteCSV(w io.Writer, items []Item) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, item := range items {
		e := item.Entry

		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.Date.Format("2006-01-02"),
			money.Format(e.Amount),
			item.From,
			item.To,
			string(e.Status),
			e.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing entry %d: %w", e.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Statement renders a plain text summary, one line per entry plus the net total.
func Statement(items []Item) string {
	var sb strings.Builder

	net := decimal.Zero

	for _, item := range items {
		e := item.Entry

		sign := ""
		if e.Amount.IsPositive() {
			sign = "+"
		}

		route := item.To
		if item.From != "" {
			route = item.From + " -> " + item.To
			if item.To == "" {
				route = item.From
			}
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s | %s\n", e.Date.Format("2006-01-02"), e.Description, sign, money.Format(e.Amount), route)

		net = net.Add(e.Amount)
	}

	fmt.Fprintf(&sb, "\n%d entries, net %s\n", len(items), money.Format(net))

	return sb.String()
}
