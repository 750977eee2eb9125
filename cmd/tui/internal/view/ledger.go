package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
)

type ledgerState int

const (
	ledgerStateTimeframe ledgerState = iota
	ledgerStateList
)

type LedgerModel struct {
	CommonModel
	ledgerSvc  *ledger.Service
	accountSvc *account.Service

	state           ledgerState
	timeframePicker TimeframePicker
	table           table.Model
	entries         []*ledger.Entry
	accounts        []*account.Account
	names           map[int64]string

	// accountIdx cycles through accounts; 0 means all.
	accountIdx int
	filter     ledger.ListFilter

	loading bool
	err     error
}

func NewLedgerModel(ledgerSvc *ledger.Service, accountSvc *account.Service) LedgerModel {
	t := newTable([]table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "From", Width: 14},
		{Title: "To", Width: 14},
		{Title: "Status", Width: 9},
		{Title: "Description", Width: 32},
	}, 15)

	return LedgerModel{
		ledgerSvc:       ledgerSvc,
		accountSvc:      accountSvc,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		table:           t,
	}
}

func (m LedgerModel) Title() string { return "Ledger" }

func (m LedgerModel) ShortHelp() string {
	if m.state == ledgerStateTimeframe {
		return "Esc: back | Enter: select"
	}

	return "Esc: timeframe | a: account filter | r: refresh"
}

func (m LedgerModel) Init() tea.Cmd {
	return loadAccountsCmd(m.accountSvc)
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		if msg.err == nil {
			m.accounts = msg.accounts
			m.names = account.Names(msg.accounts)
		}

		return m, nil

	case TimeframeSelectedMsg:
		m.filter.StartDate, m.filter.EndDate = nil, nil
		if !msg.All {
			start := time.Date(msg.Start.Year(), msg.Start.Month(), msg.Start.Day(), 0, 0, 0, 0, time.UTC)
			end := time.Date(msg.End.Year(), msg.End.Month(), msg.End.Day(), 0, 0, 0, 0, time.UTC)
			m.filter.StartDate = &start
			m.filter.EndDate = &end
		}

		m.state = ledgerStateList
		m.loading = true

		return m, m.loadCmd()

	case ledgerLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.entries = msg.entries
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(m.Resize(msg))
		return m, nil
	}

	switch m.state {
	case ledgerStateTimeframe:
		return m.updateTimeframe(msg)
	case ledgerStateList:
		return m.updateList(msg)
	}

	return m, nil
}

func (m LedgerModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m LedgerModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = ledgerStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			m.accountIdx = (m.accountIdx + 1) % (len(m.accounts) + 1)
			m.filter.AccountID = nil

			if m.accountIdx > 0 {
				m.filter.AccountID = &m.accounts[m.accountIdx-1].ID
			}

			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) accountName(id *int64) string {
	if id == nil {
		return "-"
	}

	if name := m.names[*id]; name != "" {
		return name
	}

	return "#" + strconv.FormatInt(*id, 10)
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			FormatDate(e.Date),
			FormatAmount(e.Amount),
			m.accountName(e.SourceAccountID),
			m.accountName(e.DestinationAccountID),
			string(e.Status),
			e.Description,
		})
	}

	m.table.SetRows(rows)
}

func (m LedgerModel) View() string {
	if m.state == ledgerStateTimeframe {
		return screenStyle.Render(m.timeframePicker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	accountLabel := "All"
	if m.filter.AccountID != nil {
		accountLabel = m.accountName(m.filter.AccountID)
	}

	rangeLabel := "All Time"
	if m.filter.StartDate != nil {
		rangeLabel = FormatDate(*m.filter.StartDate) + " to " + FormatDate(*m.filter.EndDate)
	}

	header := fmt.Sprintf("Filter: [a] Account: %s | Range: %s | %d entries",
		activeStyle(accountLabel), activeStyle(rangeLabel), len(m.entries))

	return screenStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		renderTable(m.table),
	))
}

type ledgerLoadedMsg struct {
	entries []*ledger.Entry
	err     error
}

func (m LedgerModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.ledgerSvc.List(ctx, filter)

		return ledgerLoadedMsg{entries: entries, err: err}
	}
}
