package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/payday/internal/dashboard"
)

type DashboardModel struct {
	CommonModel
	svc *dashboard.Service

	accounts table.Model
	bills    table.Model
	summary  *dashboard.Summary

	loading bool
	err     error
}

func NewDashboardModel(svc *dashboard.Service) DashboardModel {
	accounts := newTable([]table.Column{
		{Title: "ID", Width: 4},
		{Title: "Account", Width: 20},
		{Title: "Balance", Width: 14},
	}, 10)

	bills := newTable([]table.Column{
		{Title: "Bill", Width: 20},
		{Title: "Amount", Width: 12},
		{Title: "Paid From", Width: 16},
		{Title: "Due", Width: 12},
	}, 10)
	bills.Blur()

	return DashboardModel{
		svc:      svc,
		accounts: accounts,
		bills:    bills,
		loading:  true,
	}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh | Tab: switch table" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.summary = msg.summary
			m.refreshTables()
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "tab":
			if m.accounts.Focused() {
				m.accounts.Blur()
				m.bills.Focus()
			} else {
				m.bills.Blur()
				m.accounts.Focus()
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.accounts.Focused() {
		m.accounts, cmd = m.accounts.Update(msg)
	} else {
		m.bills, cmd = m.bills.Update(msg)
	}

	return m, cmd
}

func (m *DashboardModel) refreshTables() {
	rows := make([]table.Row, 0, len(m.summary.Accounts))
	for _, a := range m.summary.Accounts {
		rows = append(rows, table.Row{strconv.FormatInt(a.ID, 10), a.Name, FormatAmount(a.Balance)})
	}

	m.accounts.SetRows(rows)

	rows = make([]table.Row, 0, len(m.summary.Bills))
	for _, b := range m.summary.Bills {
		due := b.NextDue
		if due == "" {
			due = "-"
		}

		rows = append(rows, table.Row{b.Name, FormatAmount(b.ExpectedAmount), b.PayingAccount, due})
	}

	m.bills.SetRows(rows)
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	totals := panelStyle.Render(fmt.Sprintf(
		"%s\n\nPrimary balance: %s\nUnpaid bills:    %s\nSafe to spend:   %s",
		titleStyle.Render("Safe to Spend"),
		FormatAmount(m.summary.PrimaryBalance),
		FormatAmount(m.summary.PendingBills),
		amountStyle(m.summary.SafeToSpend),
	))

	tables := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, "Accounts", renderTable(m.accounts)),
		"  ",
		lipgloss.JoinVertical(lipgloss.Left, "Unpaid Bills", renderTable(m.bills)),
	)

	return screenStyle.Render(lipgloss.JoinVertical(lipgloss.Left, totals, "", tables))
}

type dashboardLoadedMsg struct {
	summary *dashboard.Summary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sum, err := m.svc.Summary(ctx)

		return dashboardLoadedMsg{summary: sum, err: err}
	}
}
