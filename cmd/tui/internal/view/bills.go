package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/bill"
	"github.com/MrJamesThe3rd/payday/internal/funds"
)

type billsState int

const (
	billsStateBrowse billsState = iota
	billsStateConfirmReset
)

type BillsModel struct {
	CommonModel
	billSvc    *bill.Service
	fundsSvc   *funds.Service
	accountSvc *account.Service

	state billsState
	table table.Model
	bills []*bill.Bill
	names map[int64]string
	form  *huh.Form
	reset *bool

	loading bool
	err     error
	status  string
}

func NewBillsModel(billSvc *bill.Service, fundsSvc *funds.Service, accountSvc *account.Service) BillsModel {
	t := newTable([]table.Column{
		{Title: "ID", Width: 4},
		{Title: "Bill", Width: 24},
		{Title: "Amount", Width: 12},
		{Title: "Paid From", Width: 16},
		{Title: "Due Day", Width: 8},
		{Title: "Status", Width: 8},
	}, 15)

	return BillsModel{
		billSvc:    billSvc,
		fundsSvc:   fundsSvc,
		accountSvc: accountSvc,
		table:      t,
		reset:      new(false),
		loading:    true,
	}
}

func (m BillsModel) Title() string { return "Bills" }

func (m BillsModel) ShortHelp() string {
	if m.state == billsStateConfirmReset {
		return "Enter: confirm | Esc: cancel"
	}

	return "Esc: back | p: pay selected | n: new cycle | r: refresh"
}

func (m BillsModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), loadAccountsCmd(m.accountSvc))
}

func (m BillsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case billsLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.bills = msg.bills
			m.refreshTable()
		}

		return m, nil

	case accountsLoadedMsg:
		if msg.err == nil {
			m.names = account.Names(msg.accounts)
			m.refreshTable()
		}

		return m, nil

	case movementDoneMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		} else {
			m.status = okStyle.Render(fmt.Sprintf("Paid %s", msg.movement.Entries[0].Description))
		}

		return m, m.loadCmd()

	case billsResetMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		} else {
			m.status = okStyle.Render(fmt.Sprintf("New cycle started, %d bills unpaid.", msg.count))
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(m.Resize(msg))
		return m, nil
	}

	switch m.state {
	case billsStateBrowse:
		return m.updateBrowse(msg)
	case billsStateConfirmReset:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m BillsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "p":
			return m, m.payCmd()
		case "n":
			*m.reset = false
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Key("reset").
						Title("Start a new billing cycle?").
						Description("Every bill is marked unpaid again.").
						Affirmative("Yes").
						Negative("No").
						Value(m.reset),
				),
			).WithWidth(50).WithShowHelp(false)
			m.state = billsStateConfirmReset
			m.table.Blur()

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BillsModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = billsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = billsStateBrowse
	m.form = nil
	m.table.Focus()

	if !*m.reset {
		return m, nil
	}

	return m, m.resetCmd()
}

func (m *BillsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.bills))
	for _, b := range m.bills {
		due := "-"
		if b.DueDay != nil {
			due = strconv.Itoa(*b.DueDay)
		}

		status := "Paid"
		if b.Active {
			status = "Unpaid"
		}

		payer := m.names[b.PayingAccountID]
		if payer == "" {
			payer = "#" + strconv.FormatInt(b.PayingAccountID, 10)
		}

		rows = append(rows, table.Row{
			strconv.FormatInt(b.ID, 10),
			b.Name,
			FormatAmount(b.ExpectedAmount),
			payer,
			due,
			status,
		})
	}

	m.table.SetRows(rows)
}

func (m BillsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading bills...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Unpaid total: %s", activeStyle(FormatAmount(bill.Total(m.active()))))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		renderTable(m.table),
	)

	if m.state == billsStateConfirmReset && m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return screenStyle.Render(content)
}

func (m BillsModel) active() []*bill.Bill {
	active := make([]*bill.Bill, 0, len(m.bills))
	for _, b := range m.bills {
		if b.Active {
			active = append(active, b)
		}
	}

	return active
}

func (m BillsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		bills, err := m.billSvc.List(ctx, false)

		return billsLoadedMsg{bills: bills, err: err}
	}
}

func (m BillsModel) payCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.bills) {
		return nil
	}

	id := m.bills[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		mv, err := m.fundsSvc.PayBill(ctx, id)

		return movementDoneMsg{movement: mv, err: err}
	}
}

type billsResetMsg struct {
	count int64
	err   error
}

func (m BillsModel) resetCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		n, err := m.billSvc.ResetMonthly(ctx)

		return billsResetMsg{count: n, err: err}
	}
}
