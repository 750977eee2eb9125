package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/bill"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

type moveState int

const (
	moveStateLoading moveState = iota
	moveStateForm
	moveStateSubmitting
	moveStateResult
)

type moveInput struct {
	AccountID   int64
	Amount      string
	BillID      int64
	Description string
}

// MoveModel records a single-account deposit or expense.
type MoveModel struct {
	CommonModel
	kind       funds.Kind
	fundsSvc   *funds.Service
	accountSvc *account.Service
	billSvc    *bill.Service

	state   moveState
	input   *moveInput
	form    *huh.Form
	spinner spinner.Model

	accounts []*account.Account
	bills    []*bill.Bill

	movement *funds.Movement
	err      error
}

func NewDepositModel(fundsSvc *funds.Service, accountSvc *account.Service) MoveModel {
	return newMoveModel(funds.KindDeposit, fundsSvc, accountSvc, nil)
}

func NewExpenseModel(fundsSvc *funds.Service, accountSvc *account.Service, billSvc *bill.Service) MoveModel {
	return newMoveModel(funds.KindExpense, fundsSvc, accountSvc, billSvc)
}

func newMoveModel(kind funds.Kind, fundsSvc *funds.Service, accountSvc *account.Service, billSvc *bill.Service) MoveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return MoveModel{
		kind:       kind,
		fundsSvc:   fundsSvc,
		accountSvc: accountSvc,
		billSvc:    billSvc,
		input:      &moveInput{},
		spinner:    s,
	}
}

func (m MoveModel) Title() string {
	if m.kind == funds.KindDeposit {
		return "Deposit"
	}

	return "Pay Expense"
}

func (m MoveModel) ShortHelp() string {
	if m.state == moveStateResult {
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m MoveModel) Init() tea.Cmd {
	cmds := []tea.Cmd{loadAccountsCmd(m.accountSvc)}
	if m.billSvc != nil {
		cmds = append(cmds, m.loadBillsCmd())
	}

	return tea.Batch(cmds...)
}

func (m MoveModel) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewSelect[int64]().
			Key("account").
			Title("Account").
			Options(accountOptions(m.accounts)...).
			Value(&m.input.AccountID),

		huh.NewInput().
			Key("amount").
			Title("Amount").
			Placeholder("0.00").
			Value(&m.input.Amount).
			Validate(validateAmount),
	}

	if m.kind == funds.KindExpense && len(m.bills) > 0 {
		opts := []huh.Option[int64]{huh.NewOption("None", int64(0))}
		for _, b := range m.bills {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", b.Name, FormatAmount(b.ExpectedAmount)), b.ID))
		}

		fields = append(fields, huh.NewSelect[int64]().
			Key("bill").
			Title("Marks Bill Paid").
			Options(opts...).
			Value(&m.input.BillID))
	}

	fields = append(fields, huh.NewInput().
		Key("description").
		Title("Description (optional)").
		Value(&m.input.Description))

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(50).WithShowHelp(false)
}

func (m MoveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = moveStateResult

			return m, nil
		}

		m.accounts = msg.accounts
		if m.accounts == nil {
			m.accounts = []*account.Account{}
		}

		return m.maybeStartForm()

	case billsLoadedMsg:
		// Without bills the expense is still recordable, just not tied to one.
		m.bills = msg.bills
		if m.bills == nil {
			m.bills = []*bill.Bill{}
		}

		return m.maybeStartForm()

	case movementDoneMsg:
		m.state = moveStateResult
		m.movement = msg.movement
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.state != moveStateSubmitting {
			return m, Back
		}
	}

	switch m.state {
	case moveStateForm:
		return m.updateForm(msg)
	case moveStateSubmitting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

// maybeStartForm waits for the accounts, and for the bills on the expense screen.
func (m MoveModel) maybeStartForm() (tea.Model, tea.Cmd) {
	if m.state != moveStateLoading || m.accounts == nil {
		return m, nil
	}

	if m.billSvc != nil && m.bills == nil {
		return m, nil
	}

	m.form = m.buildForm()
	m.state = moveStateForm

	return m, m.form.Init()
}

func (m MoveModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = moveStateSubmitting

	return m, tea.Batch(m.spinner.Tick, m.submitCmd())
}

func (m MoveModel) View() string {
	switch m.state {
	case moveStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")

	case moveStateForm:
		return screenStyle.Render(titleStyle.Render(m.Title()) + "\n\n" + m.form.View())

	case moveStateSubmitting:
		return screenStyle.Render(fmt.Sprintf("%s Saving...", m.spinner.View()))

	case moveStateResult:
		if m.err != nil {
			return screenStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return screenStyle.Render(renderMovement(m.movement, account.Names(m.accounts)))
	}

	return ""
}

func (m MoveModel) submitCmd() tea.Cmd {
	in := *m.input

	return func() tea.Msg {
		amount, err := money.ParseAmount(in.Amount)
		if err != nil {
			return movementDoneMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		var mv *funds.Movement

		if m.kind == funds.KindDeposit {
			mv, err = m.fundsSvc.Deposit(ctx, funds.DepositParams{
				AccountID:   in.AccountID,
				Amount:      amount,
				Description: in.Description,
			})
		} else {
			params := funds.ExpenseParams{AccountID: in.AccountID, Amount: amount, Description: in.Description}
			if in.BillID != 0 {
				params.BillID = &in.BillID
			}

			mv, err = m.fundsSvc.PayExpense(ctx, params)
		}

		return movementDoneMsg{movement: mv, err: err}
	}
}

type billsLoadedMsg struct {
	bills []*bill.Bill
	err   error
}

func (m MoveModel) loadBillsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		bills, err := m.billSvc.List(ctx, true)

		return billsLoadedMsg{bills: bills, err: err}
	}
}
