package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	"github.com/MrJamesThe3rd/payday/internal/money"
	"github.com/MrJamesThe3rd/payday/internal/routing"
)

type paycheckState int

const (
	paycheckStateForm paycheckState = iota
	paycheckStateConfirm
	paycheckStateSubmitting
	paycheckStateResult
)

// paycheckInput is shared by pointer so huh bindings survive model copies.
type paycheckInput struct {
	Amount  string
	RuleKey string
	Confirm bool
}

type PaycheckModel struct {
	CommonModel
	fundsSvc   *funds.Service
	accountSvc *account.Service
	table      *routing.Table

	state   paycheckState
	input   *paycheckInput
	form    *huh.Form
	plan    *routing.Plan
	spinner spinner.Model
	names   map[int64]string

	movement *funds.Movement
	err      error
}

func NewPaycheckModel(fundsSvc *funds.Service, accountSvc *account.Service, table *routing.Table) PaycheckModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := PaycheckModel{
		fundsSvc:   fundsSvc,
		accountSvc: accountSvc,
		table:      table,
		input:      &paycheckInput{RuleKey: table.DefaultRule()},
		spinner:    s,
	}
	m.form = m.buildForm()

	return m
}

func (m PaycheckModel) Title() string { return "Route Paycheck" }

func (m PaycheckModel) ShortHelp() string {
	if m.state == paycheckStateResult {
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m PaycheckModel) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), loadAccountsCmd(m.accountSvc))
}

func (m PaycheckModel) buildForm() *huh.Form {
	opts := make([]huh.Option[string], 0, len(m.table.Rules()))
	for _, r := range m.table.Rules() {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s routed)", r.Label, FormatAmount(r.Total())), r.Key))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Paycheck Amount").
				Placeholder("3000.00").
				Value(&m.input.Amount).
				Validate(validateAmount),

			huh.NewSelect[string]().
				Key("rule").
				Title("Pay Type").
				Options(opts...).
				Value(&m.input.RuleKey),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m PaycheckModel) buildConfirm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title("Route this paycheck?").
				Affirmative("Route").
				Negative("Cancel").
				Value(&m.input.Confirm),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m PaycheckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		if msg.err == nil {
			m.names = account.Names(msg.accounts)
		}

		return m, nil

	case movementDoneMsg:
		m.state = paycheckStateResult
		m.movement = msg.movement
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == paycheckStateConfirm {
				m.state = paycheckStateForm
				m.form = m.buildForm()

				return m, m.form.Init()
			}

			if m.state != paycheckStateSubmitting {
				return m, Back
			}
		}
	}

	switch m.state {
	case paycheckStateForm:
		return m.updateForm(msg)
	case paycheckStateConfirm:
		return m.updateConfirm(msg)
	case paycheckStateSubmitting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m PaycheckModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	amount, err := money.ParseAmount(m.input.Amount)
	if err != nil {
		m.err = err
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	plan, err := m.table.Plan(amount, m.input.RuleKey)
	if err != nil {
		m.err = err
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	m.err = nil
	m.plan = plan
	m.input.Confirm = true
	m.form = m.buildConfirm()
	m.state = paycheckStateConfirm

	return m, m.form.Init()
}

func (m PaycheckModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.input.Confirm {
		m.state = paycheckStateForm
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	m.state = paycheckStateSubmitting

	return m, tea.Batch(m.spinner.Tick, m.routeCmd())
}

func (m PaycheckModel) View() string {
	switch m.state {
	case paycheckStateForm:
		view := m.form.View()
		if m.err != nil {
			view += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
		}

		return screenStyle.Render(view)

	case paycheckStateConfirm:
		return screenStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.planView(), "", m.form.View()))

	case paycheckStateSubmitting:
		return screenStyle.Render(fmt.Sprintf("%s Routing paycheck...", m.spinner.View()))

	case paycheckStateResult:
		if m.err != nil {
			return screenStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + faintStyle.Render("Nothing was moved."))
		}

		return screenStyle.Render(renderMovement(m.movement, m.names))
	}

	return ""
}

func (m PaycheckModel) planView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Preview"))
	fmt.Fprintf(&b, "\n\nGross: %s\n\n", FormatAmount(m.plan.Gross))

	if len(m.plan.Transfers) == 0 {
		b.WriteString(faintStyle.Render("No transfers for this pay type.") + "\n")
	}

	for _, tr := range m.plan.Transfers {
		fmt.Fprintf(&b, "  -> %-14s %s\n", tr.Account, FormatAmount(tr.Amount))
	}

	fmt.Fprintf(&b, "\nStays in primary: %s", amountStyle(m.plan.Remainder))

	return panelStyle.Render(b.String())
}

func (m PaycheckModel) routeCmd() tea.Cmd {
	params := funds.RouteParams{Amount: m.plan.Gross, RuleKey: m.input.RuleKey}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		mv, err := m.fundsSvc.RoutePaycheck(ctx, params)

		return movementDoneMsg{movement: mv, err: err}
	}
}
