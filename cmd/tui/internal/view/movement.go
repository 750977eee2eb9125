package view

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

// renderMovement lists the entries written and the resulting balances.
func renderMovement(m *funds.Movement, names map[int64]string) string {
	var b strings.Builder

	b.WriteString(okStyle.Render(fmt.Sprintf("%s recorded", strings.ToUpper(string(m.Kind[:1]))+string(m.Kind[1:]))))
	b.WriteString("\n\n")

	if m.Plan != nil {
		rule := m.Plan.RuleKey
		if rule == "" {
			rule = "none"
		}

		fmt.Fprintf(&b, "Rule: %s\nGross: %s  Transfers: %s  Kept: %s\n\n",
			rule, FormatAmount(m.Plan.Gross), FormatAmount(m.Plan.TotalTransfers), amountStyle(m.Plan.Remainder))
	}

	b.WriteString("Entries:\n")

	for _, e := range m.Entries {
		fmt.Fprintf(&b, "  %s  %10s  %s\n", FormatDate(e.Date), FormatAmount(e.Amount), e.Description)
	}

	b.WriteString("\nBalances:\n")

	for _, id := range m.AccountIDs() {
		name := names[id]
		if name == "" {
			name = "#" + strconv.FormatInt(id, 10)
		}

		fmt.Fprintf(&b, "  %-16s %s\n", name, amountStyle(m.Balances[id]))
	}

	return b.String()
}

func validateAmount(s string) error {
	_, err := money.ParseAmount(s)
	return err
}

func accountOptions(accounts []*account.Account) []huh.Option[int64] {
	opts := make([]huh.Option[int64], 0, len(accounts))
	for _, a := range accounts {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", a.Name, FormatAmount(a.Balance)), a.ID))
	}

	return opts
}

type accountsLoadedMsg struct {
	accounts []*account.Account
	err      error
}

func loadAccountsCmd(svc *account.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := svc.List(ctx)

		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

type movementDoneMsg struct {
	movement *funds.Movement
	err      error
}
