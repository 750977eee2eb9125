package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/payday/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/payday/internal/account"
	accountStore "github.com/MrJamesThe3rd/payday/internal/account/store"
	"github.com/MrJamesThe3rd/payday/internal/bill"
	billStore "github.com/MrJamesThe3rd/payday/internal/bill/store"
	"github.com/MrJamesThe3rd/payday/internal/config"
	"github.com/MrJamesThe3rd/payday/internal/dashboard"
	"github.com/MrJamesThe3rd/payday/internal/database"
	"github.com/MrJamesThe3rd/payday/internal/events"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	fundsStore "github.com/MrJamesThe3rd/payday/internal/funds/store"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/payday/internal/ledger/store"
	"github.com/MrJamesThe3rd/payday/internal/logging"
	"github.com/MrJamesThe3rd/payday/internal/observability"
	"github.com/MrJamesThe3rd/payday/internal/routing"
)

type services struct {
	accounts  *account.Service
	bills     *bill.Service
	funds     *funds.Service
	ledger    *ledger.Service
	dashboard *dashboard.Service
	table     *routing.Table
	publisher events.Publisher
}

type model struct {
	svc    services
	active view.View // nil on the menu
}

var menu = []string{
	"Dashboard",
	"Route Paycheck",
	"Deposit",
	"Pay Expense",
	"Bills",
	"Ledger",
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to stderr.
	logging.Setup(os.Stderr, cfg.App.LogFormat, "error")

	ctx, cancel := view.DbCtx()
	defer cancel()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	table, err := routing.Load(cfg.Routing.RulesFile)
	if err != nil {
		slog.Error("failed to load routing rules", "error", err)
		os.Exit(1)
	}

	var cache *dashboard.Cache
	if cfg.Redis.Addr != "" {
		cache = dashboard.NewCache(redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr}), cfg.Redis.CacheTTL)
	}

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	notifiers := events.MovementNotifiers(publisher, cache, observability.NewMetrics())

	accountSvc := account.NewService(accountStore.New(db), cache)
	billSvc := bill.NewService(billStore.New(db), cache)

	return model{
		svc: services{
			accounts:  accountSvc,
			bills:     billSvc,
			funds:     funds.NewService(fundsStore.New(db), table, notifiers...),
			ledger:    ledger.NewService(ledgerStore.New(db)),
			dashboard: dashboard.NewService(accountSvc, billSvc, table.PrimaryAccountID(), cache),
			table:     table,
			publisher: publisher,
		},
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) open(choice string) (model, tea.Cmd) {
	s := m.svc

	switch choice {
	case "1":
		m.active = view.NewDashboardModel(s.dashboard)
	case "2":
		m.active = view.NewPaycheckModel(s.funds, s.accounts, s.table)
	case "3":
		m.active = view.NewDepositModel(s.funds, s.accounts)
	case "4":
		m.active = view.NewExpenseModel(s.funds, s.accounts, s.bills)
	case "5":
		m.active = view.NewBillsModel(s.bills, s.funds, s.accounts)
	case "6":
		m.active = view.NewLedgerModel(s.ledger, s.accounts)
	default:
		return m, nil
	}

	return m, m.active.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.active == nil {
			if msg.String() == "q" {
				return m, tea.Quit
			}

			return m.open(msg.String())
		}
	case view.BackMsg:
		m.active = nil
		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	m.active = next.(view.View)

	return m, cmd
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).PaddingLeft(1)
	helpStyle   = lipgloss.NewStyle().Faint(true).PaddingLeft(1)
)

func (m model) View() string {
	if m.active == nil {
		s := "Payday\n\n"
		for i, item := range menu {
			s += fmt.Sprintf("%d. %s\n", i+1, item)
		}

		return lipgloss.NewStyle().Padding(2).Render(s + "\nq. Quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(m.active.Title()),
		m.active.View(),
		helpStyle.Render(m.active.ShortHelp()),
	)
}

func main() {
	m := initialModel()

	p := tea.NewProgram(m)
	_, err := p.Run()
	_ = m.svc.publisher.Close()

	if err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
