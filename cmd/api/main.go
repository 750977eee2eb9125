package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/payday/internal/account"
	accountStore "github.com/MrJamesThe3rd/payday/internal/account/store"
	"github.com/MrJamesThe3rd/payday/internal/bill"
	billStore "github.com/MrJamesThe3rd/payday/internal/bill/store"
	"github.com/MrJamesThe3rd/payday/internal/config"
	"github.com/MrJamesThe3rd/payday/internal/dashboard"
	"github.com/MrJamesThe3rd/payday/internal/database"
	"github.com/MrJamesThe3rd/payday/internal/events"
	"github.com/MrJamesThe3rd/payday/internal/export"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	fundsStore "github.com/MrJamesThe3rd/payday/internal/funds/store"
	paydayHttp "github.com/MrJamesThe3rd/payday/internal/http"
	accountHandler "github.com/MrJamesThe3rd/payday/internal/http/account"
	billHandler "github.com/MrJamesThe3rd/payday/internal/http/bill"
	dashboardHandler "github.com/MrJamesThe3rd/payday/internal/http/dashboard"
	exportHandler "github.com/MrJamesThe3rd/payday/internal/http/export"
	fundsHandler "github.com/MrJamesThe3rd/payday/internal/http/funds"
	ledgerHandler "github.com/MrJamesThe3rd/payday/internal/http/ledger"
	routingHandler "github.com/MrJamesThe3rd/payday/internal/http/routing"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/payday/internal/ledger/store"
	"github.com/MrJamesThe3rd/payday/internal/logging"
	"github.com/MrJamesThe3rd/payday/internal/observability"
	"github.com/MrJamesThe3rd/payday/internal/routing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(os.Stdout, cfg.App.LogFormat, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	table, err := routing.Load(cfg.Routing.RulesFile)
	if err != nil {
		return err
	}

	var cache *dashboard.Cache

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()

		cache = dashboard.NewCache(client, cfg.Redis.CacheTTL)
	}

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	metrics := observability.NewMetrics()

	var (
		accountService   = account.NewService(accountStore.New(db), cache)
		ledgerService    = ledger.NewService(ledgerStore.New(db))
		billService      = bill.NewService(billStore.New(db), cache)
		fundsService     = funds.NewService(fundsStore.New(db), table, events.MovementNotifiers(publisher, cache, metrics)...)
		dashboardService = dashboard.NewService(accountService, billService, table.PrimaryAccountID(), cache)
		exportService    = export.NewService(ledgerService, accountService)
	)

	router := paydayHttp.New(paydayHttp.Handlers{
		Accounts:  accountHandler.NewHandler(accountService),
		Funds:     fundsHandler.NewHandler(fundsService),
		Bills:     billHandler.NewHandler(billService),
		Ledger:    ledgerHandler.NewHandler(ledgerService),
		Dashboard: dashboardHandler.NewHandler(dashboardService),
		Routing:   routingHandler.NewHandler(table),
		Export:    exportHandler.NewHandler(exportService),
	}, paydayHttp.Options{
		Timeout:        cfg.Server.Timeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SSLRedirect:    cfg.Server.SSLRedirect,
		RateLimit:      cfg.RateLimit.Requests,
		RateWindow:     cfg.RateLimit.Window,
		Metrics:        metrics,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr, "rules", len(table.Rules()))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		slog.Info("shutting down server")

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
