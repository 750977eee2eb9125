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

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/payday/internal/bill"
	billStore "github.com/MrJamesThe3rd/payday/internal/bill/store"
	"github.com/MrJamesThe3rd/payday/internal/config"
	"github.com/MrJamesThe3rd/payday/internal/dashboard"
	"github.com/MrJamesThe3rd/payday/internal/database"
	"github.com/MrJamesThe3rd/payday/internal/jobs"
	"github.com/MrJamesThe3rd/payday/internal/logging"
	"github.com/MrJamesThe3rd/payday/internal/observability"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Setup(os.Stdout, cfg.App.LogFormat, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	var cache *dashboard.Cache

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()

		cache = dashboard.NewCache(client, cfg.Redis.CacheTTL)
	}

	var (
		metrics     = observability.NewMetrics()
		billService = bill.NewService(billStore.New(db), cache)
		resetJob    = jobs.NewBillResetJob(billService, metrics, logger)
	)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.Jobs.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.Jobs.Concurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBillsResetMonthly, Handler: resetJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Jobs.BillResetCron, Task: jobs.NewBillResetTask()},
		},
	})
	if err != nil {
		return err
	}

	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Jobs.MetricsPort),
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	defer metricsSrv.Close()

	slog.Info("scheduling bill reset", "cron", cfg.Jobs.BillResetCron, "redis", cfg.Jobs.RedisAddr)

	return worker.Run(ctx)
}
