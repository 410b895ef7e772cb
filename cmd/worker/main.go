// Package main is the entry point for the shoptill background worker.
// It runs the scheduled low-stock sweep and the credit reminder report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"shoptill/internal/config"
	"shoptill/internal/domain/billing"
	"shoptill/internal/infrastructure/storage/postgres"
	"shoptill/internal/jobs"
	"shoptill/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting shoptill worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.PGDSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	itemRepo := postgres.NewItemRepo(txManager)
	billRepo := postgres.NewBillRepo(txManager)

	billingService := billing.NewService(billRepo, itemRepo, txManager, nil, nil)

	lowStockJob := jobs.NewLowStockScanJob(itemRepo)
	creditJob := jobs.NewCreditReminderJob(billingService)

	lowStockTask, err := jobs.NewLowStockScanTask(jobs.LowStockScanPayload{})
	if err != nil {
		log.Fatalw("failed to build low stock task", "error", err)
	}
	creditTask, err := jobs.NewCreditReminderTask(jobs.CreditReminderPayload{})
	if err != nil {
		log.Fatalw("failed to build credit reminder task", "error", err)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLowStockScan, Handler: lowStockJob.Handle},
			{Type: jobs.TaskCreditReminder, Handler: creditJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.LowStockScanCron, Task: lowStockTask},
			{Spec: cfg.CreditReminderCron, Task: creditTask},
		},
	})
	if err != nil {
		log.Fatalw("failed to build worker", "error", err)
	}

	log.Infow("worker starting",
		"low_stock_cron", cfg.LowStockScanCron,
		"credit_reminder_cron", cfg.CreditReminderCron,
	)
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalw("worker failed", "error", err)
	}

	log.Info("worker stopped")
}
