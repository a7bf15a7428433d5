package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/cuentasclaras/ledger-engine/internal/config"
	"github.com/cuentasclaras/ledger-engine/internal/repository"
	"github.com/cuentasclaras/ledger-engine/internal/service"
	"github.com/cuentasclaras/ledger-engine/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Log.Info("Starting ledger scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	transactionRepo := repository.NewTransactionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ledgerService := service.NewLedgerService(transactionRepo, paymentRepo, nil, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	setupCronJobs(c, cfg, ledgerService)

	c.Start()
	logger.Log.Info("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down scheduler...")
	c.Stop()
	logger.Log.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, ledgerService *service.LedgerService) {
	// Nightly job: pending entries that crossed their due date become overdue
	_, err := c.AddFunc(cfg.Scheduler.StatusRefreshSpec, func() {
		refreshStatuses(ledgerService)
	})
	if err != nil {
		logger.Log.WithError(err).Error("failed to schedule status refresh job")
	}

	// Morning job: log upcoming due dates for reminder delivery
	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		logDueSoonReminders(ledgerService)
	})
	if err != nil {
		logger.Log.WithError(err).Error("failed to schedule reminder job")
	}

	logger.Log.Info("Cron jobs scheduled successfully")
}

func refreshStatuses(ledgerService *service.LedgerService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	changed, err := ledgerService.RefreshStatuses(ctx, time.Now())
	if err != nil {
		logger.Log.WithError(err).Error("status refresh job failed")
		return
	}
	logger.Log.WithField("changed", changed).Info("status refresh job finished")
}

func logDueSoonReminders(ledgerService *service.LedgerService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dueSoon, err := ledgerService.DueSoonTransactions(ctx, time.Now())
	if err != nil {
		logger.Log.WithError(err).Error("reminder job failed")
		return
	}

	for _, transaction := range dueSoon {
		logger.Log.WithFields(map[string]interface{}{
			"transaction_id": transaction.ID,
			"description":    transaction.Description,
			"due_date":       transaction.DueDate.Format("2006-01-02"),
			"amount":         transaction.Amount.String(),
		}).Info("transaction due soon")
	}
}
