package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/cuentasclaras/ledger-engine/internal/config"
	"github.com/cuentasclaras/ledger-engine/internal/handler"
	"github.com/cuentasclaras/ledger-engine/internal/repository"
	"github.com/cuentasclaras/ledger-engine/internal/service"
	"github.com/cuentasclaras/ledger-engine/pkg/logger"
	"github.com/cuentasclaras/ledger-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	db, err := initDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	transactionRepo := repository.NewTransactionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	ledgerService := service.NewLedgerService(transactionRepo, paymentRepo, redisClient, cfg)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(ledgerHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(ledgerHandler *handler.LedgerHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/transactions", ledgerHandler.CreateTransaction).Methods("POST")
	api.HandleFunc("/transactions", ledgerHandler.ListTransactions).Methods("GET")
	api.HandleFunc("/transactions/{id}", ledgerHandler.GetTransaction).Methods("GET")
	api.HandleFunc("/transactions/{id}", ledgerHandler.DeleteTransaction).Methods("DELETE")
	api.HandleFunc("/transactions/{id}/paid", ledgerHandler.TogglePaid).Methods("POST")
	api.HandleFunc("/transactions/{id}/balance", ledgerHandler.GetBalance).Methods("GET")
	api.HandleFunc("/transactions/{id}/payments", ledgerHandler.AddPayment).Methods("POST")
	api.HandleFunc("/transactions/{id}/payments", ledgerHandler.ListPayments).Methods("GET")
	api.HandleFunc("/transactions/{id}/payments/export", ledgerHandler.ExportPaymentsCSV).Methods("GET")
	api.HandleFunc("/transactions/{id}/payments/{paymentId}", ledgerHandler.RemovePayment).Methods("DELETE")
	api.HandleFunc("/transactions/{id}/installments", ledgerHandler.GenerateInstallments).Methods("POST")
	api.HandleFunc("/totals", ledgerHandler.Totals).Methods("GET")
	api.HandleFunc("/export", ledgerHandler.ExportJSON).Methods("GET")
	api.HandleFunc("/export/spreadsheet", ledgerHandler.ExportSpreadsheet).Methods("GET")
	api.HandleFunc("/import", ledgerHandler.ImportJSON).Methods("POST")

	return router
}
