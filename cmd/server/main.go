package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/config"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/crypto"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/database"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/gateway"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/jobs"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/repository"
	"github.com/ndewijer/Dividend-Distribution-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	encryptor, err := crypto.NewEncryptor(cfg.Secrets.FernetKey)
	if err != nil {
		log.Fatalf("Failed to initialize mandate encryption: %v", err)
	}

	// Create repositories
	roundRepo := repository.NewRoundRepository(db)
	dividendRepo := repository.NewDividendRepository(db)
	investorRepo := repository.NewInvestorRepository(db)
	companyRepo := repository.NewCompanyRepository(db, encryptor)
	paymentRepo := repository.NewPaymentRepository(db)
	balanceRepo := repository.NewBalanceTransactionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	systemService := service.NewSystemService(db)

	// Create services
	calculator := service.NewBackupWithholdingCalculator(cfg.Withholding.BackupRate)
	evaluator := service.NewRetentionEvaluator(calculator, cfg.Compliance.SanctionedCountries)
	sender := service.LogSender{}
	roundService := service.NewRoundService(
		db,
		roundRepo,
		dividendRepo,
		investorRepo,
		notificationRepo,
		evaluator,
		sender,
	)

	gatewayClient := gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey)
	paymentService := service.NewPaymentService(
		db,
		paymentRepo,
		roundRepo,
		companyRepo,
		balanceRepo,
		notificationRepo,
		gatewayClient,
		service.LogPayoutQueue{},
		service.LogReporter{},
		sender,
	)

	// Schedule the payment reconciliation sweep
	staleAfter := time.Duration(cfg.Jobs.ReconcileStaleMinutes) * time.Minute
	reconciler := jobs.NewReconciler(paymentRepo, paymentService, staleAfter)
	cronRunner, err := reconciler.Schedule(cfg.Jobs.ReconcileSchedule)
	if err != nil {
		log.Fatalf("Failed to schedule reconciliation sweep: %v", err)
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	// Create router
	router := api.NewRouter(systemService, roundService, paymentService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
