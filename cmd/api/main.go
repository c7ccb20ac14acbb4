package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/salesbridge/crm-api/docs"
	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/config"
	"github.com/salesbridge/crm-api/internal/database"
	"github.com/salesbridge/crm-api/internal/erp"
	"github.com/salesbridge/crm-api/internal/http/handler"
	"github.com/salesbridge/crm-api/internal/http/middleware"
	"github.com/salesbridge/crm-api/internal/http/router"
	"github.com/salesbridge/crm-api/internal/jobs"
	"github.com/salesbridge/crm-api/internal/logger"
	"github.com/salesbridge/crm-api/internal/repository"
	"github.com/salesbridge/crm-api/internal/service"
	"github.com/salesbridge/crm-api/internal/storage"
	"go.uber.org/zap"
)

// @title SalesBridge CRM API
// @version 1.0
// @description Sales CRM API for customer, pipeline, proposal, and invoicing management
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@salesbridge.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "staging-api.salesbridge.io"
	case "production":
		docs.SwaggerInfo.Host = "api.salesbridge.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize document storage
	docStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize ERP mirror connection (optional - for invoice payment reconciliation)
	// The connection is read-only and the app continues without it if not configured
	var erpClient *erp.Client
	if cfg.Erp.Enabled {
		erpClient, err = erp.NewClient(&cfg.Erp, log)
		if err != nil {
			log.Warn("ERP connection failed, continuing without payment reconciliation",
				zap.Error(err),
			)
		} else if erpClient != nil {
			log.Info("ERP mirror connected",
				zap.Int("max_open_conns", cfg.Erp.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.Erp.QueryTimeout),
			)
		}
	} else {
		log.Info("ERP mirror not configured, skipping",
			zap.Bool("enabled", cfg.Erp.Enabled),
		)
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	contactRepo := repository.NewContactRepository(db)
	stageRepo := repository.NewStageRepository(db)
	dealRepo := repository.NewDealRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo)
	valuationService := service.NewValuationService(dealRepo, proposalRepo, log)

	customerService := service.NewCustomerService(customerRepo, activityRepo, log)
	contactService := service.NewContactService(contactRepo, customerRepo, log)
	stageService := service.NewStageService(stageRepo, log)
	dealService := service.NewDealService(dealRepo, customerRepo, stageRepo, activityRepo, notificationRepo, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, proposalRepo, activityRepo, numberSequenceService, log)
	proposalService := service.NewProposalService(proposalRepo, customerRepo, dealRepo, activityRepo, notificationRepo, valuationService, numberSequenceService, invoiceService, log)
	importService := service.NewImportService(customerRepo, dealRepo, stageRepo, log)
	activityService := service.NewActivityService(activityRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	dashboardService := service.NewDashboardService(customerRepo, dealRepo, proposalRepo, invoiceRepo, log)
	documentService := service.NewDocumentService(documentRepo, proposalRepo, invoiceRepo, activityRepo, docStorage, log)
	erpSyncService := service.NewErpSyncService(erpClient, invoiceRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	maxUploadSize := cfg.Storage.MaxUploadSizeMB * 1024 * 1024

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerService, contactService, dealService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	stageHandler := handler.NewStageHandler(stageService, log)
	dealHandler := handler.NewDealHandler(dealService, proposalService, valuationService, log)
	proposalHandler := handler.NewProposalHandler(proposalService, invoiceService, documentService, maxUploadSize, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, documentService, maxUploadSize, log)
	importHandler := handler.NewImportHandler(importService, maxUploadSize, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	documentHandler := handler.NewDocumentHandler(documentService, log)
	authHandler := handler.NewAuthHandler(userRepo, log)
	adminHandler := handler.NewAdminHandler(erpSyncService, proposalService, invoiceService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		customerHandler,
		contactHandler,
		stageHandler,
		dealHandler,
		proposalHandler,
		invoiceHandler,
		importHandler,
		activityHandler,
		notificationHandler,
		dashboardHandler,
		documentHandler,
		authHandler,
		adminHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterProposalExpiryJob(
			scheduler,
			proposalService,
			invoiceService,
			log,
			cfg.Jobs.ExpiryCron,
			cfg.Jobs.ExpiryTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register expiry job", zap.Error(err))
		}

		if erpClient != nil && erpClient.IsEnabled() {
			if err := jobs.RegisterErpSyncJob(
				scheduler,
				erpSyncService,
				log,
				cfg.Jobs.ErpSyncCron,
				cfg.Jobs.ErpSyncTimeoutDuration(),
			); err != nil {
				log.Error("Failed to register ERP sync job", zap.Error(err))
			}
		}

		scheduler.Start()
		log.Info("Scheduler started",
			zap.Strings("jobs", scheduler.GetJobNames()),
			zap.String("expiry_cron", cfg.Jobs.ExpiryCron),
			zap.String("erp_sync_cron", cfg.Jobs.ErpSyncCron),
		)
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if erpClient != nil {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
