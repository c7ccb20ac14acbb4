package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/config"
	"github.com/salesbridge/crm-api/internal/database"
	"github.com/salesbridge/crm-api/internal/http/handler"
	"github.com/salesbridge/crm-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/salesbridge/crm-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	customerHandler     *handler.CustomerHandler
	contactHandler      *handler.ContactHandler
	stageHandler        *handler.StageHandler
	dealHandler         *handler.DealHandler
	proposalHandler     *handler.ProposalHandler
	invoiceHandler      *handler.InvoiceHandler
	importHandler       *handler.ImportHandler
	activityHandler     *handler.ActivityHandler
	notificationHandler *handler.NotificationHandler
	dashboardHandler    *handler.DashboardHandler
	documentHandler     *handler.DocumentHandler
	authHandler         *handler.AuthHandler
	adminHandler        *handler.AdminHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	customerHandler *handler.CustomerHandler,
	contactHandler *handler.ContactHandler,
	stageHandler *handler.StageHandler,
	dealHandler *handler.DealHandler,
	proposalHandler *handler.ProposalHandler,
	invoiceHandler *handler.InvoiceHandler,
	importHandler *handler.ImportHandler,
	activityHandler *handler.ActivityHandler,
	notificationHandler *handler.NotificationHandler,
	dashboardHandler *handler.DashboardHandler,
	documentHandler *handler.DocumentHandler,
	authHandler *handler.AuthHandler,
	adminHandler *handler.AdminHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		customerHandler:     customerHandler,
		contactHandler:      contactHandler,
		stageHandler:        stageHandler,
		dealHandler:         dealHandler,
		proposalHandler:     proposalHandler,
		invoiceHandler:      invoiceHandler,
		importHandler:       importHandler,
		activityHandler:     activityHandler,
		notificationHandler: notificationHandler,
		dashboardHandler:    dashboardHandler,
		documentHandler:     documentHandler,
		authHandler:         authHandler,
		adminHandler:        adminHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)

		// Auth
		r.Get("/auth/me", rt.authHandler.Me)
		r.Get("/users", rt.authHandler.ListUsers)

		// Customers
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", rt.customerHandler.List)
			r.Get("/search", rt.customerHandler.Search)
			r.With(rt.authMiddleware.RequireWrite).Post("/", rt.customerHandler.Create)
			r.Get("/{id}", rt.customerHandler.GetByID)
			r.With(rt.authMiddleware.RequireWrite).Put("/{id}", rt.customerHandler.Update)
			r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.customerHandler.Delete)
			r.Get("/{id}/contacts", rt.customerHandler.ListContacts)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/contacts", rt.customerHandler.CreateContact)
			r.Get("/{id}/deals", rt.customerHandler.ListDeals)
		})

		// Contacts
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/{id}", rt.contactHandler.GetByID)
			r.With(rt.authMiddleware.RequireWrite).Put("/{id}", rt.contactHandler.Update)
			r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.contactHandler.Delete)
		})

		// Pipeline stages
		r.Route("/stages", func(r chi.Router) {
			r.Get("/", rt.stageHandler.List)
			r.With(rt.authMiddleware.RequireAdmin).Post("/", rt.stageHandler.Create)
			r.With(rt.authMiddleware.RequireAdmin).Put("/reorder", rt.stageHandler.Reorder)
			r.With(rt.authMiddleware.RequireAdmin).Put("/{id}", rt.stageHandler.Update)
			r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.stageHandler.Delete)
		})

		// Deals
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", rt.dealHandler.List)
			r.Get("/pipeline", rt.dealHandler.Pipeline)
			r.With(rt.authMiddleware.RequireWrite).Post("/", rt.dealHandler.Create)
			r.Get("/{id}", rt.dealHandler.GetByID)
			r.With(rt.authMiddleware.RequireWrite).Put("/{id}", rt.dealHandler.Update)
			r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.dealHandler.Delete)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/stage", rt.dealHandler.MoveStage)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/revalue", rt.dealHandler.Revalue)
			r.Get("/{id}/proposals", rt.dealHandler.ListProposals)
		})

		// Proposals
		r.Route("/proposals", func(r chi.Router) {
			r.Get("/", rt.proposalHandler.List)
			r.With(rt.authMiddleware.RequireWrite).Post("/", rt.proposalHandler.Create)
			r.Get("/{id}", rt.proposalHandler.GetByID)
			r.With(rt.authMiddleware.RequireWrite).Put("/{id}", rt.proposalHandler.Update)
			r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.proposalHandler.Delete)

			// Lifecycle endpoints
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/send", rt.proposalHandler.Send)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/view", rt.proposalHandler.MarkViewed)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/accept", rt.proposalHandler.Accept)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/reject", rt.proposalHandler.Reject)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/expire", rt.proposalHandler.Expire)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/invoice", rt.proposalHandler.GenerateInvoice)

			// Documents
			r.Get("/{id}/documents", rt.proposalHandler.ListDocuments)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/documents", rt.proposalHandler.UploadDocument)
		})

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", rt.invoiceHandler.List)
			r.Get("/{id}", rt.invoiceHandler.GetByID)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/pay", rt.invoiceHandler.MarkPaid)
			r.Get("/{id}/documents", rt.invoiceHandler.ListDocuments)
			r.With(rt.authMiddleware.RequireWrite).Post("/{id}/documents", rt.invoiceHandler.UploadDocument)
		})

		// CSV bulk import
		r.Route("/import", func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireWrite)
			r.Post("/customers", rt.importHandler.ImportCustomers)
			r.Post("/deals", rt.importHandler.ImportDeals)
		})

		// Activities
		r.Route("/activities", func(r chi.Router) {
			r.Get("/", rt.activityHandler.List)
			r.With(rt.authMiddleware.RequireWrite).Post("/", rt.activityHandler.Create)
			r.Get("/{id}", rt.activityHandler.GetByID)
			r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.activityHandler.Delete)
		})

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", rt.notificationHandler.List)
			r.Get("/unread-count", rt.notificationHandler.UnreadCount)
			r.Post("/read-all", rt.notificationHandler.MarkAllRead)
			r.Post("/{id}/read", rt.notificationHandler.MarkRead)
			r.Delete("/{id}", rt.notificationHandler.Delete)
		})

		// Dashboard
		r.Get("/dashboard/metrics", rt.dashboardHandler.Metrics)

		// Documents
		r.Route("/documents", func(r chi.Router) {
			r.Get("/{id}", rt.documentHandler.GetByID)
			r.Get("/{id}/download", rt.documentHandler.Download)
			r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.documentHandler.Delete)
		})

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAdmin)
			r.Post("/sync/erp-payments", rt.adminHandler.SyncErpPayments)
			r.Post("/sweep/expiry", rt.adminHandler.ExpireProposals)
		})
	})

	return r
}
