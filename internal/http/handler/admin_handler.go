package handler

import (
	"errors"
	"net/http"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/service"
	"go.uber.org/zap"
)

type AdminHandler struct {
	erpSyncService  *service.ErpSyncService
	proposalService *service.ProposalService
	invoiceService  *service.InvoiceService
	logger          *zap.Logger
}

func NewAdminHandler(erpSyncService *service.ErpSyncService, proposalService *service.ProposalService, invoiceService *service.InvoiceService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		erpSyncService:  erpSyncService,
		proposalService: proposalService,
		invoiceService:  invoiceService,
		logger:          logger,
	}
}

// SyncErpPayments godoc
// @Summary Trigger ERP payment sync
// @Description Reconcile pending invoices against the ERP payment ledger immediately instead of waiting for the scheduled job
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 503 {object} domain.ErrorResponse "ERP integration disabled"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/sync/erp-payments [post]
func (h *AdminHandler) SyncErpPayments(w http.ResponseWriter, r *http.Request) {
	paid, err := h.erpSyncService.SyncPayments(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrErpDisabled) {
			respondJSON(w, http.StatusServiceUnavailable, domain.ErrorResponse{
				Error:   "Service Unavailable",
				Message: "ERP integration is not configured",
			})
			return
		}
		h.logger.Error("erp payment sync failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "ERP payment sync failed",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"invoicesPaid": paid})
}

// ExpireProposals godoc
// @Summary Trigger proposal expiry sweep
// @Description Expire sent or viewed proposals whose validUntil date has passed, and mark pending invoices past their due date as overdue
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/sweep/expiry [post]
func (h *AdminHandler) ExpireProposals(w http.ResponseWriter, r *http.Request) {
	expired, err := h.proposalService.ExpireStale(r.Context())
	if err != nil {
		h.logger.Error("proposal expiry sweep failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Proposal expiry sweep failed",
		})
		return
	}

	overdue, err := h.invoiceService.MarkOverdue(r.Context())
	if err != nil {
		h.logger.Error("invoice overdue sweep failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Invoice overdue sweep failed",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"proposalsExpired": expired,
		"invoicesOverdue":  overdue,
	})
}
