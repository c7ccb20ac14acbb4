package handler

import (
	"net/http"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Metrics godoc
// @Summary Dashboard metrics
// @Description Get aggregate metrics for the dashboard: customer and deal counts, pipeline totals, proposal and invoice figures
// @Tags Dashboard
// @Accept json
// @Produce json
// @Success 200 {object} domain.DashboardMetricsDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboardService.Metrics(r.Context())
	if err != nil {
		h.logger.Error("failed to compute dashboard metrics", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to compute dashboard metrics",
		})
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}
