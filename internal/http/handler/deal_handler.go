package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/mapper"
	"github.com/salesbridge/crm-api/internal/service"
	"go.uber.org/zap"
)

type DealHandler struct {
	dealService      *service.DealService
	proposalService  *service.ProposalService
	valuationService *service.ValuationService
	logger           *zap.Logger
}

func NewDealHandler(dealService *service.DealService, proposalService *service.ProposalService, valuationService *service.ValuationService, logger *zap.Logger) *DealHandler {
	return &DealHandler{
		dealService:      dealService,
		proposalService:  proposalService,
		valuationService: valuationService,
		logger:           logger,
	}
}

// List godoc
// @Summary List deals
// @Description Get paginated list of deals with optional filters
// @Tags Deals
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by title"
// @Param customerId query string false "Filter by customer" format(uuid)
// @Param stageId query string false "Filter by stage" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.DealDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals [get]
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("search")

	var customerID, stageID *uuid.UUID
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid customerId format",
			})
			return
		}
		customerID = &id
	}
	if raw := r.URL.Query().Get("stageId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid stageId format",
			})
			return
		}
		stageID = &id
	}

	deals, total, err := h.dealService.List(r.Context(), page, pageSize, search, customerID, stageID)
	if err != nil {
		h.logger.Error("failed to list deals", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list deals",
		})
		return
	}

	respondJSON(w, http.StatusOK, paginated(mapper.ToDealDTOs(deals), total, page, pageSize))
}

// Pipeline godoc
// @Summary Pipeline overview
// @Description Get all open deals grouped by stage for the pipeline board
// @Tags Deals
// @Accept json
// @Produce json
// @Success 200 {object} domain.PipelineOverviewDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/pipeline [get]
func (h *DealHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	stages, dealsByStage, err := h.dealService.PipelineOverview(r.Context())
	if err != nil {
		h.logger.Error("failed to build pipeline overview", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to build pipeline overview",
		})
		return
	}

	overview := domain.PipelineOverviewDTO{
		Stages: make([]domain.PipelineStageGroupDTO, 0, len(stages)),
	}
	for i := range stages {
		deals := dealsByStage[stages[i].ID]
		var value float64
		for j := range deals {
			value += deals[j].Value
		}
		overview.Stages = append(overview.Stages, domain.PipelineStageGroupDTO{
			Stage: mapper.ToPipelineStageDTO(&stages[i]),
			Deals: mapper.ToDealDTOs(deals),
			Value: value,
		})
	}

	respondJSON(w, http.StatusOK, overview)
}

// GetByID godoc
// @Summary Get deal by ID
// @Description Get a single deal
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID" format(uuid)
// @Success 200 {object} domain.DealDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id} [get]
func (h *DealHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid deal ID format",
		})
		return
	}

	deal, err := h.dealService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Deal not found",
			})
			return
		}
		h.logger.Error("failed to get deal", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get deal",
		})
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}

// Create godoc
// @Summary Create deal
// @Description Create a new deal. Falls back to the first stage by display order when none is given.
// @Tags Deals
// @Accept json
// @Produce json
// @Param request body domain.CreateDealRequest true "Deal data"
// @Success 201 {object} domain.DealDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Customer or stage not found"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals [post]
func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrStageNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: err.Error(),
			})
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("failed to create deal", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create deal",
		})
		return
	}

	w.Header().Set("Location", "/api/v1/deals/"+deal.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToDealDTO(deal))
}

// Update godoc
// @Summary Update deal
// @Description Update an existing deal. The value field is rejected once proposals are attached, because it is then derived from proposal line items.
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID" format(uuid)
// @Param request body domain.UpdateDealRequest true "Deal data"
// @Success 200 {object} domain.DealDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Value is managed by proposals"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id} [put]
func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid deal ID format",
		})
		return
	}

	var req domain.UpdateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrStageNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: err.Error(),
			})
			return
		}
		if errors.Is(err, service.ErrValueManagedByProposals) {
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "Deal value is derived from proposals and cannot be edited directly",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("failed to update deal", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update deal",
		})
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}

// MoveStage godoc
// @Summary Move deal to stage
// @Description Move a deal to a different pipeline stage
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID" format(uuid)
// @Param request body domain.MoveDealStageRequest true "Target stage"
// @Success 200 {object} domain.DealDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id}/stage [post]
func (h *DealHandler) MoveStage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid deal ID format",
		})
		return
	}

	var req domain.MoveDealStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.MoveToStage(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrStageNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("failed to move deal", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to move deal",
		})
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}

// Delete godoc
// @Summary Delete deal
// @Description Delete a deal. Deals with proposals cannot be deleted.
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Deal has proposals"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id} [delete]
func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid deal ID format",
		})
		return
	}

	if err := h.dealService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Deal not found",
			})
			return
		}
		if errors.Is(err, service.ErrDealHasProposals) {
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "Deal has proposals and cannot be deleted",
			})
			return
		}
		h.logger.Error("failed to delete deal", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete deal",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListProposals godoc
// @Summary List deal proposals
// @Description Get all proposals attached to a deal
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProposalDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id}/proposals [get]
func (h *DealHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid deal ID format",
		})
		return
	}

	page, pageSize := parsePagination(r)

	proposals, total, err := h.proposalService.List(r.Context(), page, pageSize, "", nil, &dealID, "")
	if err != nil {
		h.logger.Error("failed to list deal proposals", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list proposals",
		})
		return
	}

	respondJSON(w, http.StatusOK, paginated(mapper.ToProposalDTOs(proposals), total, page, pageSize))
}

// Revalue godoc
// @Summary Recalculate deal valuation
// @Description Recompute the deal's aggregated value fields from all attached proposals
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID" format(uuid)
// @Success 200 {object} domain.DealDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id}/revalue [post]
func (h *DealHandler) Revalue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid deal ID format",
		})
		return
	}

	if _, err := h.dealService.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Deal not found",
			})
			return
		}
		h.logger.Error("failed to get deal", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get deal",
		})
		return
	}

	if err := h.valuationService.RecalculateDeal(r.Context(), id); err != nil {
		h.logger.Error("failed to recalculate deal", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to recalculate deal",
		})
		return
	}

	deal, err := h.dealService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to reload deal after recalculation", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get deal",
		})
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}
