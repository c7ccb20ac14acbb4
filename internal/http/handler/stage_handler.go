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

type StageHandler struct {
	stageService *service.StageService
	logger       *zap.Logger
}

func NewStageHandler(stageService *service.StageService, logger *zap.Logger) *StageHandler {
	return &StageHandler{
		stageService: stageService,
		logger:       logger,
	}
}

// List godoc
// @Summary List pipeline stages
// @Description Get all pipeline stages ordered by display order
// @Tags Stages
// @Accept json
// @Produce json
// @Success 200 {array} domain.PipelineStageDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages [get]
func (h *StageHandler) List(w http.ResponseWriter, r *http.Request) {
	stages, err := h.stageService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list stages", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list stages",
		})
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPipelineStageDTOs(stages))
}

// Create godoc
// @Summary Create pipeline stage
// @Description Create a new pipeline stage
// @Tags Stages
// @Accept json
// @Produce json
// @Param request body domain.CreateStageRequest true "Stage data"
// @Success 201 {object} domain.PipelineStageDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages [post]
func (h *StageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStageRequest
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

	stage, err := h.stageService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create stage", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create stage",
		})
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToPipelineStageDTO(stage))
}

// Update godoc
// @Summary Update pipeline stage
// @Description Update an existing pipeline stage
// @Tags Stages
// @Accept json
// @Produce json
// @Param id path string true "Stage ID" format(uuid)
// @Param request body domain.UpdateStageRequest true "Stage data"
// @Success 200 {object} domain.PipelineStageDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages/{id} [put]
func (h *StageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid stage ID format",
		})
		return
	}

	var req domain.UpdateStageRequest
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

	stage, err := h.stageService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Stage not found",
			})
			return
		}
		h.logger.Error("failed to update stage", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update stage",
		})
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPipelineStageDTO(stage))
}

// Delete godoc
// @Summary Delete pipeline stage
// @Description Delete a pipeline stage. Stages that still hold deals cannot be deleted.
// @Tags Stages
// @Accept json
// @Produce json
// @Param id path string true "Stage ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Stage still has deals"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages/{id} [delete]
func (h *StageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid stage ID format",
		})
		return
	}

	if err := h.stageService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Stage not found",
			})
			return
		}
		if errors.Is(err, service.ErrStageInUse) {
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "Stage still has deals and cannot be deleted",
			})
			return
		}
		h.logger.Error("failed to delete stage", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete stage",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reorder godoc
// @Summary Reorder pipeline stages
// @Description Set the display order of all stages to match the given ID list
// @Tags Stages
// @Accept json
// @Produce json
// @Param request body domain.ReorderStagesRequest true "Ordered stage IDs"
// @Success 200 {array} domain.PipelineStageDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages/reorder [post]
func (h *StageHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req domain.ReorderStagesRequest
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

	if err := h.stageService.Reorder(r.Context(), req.StageIDs); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Stage ID list references an unknown stage",
			})
			return
		}
		h.logger.Error("failed to reorder stages", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to reorder stages",
		})
		return
	}

	stages, err := h.stageService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list stages after reorder", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list stages",
		})
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPipelineStageDTOs(stages))
}
