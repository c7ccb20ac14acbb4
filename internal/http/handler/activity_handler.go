package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/mapper"
	"github.com/salesbridge/crm-api/internal/service"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// List godoc
// @Summary List activities
// @Description Get activities. With targetType and targetId the newest activities for that entity are returned; without them the global timeline is paginated.
// @Tags Activities
// @Accept json
// @Produce json
// @Param targetType query string false "Target entity type" Enums(Customer, Contact, Deal, Proposal, Invoice)
// @Param targetId query string false "Target entity ID" format(uuid)
// @Param limit query int false "Max activities for a target" default(50)
// @Param page query int false "Page number (global timeline)" default(1)
// @Param pageSize query int false "Items per page (global timeline)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ActivityDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [get]
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	targetType := r.URL.Query().Get("targetType")
	targetRaw := r.URL.Query().Get("targetId")

	if targetType != "" || targetRaw != "" {
		if targetType == "" || targetRaw == "" {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "targetType and targetId must be provided together",
			})
			return
		}
		targetID, err := uuid.Parse(targetRaw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid targetId format",
			})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		activities, err := h.activityService.ListByTarget(r.Context(), domain.ActivityTargetType(targetType), targetID, limit)
		if err != nil {
			h.logger.Error("failed to list activities by target", zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
				Error:   "Internal Server Error",
				Message: "Failed to list activities",
			})
			return
		}
		respondJSON(w, http.StatusOK, mapper.ToActivityDTOs(activities))
		return
	}

	page, pageSize := parsePagination(r)
	activities, total, err := h.activityService.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list activities", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list activities",
		})
		return
	}

	respondJSON(w, http.StatusOK, paginated(mapper.ToActivityDTOs(activities), total, page, pageSize))
}

// GetByID godoc
// @Summary Get activity by ID
// @Description Get a single activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Success 200 {object} domain.ActivityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid activity ID format",
		})
		return
	}

	activity, err := h.activityService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Activity not found",
			})
			return
		}
		h.logger.Error("failed to get activity", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get activity",
		})
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToActivityDTO(activity))
}

// Create godoc
// @Summary Create activity
// @Description Log an activity against a customer, contact, deal, proposal or invoice
// @Tags Activities
// @Accept json
// @Produce json
// @Param request body domain.CreateActivityRequest true "Activity data"
// @Success 201 {object} domain.ActivityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [post]
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateActivityRequest
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

	activity, err := h.activityService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("failed to create activity", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create activity",
		})
		return
	}

	w.Header().Set("Location", "/api/v1/activities/"+activity.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToActivityDTO(activity))
}

// Delete godoc
// @Summary Delete activity
// @Description Delete an activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid activity ID format",
		})
		return
	}

	if err := h.activityService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Activity not found",
			})
			return
		}
		h.logger.Error("failed to delete activity", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete activity",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
