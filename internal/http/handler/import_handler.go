package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/service"
	"go.uber.org/zap"
)

type ImportHandler struct {
	importService *service.ImportService
	maxUploadSize int64
	logger        *zap.Logger
}

func NewImportHandler(importService *service.ImportService, maxUploadSize int64, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// csvBody extracts the CSV payload from the request. Accepts either a raw
// text/csv body or a multipart form with a "file" field.
func (h *ImportHandler) csvBody(w http.ResponseWriter, r *http.Request) (io.ReadCloser, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			respondJSON(w, http.StatusRequestEntityTooLarge, domain.ErrorResponse{
				Error:   "Request Entity Too Large",
				Message: "Uploaded file exceeds the maximum allowed size",
			})
			return nil, false
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Multipart form field 'file' is required",
			})
			return nil, false
		}
		return file, true
	}

	return r.Body, true
}

// ImportCustomers godoc
// @Summary Import customers from CSV
// @Description Bulk import customers. Accepts a raw text/csv body or a multipart form with a "file" field. Valid rows are imported even when other rows fail; per-row errors are returned in the result.
// @Tags Import
// @Accept text/csv
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "CSV file"
// @Success 200 {object} domain.ImportResult
// @Failure 400 {object} domain.ErrorResponse
// @Failure 413 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /import/customers [post]
func (h *ImportHandler) ImportCustomers(w http.ResponseWriter, r *http.Request) {
	body, ok := h.csvBody(w, r)
	if !ok {
		return
	}
	defer body.Close()

	result, err := h.importService.ImportCustomers(r.Context(), body)
	if err != nil {
		h.respondImportError(w, err, "customers")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ImportDeals godoc
// @Summary Import deals from CSV
// @Description Bulk import deals. Customers are resolved by the customerEmail column. Valid rows are imported even when other rows fail; per-row errors are returned in the result.
// @Tags Import
// @Accept text/csv
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "CSV file"
// @Success 200 {object} domain.ImportResult
// @Failure 400 {object} domain.ErrorResponse
// @Failure 413 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /import/deals [post]
func (h *ImportHandler) ImportDeals(w http.ResponseWriter, r *http.Request) {
	body, ok := h.csvBody(w, r)
	if !ok {
		return
	}
	defer body.Close()

	result, err := h.importService.ImportDeals(r.Context(), body)
	if err != nil {
		h.respondImportError(w, err, "deals")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *ImportHandler) respondImportError(w http.ResponseWriter, err error, entity string) {
	if errors.Is(err, service.ErrInvalidInput) {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
		return
	}
	h.logger.Error("import failed", zap.String("entity", entity), zap.Error(err))
	respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
		Error:   "Internal Server Error",
		Message: "Import failed",
	})
}
