package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hilyte/internal/service"
)

// ExtractionHandler handles drawing extraction and run endpoints.
type ExtractionHandler struct {
	svc *service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(svc *service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{svc: svc}
}

type extractPageRequest struct {
	Page     int    `json:"page" binding:"required,min=1"`
	ImageKey string `json:"imageKey" binding:"required"`
}

type extractAllRequest struct {
	PageKeys []string `json:"pageKeys" binding:"required"`
}

// ExtractPage handles POST /api/v1/drawings/:id/extract
// @Summary Extract one page of a drawing
// @Description Runs the extraction chain (OCR, tables, items, analysis, classification) for a single stored page image and returns the page bundle.
// @Tags extraction
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param request body extractPageRequest true "Page number and stored image key"
// @Success 200 {object} APIResponse{data=domain.PageBundle}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /drawings/{id}/extract [post]
func (h *ExtractionHandler) ExtractPage(c *gin.Context) {
	if _, err := uuid.Parse(c.Param("id")); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "drawing id must be a UUID")
		return
	}

	var req extractPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	bundle, err := h.svc.ProcessStoredPage(c.Request.Context(), req.Page, req.ImageKey)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, bundle)
}

// ExtractAll handles POST /api/v1/drawings/:id/extract-all
// @Summary Extract all pages of a drawing
// @Description Processes every page concurrently, consolidates items across pages, persists the run, and returns the full drawing result.
// @Tags extraction
// @Accept json
// @Produce json
// @Param id path string true "Drawing ID"
// @Param request body extractAllRequest true "Stored page image keys in page order"
// @Success 200 {object} APIResponse{data=domain.DrawingResult}
// @Failure 400 {object} APIResponse
// @Router /drawings/{id}/extract-all [post]
func (h *ExtractionHandler) ExtractAll(c *gin.Context) {
	drawingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "drawing id must be a UUID")
		return
	}

	var req extractAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.svc.ProcessDrawing(c.Request.Context(), drawingID, req.PageKeys)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// GetRun handles GET /api/v1/runs/:id
// @Summary Get an extraction run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} APIResponse{data=domain.ExtractionRun}
// @Failure 404 {object} APIResponse
// @Router /runs/{id} [get]
func (h *ExtractionHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "run id must be a UUID")
		return
	}

	run, err := h.svc.Run(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, run)
}

// ListRunItems handles GET /api/v1/runs/:id/items
// @Summary List the persisted items of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} APIResponse{data=[]domain.StoredItem}
// @Failure 404 {object} APIResponse
// @Router /runs/{id}/items [get]
func (h *ExtractionHandler) ListRunItems(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "run id must be a UUID")
		return
	}

	// 404 for unknown runs rather than an empty list.
	if _, err := h.svc.Run(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	items, err := h.svc.RunItems(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, items)
}
