package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hilyte/internal/domain"
	"hilyte/internal/port"
)

// DivisionHandler handles the CSI division taxonomy endpoints.
type DivisionHandler struct {
	repo port.DivisionRepository
}

// NewDivisionHandler creates a new DivisionHandler.
func NewDivisionHandler(repo port.DivisionRepository) *DivisionHandler {
	return &DivisionHandler{repo: repo}
}

type createDivisionRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sort_order"`
}

// List handles GET /api/v1/construction-divisions
// @Summary List active construction divisions
// @Tags divisions
// @Produce json
// @Success 200 {object} APIResponse{data=[]domain.Division}
// @Router /construction-divisions [get]
func (h *DivisionHandler) List(c *gin.Context) {
	divs, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, divs)
}

// Create handles POST /api/v1/construction-divisions
// @Summary Create a construction division
// @Tags divisions
// @Accept json
// @Produce json
// @Param request body createDivisionRequest true "Division to create"
// @Success 201 {object} APIResponse{data=domain.Division}
// @Failure 400 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /construction-divisions [post]
func (h *DivisionHandler) Create(c *gin.Context) {
	var req createDivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	div := &domain.Division{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if err := h.repo.Create(c.Request.Context(), div); err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, div)
}
