package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hilyte/internal/domain"
	"hilyte/internal/export"
	"hilyte/internal/service"
)

// ExportHandler handles run export downloads.
type ExportHandler struct {
	svc *service.ExtractionService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc *service.ExtractionService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Export handles GET /api/v1/runs/:id/export?format=csv|xlsx
// @Summary Export a run's results
// @Description Downloads the run's extracted items as CSV, or the full consolidated result as an Excel workbook.
// @Tags runs
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Run ID"
// @Param format query string false "Export format (csv or xlsx)" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /runs/{id}/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "run id must be a UUID")
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		h.exportCSV(c, id)
	case "xlsx":
		h.exportXLSX(c, id)
	default:
		HandleError(c, domain.ErrUnsupportedExport)
	}
}

func (h *ExportHandler) exportCSV(c *gin.Context, id uuid.UUID) {
	if _, err := h.svc.Run(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	items, err := h.svc.RunItems(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("run_"+id.String(), "csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}
	w := export.NewCSVWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteItems(items); err != nil {
		return
	}
	w.Flush()
}

func (h *ExportHandler) exportXLSX(c *gin.Context, id uuid.UUID) {
	result, err := h.svc.ResultBundle(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("run_"+id.String(), "xlsx")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)

	if err := export.WriteXLSX(c.Writer, result); err != nil {
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to build workbook")
	}
}
