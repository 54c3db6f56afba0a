package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"hilyte/internal/handler"
	"hilyte/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	extractionH *handler.ExtractionHandler,
	exportH *handler.ExportHandler,
	divisionH *handler.DivisionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// OpenAPI docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Drawing extraction
	drawings := v1.Group("/drawings")
	drawings.POST("/:id/extract", extractionH.ExtractPage)
	drawings.POST("/:id/extract-all", extractionH.ExtractAll)

	// Extraction runs
	runs := v1.Group("/runs")
	runs.GET("/:id", extractionH.GetRun)
	runs.GET("/:id/items", extractionH.ListRunItems)
	runs.GET("/:id/export", exportH.Export)

	// CSI division taxonomy
	divisions := v1.Group("/construction-divisions")
	divisions.GET("", divisionH.List)
	divisions.POST("", divisionH.Create)

	return r
}
