package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hoangvq/summarize-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "summarize-api-service",
		})
	})

	summaryHandler := handler.NewSummaryHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		summaries := v1.Group("/summaries")
		{
			// POST /api/v1/summaries - Submit a document for summarization
			summaries.POST("", summaryHandler.CreateSummary)

			// GET /api/v1/summaries - List a user's summaries
			summaries.GET("", summaryHandler.ListSummaries)

			// GET /api/v1/summaries/:summary_id - Poll a summary
			summaries.GET("/:summary_id", summaryHandler.GetSummary)

			// DELETE /api/v1/summaries/:summary_id - Delete a summary
			summaries.DELETE("/:summary_id", summaryHandler.DeleteSummary)
		}
	}

	return r
}
