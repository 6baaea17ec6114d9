package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/logger"
)

// Router wires the handlers onto a gin engine with request-ID and
// access-log middleware.
func Router(
	analytics *AnalyticsHandler,
	orchestrator *OrchestratorHandler,
	report *ReportHandler,
	health *HealthHandler,
	log *logger.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(log))

	router.GET("/health", health.Check)

	api := router.Group("/api")
	{
		api.POST("/analytics", analytics.Execute)
		api.GET("/analytics", analytics.ListQueryTypes)
		api.GET("/analytics/insights/:name", analytics.Insight)

		api.POST("/orchestrator", orchestrator.Handle)
		api.GET("/orchestrator", orchestrator.Capabilities)

		api.POST("/report", report.Generate)
		api.GET("/report", report.Capabilities)
		api.POST("/report/preview", report.Preview)
	}

	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = models.GenerateRequestID()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func accessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
