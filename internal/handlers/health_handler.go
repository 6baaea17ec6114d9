package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"aria-analytics-pipeline/internal/config"
	"aria-analytics-pipeline/internal/services"
)

// generationChecker is the slice of the generation client the health
// endpoint needs.
type generationChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	executor  services.TabularExecutor
	generator generationChecker
	mailMode  config.MailMode
	startTime time.Time
}

func NewHealthHandler(executor services.TabularExecutor, generator generationChecker, mailMode config.MailMode) *HealthHandler {
	return &HealthHandler{
		executor:  executor,
		generator: generator,
		mailMode:  mailMode,
		startTime: time.Now(),
	}
}

// Check serves GET /health. The service is degraded, not down, when a
// backend fails its check; simulated execution always reports healthy.
func (h *HealthHandler) Check(c *gin.Context) {
	status := "healthy"
	httpStatus := http.StatusOK

	executionStatus := "ok"
	if err := h.executor.HealthCheck(c.Request.Context()); err != nil {
		executionStatus = err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	generationStatus := "ok"
	if err := h.generator.HealthCheck(c.Request.Context()); err != nil {
		generationStatus = err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":         status,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"services": gin.H{
			"firebolt": gin.H{
				"mode":   h.executor.Mode(),
				"status": executionStatus,
			},
			"gemini": gin.H{
				"status": generationStatus,
			},
			"mail": gin.H{
				"mode": h.mailMode,
			},
		},
	})
}
