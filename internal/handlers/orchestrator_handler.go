package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aria-analytics-pipeline/internal/pkg/logger"
	"aria-analytics-pipeline/internal/services"
)

type OrchestratorHandler struct {
	orchestrator *services.Orchestrator
	development  bool
	log          *logger.Logger
}

func NewOrchestratorHandler(orchestrator *services.Orchestrator, development bool, log *logger.Logger) *OrchestratorHandler {
	return &OrchestratorHandler{orchestrator: orchestrator, development: development, log: log}
}

type orchestratorRequest struct {
	Query  string `json:"query"`
	Action string `json:"action"`
}

// Handle serves POST /api/orchestrator. action selects between intent
// parsing (the default) and multi-step execution.
func (h *OrchestratorHandler) Handle(c *gin.Context) {
	var req orchestratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body", nil)
		return
	}
	if req.Query == "" {
		respondValidation(c, "query parameter is required", nil)
		return
	}

	if req.Action == "execute" || req.Action == "multi_step" {
		result := h.orchestrator.RunMultiStep(c.Request.Context(), req.Query)
		resp := gin.H{
			"action":     "multi_step_execution",
			"success":    result.Success,
			"totalSteps": result.TotalSteps,
			"steps":      result.Steps,
		}
		if result.Error != "" {
			resp["error"] = result.Error
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	intent, err := h.orchestrator.ParseIntent(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, h.development, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"action":  "intent_parsing",
		"query":   req.Query,
		"intent":  intent,
		"route":   h.orchestrator.RouteTask(intent),
	})
}

// Capabilities serves GET /api/orchestrator.
func (h *OrchestratorHandler) Capabilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"capabilities": gin.H{
			"actions":          []string{"parse", "execute", "multi_step"},
			"supportedIntents": []string{"analytics", "report", "email", "multi_step"},
			"features": []string{
				"Natural language query parsing",
				"Multi-agent orchestration",
				"Email delivery with reports",
				"Complex workflow execution",
			},
		},
		"stats": h.orchestrator.GetStats(),
		"examples": []gin.H{
			{
				"query":       "Show me revenue for the last 30 days",
				"action":      "parse",
				"description": "Parse intent and determine routing",
			},
			{
				"query":       "Generate a revenue report and email it to user@example.com",
				"action":      "execute",
				"description": "Execute multi-step workflow",
			},
		},
	})
}
