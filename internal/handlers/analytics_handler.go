package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/logger"
	"aria-analytics-pipeline/internal/services"
)

type AnalyticsHandler struct {
	agent       *services.AnalyticsAgent
	development bool
	log         *logger.Logger
}

func NewAnalyticsHandler(agent *services.AnalyticsAgent, development bool, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{agent: agent, development: development, log: log}
}

type analyticsRequest struct {
	QueryType            string `json:"queryType"`
	NaturalLanguageQuery string `json:"naturalLanguageQuery"`
}

// Execute handles POST /api/analytics. A natural language query takes
// precedence over queryType when both are present.
func (h *AnalyticsHandler) Execute(c *gin.Context) {
	var req analyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body", nil)
		return
	}

	if req.NaturalLanguageQuery != "" {
		result := h.agent.ExecuteNaturalLanguageQuery(c.Request.Context(), req.NaturalLanguageQuery)
		resp := gin.H{
			"success": result.Success,
			"type":    "natural_language",
			"query":   req.NaturalLanguageQuery,
			"sql":     result.SQL,
			"result":  result.Result,
		}
		if result.Error != "" {
			resp["error"] = result.Error
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	if req.QueryType == "" {
		respondValidation(c, "Either queryType or naturalLanguageQuery is required", nil)
		return
	}

	if !models.IsKnownQueryType(req.QueryType) {
		respondValidation(c,
			fmt.Sprintf("Invalid queryType. Must be one of: %s", strings.Join(h.agent.QueryTypes(), ", ")),
			gin.H{"validQueryTypes": h.agent.QueryTypes()})
		return
	}

	result, err := h.agent.ExecuteQuery(c.Request.Context(), req.QueryType)
	if err != nil {
		respondError(c, h.development, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"type":      "predefined",
		"queryType": req.QueryType,
		"result":    result,
	})
}

// ListQueryTypes handles GET /api/analytics.
func (h *AnalyticsHandler) ListQueryTypes(c *gin.Context) {
	descriptions := h.agent.QueryDescriptions()

	available := make([]gin.H, 0, len(descriptions))
	for _, queryType := range h.agent.QueryTypes() {
		available = append(available, gin.H{
			"type":        queryType,
			"description": descriptions[queryType],
		})
	}

	c.JSON(http.StatusOK, gin.H{"availableQueryTypes": available})
}

// Insight handles GET /api/analytics/insights/:name.
func (h *AnalyticsHandler) Insight(c *gin.Context) {
	name := c.Param("name")

	var (
		result *models.QueryResult
		err    error
	)
	switch name {
	case services.InsightCustomerGrowth:
		result, err = h.agent.CustomerGrowth(c.Request.Context())
	case services.InsightConversionFunnel:
		result, err = h.agent.ConversionFunnel(c.Request.Context())
	case services.InsightRevenueTimeSeries:
		result, err = h.agent.RevenueTimeSeries(c.Request.Context(), c.Query("interval"))
	default:
		respondError(c, h.development, models.NewNotFoundError(models.CodeUnknownInsight,
			fmt.Sprintf("unknown insight: %s", name)).WithMetadata("available", []string{
			services.InsightCustomerGrowth,
			services.InsightConversionFunnel,
			services.InsightRevenueTimeSeries,
		}))
		return
	}
	if err != nil {
		respondError(c, h.development, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"insight": name,
		"result":  result,
	})
}
