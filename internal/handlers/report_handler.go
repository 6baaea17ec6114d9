package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"aria-analytics-pipeline/internal/config"
	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/emailtmpl"
	"aria-analytics-pipeline/internal/pkg/logger"
	"aria-analytics-pipeline/internal/services"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ReportHandler struct {
	agent       *services.ReportAgent
	mailMode    config.MailMode
	development bool
	log         *logger.Logger
}

func NewReportHandler(agent *services.ReportAgent, mailMode config.MailMode, development bool, log *logger.Logger) *ReportHandler {
	return &ReportHandler{agent: agent, mailMode: mailMode, development: development, log: log}
}

type reportRequest struct {
	Data       any    `json:"data"`
	ReportType string `json:"reportType"`
	Recipient  string `json:"recipient"`
	Subject    string `json:"subject"`
}

// Generate serves POST /api/report: narrative generation from posted data
// with optional email delivery.
func (h *ReportHandler) Generate(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body", nil)
		return
	}
	if req.Data == nil {
		respondValidation(c, "data parameter is required", nil)
		return
	}

	if req.ReportType == "" {
		req.ReportType = string(models.ReportTypeSummary)
	}
	switch models.ReportType(req.ReportType) {
	case models.ReportTypeSummary, models.ReportTypeDetailed, models.ReportTypeFinancial:
	default:
		respondValidation(c, "Invalid reportType. Must be one of: summary, detailed, financial",
			gin.H{"validReportTypes": []string{"summary", "detailed", "financial"}})
		return
	}

	if req.Recipient != "" && !emailRe.MatchString(req.Recipient) {
		respondValidation(c, "Invalid email address format", nil)
		return
	}

	if req.Subject == "" {
		req.Subject = "Analytics Report"
	}

	var (
		report string
		err    error
	)
	if models.ReportType(req.ReportType) == models.ReportTypeFinancial {
		report, err = h.agent.GenerateFinancialReport(c.Request.Context(), req.Data)
	} else {
		report, err = h.agent.GenerateReport(c.Request.Context(), req.Data, models.ReportType(req.ReportType))
	}
	if err != nil {
		respondError(c, h.development, err)
		return
	}

	emailSent := false
	if req.Recipient != "" {
		emailSent = h.agent.SendEmail(req.Recipient, req.Subject, report)
	}

	resp := gin.H{
		"success":    true,
		"reportType": req.ReportType,
		"report":     report,
		"emailSent":  emailSent,
	}
	if req.Recipient != "" {
		resp["recipient"] = req.Recipient
		resp["subject"] = req.Subject
	}
	c.JSON(http.StatusOK, resp)
}

type previewRequest struct {
	Report     string `json:"report"`
	ReportType string `json:"reportType"`
}

// Preview serves POST /api/report/preview: the HTML email body rendered
// for browser inspection.
func (h *ReportHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body", nil)
		return
	}
	if req.Report == "" {
		respondValidation(c, "report parameter is required", nil)
		return
	}

	html, err := emailtmpl.Render(req.Report, req.ReportType, "Firebolt Analytics Database")
	if err != nil {
		respondError(c, h.development, models.NewInternalError(models.CodeGenerationFailed,
			"failed to render report preview").WithCause(err))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Capabilities serves GET /api/report.
func (h *ReportHandler) Capabilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"reportTypes": []gin.H{
			{"type": "summary", "description": "Executive summary with key insights (~250-300 words)"},
			{"type": "detailed", "description": "Detailed analysis with comprehensive metrics"},
			{"type": "financial", "description": "Financial report with executive summary, metrics, trends, and recommendations (~500-600 words)"},
		},
		"features": []string{
			"AI-generated reports using Gemini",
			"Email delivery via SMTP",
			"Customizable report subjects",
			"Sandbox mode for testing",
		},
		"emailConfig": gin.H{
			"sandboxMode": h.mailMode == config.MailModeSandbox,
		},
	})
}
