package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aria-analytics-pipeline/internal/models"
)

// errorResponse is the common failure envelope. Details carry the wrapped
// cause and are only populated in development.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondError(c *gin.Context, development bool, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Success: false, Error: err.Error()}

	if appErr, ok := models.AsAppError(err); ok {
		status = appErr.HTTPStatus()
		resp.Error = appErr.Message
		resp.Code = appErr.Code
		if development && appErr.Cause != nil {
			resp.Details = appErr.Cause.Error()
		}
	}

	c.JSON(status, resp)
}

func respondValidation(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"success": false, "error": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusBadRequest, body)
}
