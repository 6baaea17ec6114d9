package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeExternal   ErrorType = "external"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// Error codes used across the pipeline.
const (
	CodeUnknownQueryType     = "UNKNOWN_QUERY_TYPE"
	CodeMissingCredential    = "MISSING_CREDENTIAL"
	CodeGenerationFailed     = "GENERATION_FAILED"
	CodeIntentParseFailed    = "INTENT_PARSE_FAILED"
	CodeQueryExecutionFailed = "QUERY_EXECUTION_FAILED"
	CodeConnectionFailed     = "CONNECTION_FAILED"
	CodeUnknownInsight       = "UNKNOWN_INSIGHT"
)

// AppError is the structured error carried between services and handlers.
type AppError struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Type     ErrorType      `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Cause    error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func (e *AppError) WithMetadata(key string, value any) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// HTTPStatus maps the error type to the status the handlers report.
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(errType ErrorType, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Type: errType}
}

func NewValidationError(code, message string) *AppError {
	return newError(ErrorTypeValidation, code, message)
}

func NewNotFoundError(code, message string) *AppError {
	return newError(ErrorTypeNotFound, code, message)
}

func NewExternalError(code, message string) *AppError {
	return newError(ErrorTypeExternal, code, message)
}

func NewInternalError(code, message string) *AppError {
	return newError(ErrorTypeInternal, code, message)
}

func NewTimeoutError(code, message string) *AppError {
	return newError(ErrorTypeTimeout, code, message)
}

// WrapExternalError tags an arbitrary backend failure with the service name.
func WrapExternalError(service string, err error) *AppError {
	return NewExternalError(fmt.Sprintf("%s_ERROR", service), "external service call failed").WithCause(err)
}

// AsAppError unwraps err to the first AppError in its chain, if any.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
