package services

import (
	"context"
	"testing"

	"aria-analytics-pipeline/internal/config"
	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(config.LogConfig{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return log
}

// stubGenerator returns scripted completions in order, or a fixed error.
type stubGenerator struct {
	responses []string
	err       error
	calls     int
	prompts   []string
	models    []string
}

func (s *stubGenerator) Generate(_ context.Context, model, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.models = append(s.models, model)
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

// stubExecutor records executed SQL and returns a scripted result.
type stubExecutor struct {
	result *models.QueryResult
	err    error
	calls  int
	sqls   []string
}

func (s *stubExecutor) Execute(_ context.Context, sqlText string) (*models.QueryResult, error) {
	s.calls++
	s.sqls = append(s.sqls, sqlText)
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &models.QueryResult{Columns: []string{"x"}, Rows: []map[string]any{{"x": 1}}}, nil
}

func (s *stubExecutor) Mode() config.ExecutionMode {
	return config.ExecutionModeSimulated
}

func (s *stubExecutor) HealthCheck(_ context.Context) error {
	return nil
}

// stubMailer records payloads and reports a scripted outcome.
type stubMailer struct {
	sendResult bool
	mode       config.MailMode
	payloads   []models.EmailPayload
}

func (s *stubMailer) Send(payload models.EmailPayload) bool {
	s.payloads = append(s.payloads, payload)
	return s.sendResult
}

func (s *stubMailer) Mode() config.MailMode {
	if s.mode == "" {
		return config.MailModeSandbox
	}
	return s.mode
}
