package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"aria-analytics-pipeline/internal/config"
	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/logger"
	"aria-analytics-pipeline/internal/pkg/retry"
)

// TextGenerator produces model completions for a prompt. Implemented by
// GeminiService; agents depend on this interface so tests can stub it.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// GeminiService calls the Gemini API behind a process-wide rate limiter.
// All callers share one token bucket so concurrent requests queue rather
// than trip the free-tier quota.
type GeminiService struct {
	cfg     config.GeminiConfig
	log     *logger.Logger
	client  *genai.Client
	limiter *rate.Limiter

	// generateFn performs one model call. Tests swap it out.
	generateFn func(ctx context.Context, model, prompt string) (string, error)
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, log *logger.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" || cfg.APIKey == "your_api_key_here" {
		return nil, models.NewValidationError(models.CodeMissingCredential,
			"GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, models.NewExternalError(models.CodeConnectionFailed,
			"failed to create gemini client").WithCause(err)
	}

	if cfg.RPMLimit <= 0 {
		cfg.RPMLimit = 15
	}

	s := &GeminiService{
		cfg:    cfg,
		log:    log,
		client: client,
		// One request slot per interval; rpm 15 yields one call every 4s.
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RPMLimit)), 1),
	}
	s.generateFn = s.callModel

	log.Info("gemini service initialized",
		"model", cfg.Model, "sql_model", cfg.SQLModel, "rpm_limit", cfg.RPMLimit)
	return s, nil
}

// Generate waits for a rate-limit slot, then calls the model with bounded
// retries. Callers blocked on the limiter are released in arrival order;
// a cancelled context aborts the wait.
func (s *GeminiService) Generate(ctx context.Context, model, prompt string) (string, error) {
	start := time.Now()

	if model == "" {
		model = s.cfg.Model
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", models.NewTimeoutError(models.CodeGenerationFailed,
			"cancelled while waiting for rate limit slot").WithCause(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	text, err := retry.Do(ctx, func() (string, error) {
		return s.generateFn(ctx, model, prompt)
	}, retry.Options{
		MaxAttempts:     uint(s.cfg.MaxRetries),
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		OnRetry: func(attempt int, err error) {
			s.log.Warn("gemini call retrying",
				"model", model, "attempt", attempt, "error", err.Error())
		},
	})

	s.log.LogService("gemini", "generate", time.Since(start), map[string]any{
		"model":         model,
		"prompt_length": len(prompt),
	}, err)

	if err != nil {
		if appErr, ok := models.AsAppError(err); ok {
			return "", appErr
		}
		return "", models.NewExternalError(models.CodeGenerationFailed,
			"gemini generation failed").WithCause(err)
	}
	return text, nil
}

func (s *GeminiService) callModel(ctx context.Context, model, prompt string) (string, error) {
	result, err := s.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", models.NewExternalError(models.CodeGenerationFailed,
			"gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", models.NewExternalError(models.CodeGenerationFailed,
			"gemini returned an empty completion")
	}
	return text, nil
}

// HealthCheck reports whether the service can take requests. It does not
// spend a model call; a constructed client with a key is considered ready.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return models.NewInternalError(models.CodeConnectionFailed, "gemini client not initialized")
	}
	return nil
}

// stripCodeFences removes a single leading/trailing markdown fence pair
// (```json ... ``` or ``` ... ```) that models wrap around structured
// output, leaving the inner text intact.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag on the opening fence line.
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, " \t{[") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
