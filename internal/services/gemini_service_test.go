package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"aria-analytics-pipeline/internal/config"
	"aria-analytics-pipeline/internal/models"
)

// newGeminiForTest builds a GeminiService directly so no API client is
// needed; the limiter interval stands in for the RPM budget and
// generateFn replaces the real model call.
func newGeminiForTest(t *testing.T, interval time.Duration, maxRetries int,
	generateFn func(ctx context.Context, model, prompt string) (string, error)) *GeminiService {
	t.Helper()
	s := &GeminiService{
		cfg: config.GeminiConfig{
			Model:      "gemini-2.5-flash",
			SQLModel:   "gemini-2.0-flash",
			MaxRetries: maxRetries,
			Timeout:    10 * time.Second,
		},
		log:     newTestLogger(t),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
	s.generateFn = generateFn
	return s
}

func TestGenerateSecondCallWaitsForRateLimitSlot(t *testing.T) {
	interval := 80 * time.Millisecond
	s := newGeminiForTest(t, interval, 1, func(context.Context, string, string) (string, error) {
		return "ok", nil
	})

	// First call takes the only token in the bucket.
	if _, err := s.Generate(context.Background(), "", "first"); err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background(), "", "second")
		done <- err
	}()

	// The second call must still be parked on the limiter well before the
	// interval elapses.
	select {
	case err := <-done:
		t.Fatalf("second Generate returned before a token freed (err=%v)", err)
	case <-time.After(interval / 4):
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("second Generate failed after waiting: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second Generate never completed")
	}
}

func TestGenerateCancelledContextAbortsRateLimitWait(t *testing.T) {
	calls := 0
	s := newGeminiForTest(t, time.Hour, 1, func(context.Context, string, string) (string, error) {
		calls++
		return "ok", nil
	})

	// Drain the bucket so the next caller has to wait an hour.
	if _, err := s.Generate(context.Background(), "", "first"); err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := s.Generate(ctx, "", "second")
	if err == nil {
		t.Fatal("expected an error from the cancelled wait")
	}
	appErr, ok := models.AsAppError(err)
	if !ok {
		t.Fatalf("expected an AppError, got %T: %v", err, err)
	}
	if appErr.Code != models.CodeGenerationFailed {
		t.Errorf("code = %q, want %q", appErr.Code, models.CodeGenerationFailed)
	}
	if appErr.Type != models.ErrorTypeTimeout {
		t.Errorf("type = %q, want %q", appErr.Type, models.ErrorTypeTimeout)
	}
	if calls != 1 {
		t.Errorf("model called %d times, want 1 (cancelled caller must not reach the model)", calls)
	}
}

func TestGenerateRetriesTransientFailure(t *testing.T) {
	calls := 0
	s := newGeminiForTest(t, time.Millisecond, 3, func(context.Context, string, string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("503 model overloaded")
		}
		return "recovered", nil
	})

	text, err := s.Generate(context.Background(), "", "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q, want %q", text, "recovered")
	}
	if calls != 2 {
		t.Errorf("model called %d times, want 2", calls)
	}
}

func TestGenerateWrapsExhaustedRetries(t *testing.T) {
	calls := 0
	cause := errors.New("429 resource exhausted")
	s := newGeminiForTest(t, time.Millisecond, 2, func(context.Context, string, string) (string, error) {
		calls++
		return "", cause
	})

	_, err := s.Generate(context.Background(), "", "prompt")
	if err == nil {
		t.Fatal("expected an error after retries were exhausted")
	}
	if calls != 2 {
		t.Errorf("model called %d times, want 2", calls)
	}
	appErr, ok := models.AsAppError(err)
	if !ok {
		t.Fatalf("expected an AppError, got %T: %v", err, err)
	}
	if appErr.Code != models.CodeGenerationFailed {
		t.Errorf("code = %q, want %q", appErr.Code, models.CodeGenerationFailed)
	}
	if appErr.Type != models.ErrorTypeExternal {
		t.Errorf("type = %q, want %q", appErr.Type, models.ErrorTypeExternal)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error lost the underlying cause")
	}
}

func TestGeneratePreservesModelAppErrors(t *testing.T) {
	modelErr := models.NewExternalError(models.CodeGenerationFailed,
		"gemini returned no candidates")
	s := newGeminiForTest(t, time.Millisecond, 1, func(context.Context, string, string) (string, error) {
		return "", modelErr
	})

	_, err := s.Generate(context.Background(), "", "prompt")
	appErr, ok := models.AsAppError(err)
	if !ok {
		t.Fatalf("expected an AppError, got %T: %v", err, err)
	}
	if appErr.Message != "gemini returned no candidates" {
		t.Errorf("message = %q; the model error must surface without rewrapping", appErr.Message)
	}
}

func TestGenerateDefaultsModelFromConfig(t *testing.T) {
	var seen []string
	s := newGeminiForTest(t, time.Millisecond, 1, func(_ context.Context, model, _ string) (string, error) {
		seen = append(seen, model)
		return "ok", nil
	})

	if _, err := s.Generate(context.Background(), "", "prompt"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := s.Generate(context.Background(), "gemini-2.0-flash", "prompt"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := []string{"gemini-2.5-flash", "gemini-2.0-flash"}
	if len(seen) != len(want) {
		t.Fatalf("model called %d times, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("call %d used model %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestNewGeminiServiceRejectsMissingKey(t *testing.T) {
	for _, key := range []string{"", "your_api_key_here"} {
		_, err := NewGeminiService(context.Background(), config.GeminiConfig{APIKey: key}, newTestLogger(t))
		if err == nil {
			t.Fatalf("key %q: expected a credential error", key)
		}
		if !models.IsCode(err, models.CodeMissingCredential) {
			t.Errorf("key %q: code = %v, want %s", key, err, models.CodeMissingCredential)
		}
	}
}
