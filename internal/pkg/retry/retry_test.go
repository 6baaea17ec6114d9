package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	retries := []int{}

	result, err := Do(context.Background(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient failure")
		}
		return "ok", nil
	}, Options{
		MaxAttempts:     5,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		OnRetry: func(attempt int, err error) {
			retries = append(retries, attempt)
		},
	})

	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected result ok, got %q", result)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retries) != 2 {
		t.Fatalf("expected 2 retry notifications, got %d", len(retries))
	}
	if retries[0] != 1 || retries[1] != 2 {
		t.Errorf("expected attempt numbers [1 2], got %v", retries)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("persistent failure")

	_, err := Do(context.Background(), func() (int, error) {
		calls++
		return 0, wantErr
	}, Options{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped original error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, func() (int, error) {
		calls++
		return 0, errors.New("failure")
	}, Options{
		MaxAttempts:     10,
		InitialInterval: 50 * time.Millisecond,
	})

	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if calls > 1 {
		t.Errorf("expected at most 1 call with cancelled context, got %d", calls)
	}
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), func() (int, error) {
		calls++
		return 42, nil
	}, Options{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("expected 42, got %d", result)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
