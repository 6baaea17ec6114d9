package config

import (
	"strings"
	"testing"
)

func TestResolveExecutionModeWithoutCredentials(t *testing.T) {
	mode, reason := resolveExecutionMode(FireboltConfig{}, true)
	if mode != ExecutionModeSimulated {
		t.Errorf("expected simulated mode, got %s", mode)
	}
	if !strings.Contains(reason, "credentials") {
		t.Errorf("expected reason to mention credentials, got %q", reason)
	}
}

func TestResolveExecutionModePlaceholderCredentials(t *testing.T) {
	cfg := FireboltConfig{
		ClientID:     "your_client_id",
		ClientSecret: "your_client_secret",
		Account:      "my-account",
	}
	mode, _ := resolveExecutionMode(cfg, true)
	if mode != ExecutionModeSimulated {
		t.Errorf("placeholder credentials must resolve to simulated mode, got %s", mode)
	}
}

func TestResolveExecutionModeDisabled(t *testing.T) {
	cfg := FireboltConfig{
		ClientID:     "real-id",
		ClientSecret: "real-secret",
		Account:      "my-account",
	}
	mode, reason := resolveExecutionMode(cfg, false)
	if mode != ExecutionModeSimulated {
		t.Errorf("expected simulated mode when disabled, got %s", mode)
	}
	if !strings.Contains(reason, "FIREBOLT_ENABLED") {
		t.Errorf("expected reason to mention FIREBOLT_ENABLED, got %q", reason)
	}
}

func TestResolveExecutionModeLive(t *testing.T) {
	cfg := FireboltConfig{
		ClientID:     "real-id",
		ClientSecret: "real-secret",
		Account:      "my-account",
	}
	mode, reason := resolveExecutionMode(cfg, true)
	if mode != ExecutionModeLive {
		t.Errorf("expected live mode, got %s", mode)
	}
	if reason != "" {
		t.Errorf("expected empty reason for live mode, got %q", reason)
	}
}

func TestResolveMailModePlaceholder(t *testing.T) {
	cfg := MailConfig{
		User:        "your_email@gmail.com",
		AppPassword: "secret",
	}
	mode, _ := resolveMailMode(cfg, true)
	if mode != MailModeSandbox {
		t.Errorf("placeholder user must resolve to sandbox mode, got %s", mode)
	}
}

func TestResolveMailModeLive(t *testing.T) {
	cfg := MailConfig{
		User:        "reports@example.com",
		AppPassword: "app-password",
	}
	mode, _ := resolveMailMode(cfg, true)
	if mode != MailModeLive {
		t.Errorf("expected live mode, got %s", mode)
	}
}

func TestDSNIncludesCredentialsAndEngine(t *testing.T) {
	cfg := FireboltConfig{
		ClientID:     "id-123",
		ClientSecret: "secret-456",
		Account:      "acme",
		Database:     "ecommercedb",
		Engine:       "analytics_engine",
	}
	dsn := cfg.DSN()

	if !strings.HasPrefix(dsn, "firebolt:///ecommercedb?") {
		t.Errorf("unexpected DSN prefix: %s", dsn)
	}
	for _, want := range []string{"account_name=acme", "client_id=id-123", "client_secret=secret-456", "engine=analytics_engine"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN missing %q: %s", want, dsn)
		}
	}
}

func TestDSNOmitsEmptyEngine(t *testing.T) {
	cfg := FireboltConfig{Database: "ecommercedb"}
	if strings.Contains(cfg.DSN(), "engine=") {
		t.Errorf("DSN should omit empty engine: %s", cfg.DSN())
	}
}
