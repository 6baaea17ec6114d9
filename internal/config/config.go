package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string

	HTTP     HTTPConfig
	Log      LogConfig
	Gemini   GeminiConfig
	Firebolt FireboltConfig
	Mail     MailConfig
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	SQLModel   string
	RPMLimit   int
	MaxRetries int
	Timeout    time.Duration
}

// ExecutionMode is resolved once at startup; the execution client never
// re-derives it from the environment.
type ExecutionMode string

const (
	ExecutionModeLive      ExecutionMode = "live"
	ExecutionModeSimulated ExecutionMode = "simulated"
)

type FireboltConfig struct {
	Mode       ExecutionMode
	ModeReason string

	ClientID     string
	ClientSecret string
	Account      string
	Database     string
	Engine       string
	Schema       string
	APIEndpoint  string
}

// DSN builds the connection string for the firebolt database/sql driver.
func (c FireboltConfig) DSN() string {
	params := url.Values{}
	params.Set("account_name", c.Account)
	params.Set("client_id", c.ClientID)
	params.Set("client_secret", c.ClientSecret)
	if c.Engine != "" {
		params.Set("engine", c.Engine)
	}
	return fmt.Sprintf("firebolt:///%s?%s", c.Database, params.Encode())
}

type MailMode string

const (
	MailModeLive    MailMode = "live"
	MailModeSandbox MailMode = "sandbox"
)

type MailConfig struct {
	Mode       MailMode
	ModeReason string

	User        string
	AppPassword string
	FromName    string
	FromEmail   string
	SMTPHost    string
	SMTPPort    int
	SMTPSecure  bool
}

func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTP: HTTPConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT_SECONDS", 30),
			WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT_SECONDS", 60),
			IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT_SECONDS", 120),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Gemini: GeminiConfig{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			SQLModel:   getEnv("GEMINI_SQL_MODEL", "gemini-2.0-flash"),
			RPMLimit:   getEnvInt("GEMINI_RPM_LIMIT", 15),
			MaxRetries: getEnvInt("GEMINI_MAX_RETRIES", 3),
			Timeout:    getEnvDuration("GEMINI_TIMEOUT_SECONDS", 60),
		},
		Firebolt: FireboltConfig{
			ClientID:     os.Getenv("FIREBOLT_CLIENT_ID"),
			ClientSecret: os.Getenv("FIREBOLT_CLIENT_SECRET"),
			Account:      os.Getenv("FIREBOLT_ACCOUNT"),
			Database:     getEnv("FIREBOLT_DATABASE", "ecommercedb"),
			Engine:       os.Getenv("FIREBOLT_ENGINE"),
			Schema:       getEnv("FIREBOLT_SCHEMA", "public"),
			APIEndpoint:  getEnv("FIREBOLT_API_ENDPOINT", "api.app.firebolt.io"),
		},
		Mail: MailConfig{
			User:        os.Getenv("MAIL_USER"),
			AppPassword: os.Getenv("MAIL_APP_PASSWORD"),
			FromName:    getEnv("MAIL_FROM_NAME", "Aria Analytics"),
			FromEmail:   os.Getenv("MAIL_FROM_EMAIL"),
			SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:    getEnvInt("SMTP_PORT", 587),
			SMTPSecure:  getEnvBool("SMTP_SECURE", false),
		},
	}

	if cfg.Mail.FromEmail == "" {
		cfg.Mail.FromEmail = cfg.Mail.User
	}

	cfg.Firebolt.Mode, cfg.Firebolt.ModeReason = resolveExecutionMode(cfg.Firebolt, getEnvBool("FIREBOLT_ENABLED", false))
	cfg.Mail.Mode, cfg.Mail.ModeReason = resolveMailMode(cfg.Mail, getEnvBool("MAIL_ENABLED", false))

	return cfg, nil
}

func resolveExecutionMode(cfg FireboltConfig, enabled bool) (ExecutionMode, string) {
	hasCredentials := cfg.ClientID != "" &&
		cfg.ClientSecret != "" &&
		cfg.Account != "" &&
		cfg.ClientID != "your_client_id" &&
		cfg.ClientSecret != "your_client_secret"

	switch {
	case !hasCredentials:
		return ExecutionModeSimulated, "credentials not configured"
	case !enabled:
		return ExecutionModeSimulated, "FIREBOLT_ENABLED not set to true"
	default:
		return ExecutionModeLive, ""
	}
}

func resolveMailMode(cfg MailConfig, enabled bool) (MailMode, string) {
	hasCredentials := cfg.User != "" &&
		cfg.AppPassword != "" &&
		cfg.User != "your_email@gmail.com"

	switch {
	case !hasCredentials:
		return MailModeSandbox, "credentials not configured"
	case !enabled:
		return MailModeSandbox, "MAIL_ENABLED not set to true"
	default:
		return MailModeLive, ""
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value == "true"
}

func getEnvDuration(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackSeconds)) * time.Second
}
