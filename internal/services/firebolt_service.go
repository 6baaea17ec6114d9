package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/firebolt-db/firebolt-go-sdk"
	"github.com/sony/gobreaker"

	"aria-analytics-pipeline/internal/config"
	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/logger"
)

// TabularExecutor executes SQL and returns tabular results. Both the live
// Firebolt-backed client and the simulated client satisfy it.
type TabularExecutor interface {
	Execute(ctx context.Context, sqlText string) (*models.QueryResult, error)
	Mode() config.ExecutionMode
	HealthCheck(ctx context.Context) error
}

// FireboltService runs analytics SQL against Firebolt when credentials are
// configured, and serves deterministic fixtures otherwise. The mode is
// fixed at construction and reported on every call so downstream consumers
// can label their outputs.
type FireboltService struct {
	cfg     config.FireboltConfig
	log     *logger.Logger
	db      *sql.DB
	breaker *gobreaker.CircuitBreaker
}

func NewFireboltService(cfg config.FireboltConfig, log *logger.Logger) (*FireboltService, error) {
	s := &FireboltService{
		cfg: cfg,
		log: log,
	}

	if cfg.Mode == config.ExecutionModeSimulated {
		log.Info("firebolt service starting in simulated mode", "reason", cfg.ModeReason)
		return s, nil
	}

	db, err := sql.Open("firebolt", cfg.DSN())
	if err != nil {
		return nil, models.NewExternalError(models.CodeConnectionFailed,
			"failed to open firebolt connection").WithCause(err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	s.db = db

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "firebolt",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	log.Info("firebolt service starting in live mode",
		"database", cfg.Database, "engine", cfg.Engine, "account", cfg.Account)
	return s, nil
}

func (s *FireboltService) Mode() config.ExecutionMode {
	return s.cfg.Mode
}

// Execute runs sqlText and maps the result set into column-ordered rows.
// Simulated mode matches the SQL against canned fixtures and never fails.
// Live failures are returned as QUERY_EXECUTION_FAILED so callers surface
// them instead of silently degrading to fixture data.
func (s *FireboltService) Execute(ctx context.Context, sqlText string) (*models.QueryResult, error) {
	start := time.Now()

	if s.cfg.Mode == config.ExecutionModeSimulated {
		result := cannedResult(sqlText)
		s.log.LogService("firebolt", "execute", time.Since(start), map[string]any{
			"mode": "simulated",
			"rows": len(result.Rows),
		}, nil)
		return result, nil
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.queryRows(ctx, sqlText)
	})
	if err != nil {
		s.log.LogService("firebolt", "execute", time.Since(start), map[string]any{
			"mode": "live",
		}, err)
		if appErr, ok := models.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, models.NewExternalError(models.CodeQueryExecutionFailed,
			"query execution failed").WithCause(err)
	}

	result := out.(*models.QueryResult)
	s.log.LogService("firebolt", "execute", time.Since(start), map[string]any{
		"mode": "live",
		"rows": len(result.Rows),
	}, nil)
	return result, nil
}

func (s *FireboltService) queryRows(ctx context.Context, sqlText string) (*models.QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, models.NewExternalError(models.CodeQueryExecutionFailed,
			"query execution failed").WithCause(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, models.NewExternalError(models.CodeQueryExecutionFailed,
			"failed to read result columns").WithCause(err)
	}

	result := &models.QueryResult{
		Columns: columns,
		Rows:    []map[string]any{},
	}

	values := make([]any, len(columns))
	scanTargets := make([]any, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, models.NewExternalError(models.CodeQueryExecutionFailed,
				"failed to scan result row").WithCause(err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewExternalError(models.CodeQueryExecutionFailed,
			"error iterating result rows").WithCause(err)
	}

	return result, nil
}

// normalizeValue converts driver byte slices to strings so results
// serialize to JSON as text rather than base64.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func (s *FireboltService) HealthCheck(ctx context.Context) error {
	if s.cfg.Mode == config.ExecutionModeSimulated {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return models.NewExternalError(models.CodeConnectionFailed,
			fmt.Sprintf("firebolt ping failed: %v", err)).WithCause(err)
	}
	return nil
}

// Close releases the pooled connections. No-op in simulated mode.
func (s *FireboltService) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
