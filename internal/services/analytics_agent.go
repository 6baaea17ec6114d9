package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/logger"
)

// AnalyticsAgent runs catalog queries and converts natural language
// questions into SQL before executing them.
type AnalyticsAgent struct {
	catalog   *Catalog
	executor  TabularExecutor
	generator TextGenerator
	sqlModel  string
	log       *logger.Logger
}

func NewAnalyticsAgent(catalog *Catalog, executor TabularExecutor, generator TextGenerator, sqlModel string, log *logger.Logger) *AnalyticsAgent {
	return &AnalyticsAgent{
		catalog:   catalog,
		executor:  executor,
		generator: generator,
		sqlModel:  sqlModel,
		log:       log,
	}
}

// ExecuteQuery runs the catalog query named by queryType. An unknown type
// fails validation before any backend call is made.
func (a *AnalyticsAgent) ExecuteQuery(ctx context.Context, queryType string) (*models.QueryResult, error) {
	start := time.Now()

	query, err := a.catalog.Query(queryType)
	if err != nil {
		a.log.LogAgent("analytics", "execute_query", time.Since(start), map[string]any{
			"query_type": queryType,
		}, err)
		return nil, err
	}

	result, err := a.executor.Execute(ctx, query)
	a.log.LogAgent("analytics", "execute_query", time.Since(start), map[string]any{
		"query_type": queryType,
	}, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CustomerGrowth returns month-over-month purchasing customer counts.
func (a *AnalyticsAgent) CustomerGrowth(ctx context.Context) (*models.QueryResult, error) {
	return a.runInsight(ctx, InsightCustomerGrowth, a.catalog.CustomerGrowthQuery())
}

// ConversionFunnel returns the view to cart to purchase funnel metrics.
func (a *AnalyticsAgent) ConversionFunnel(ctx context.Context) (*models.QueryResult, error) {
	return a.runInsight(ctx, InsightConversionFunnel, a.catalog.ConversionFunnelQuery())
}

// RevenueTimeSeries returns revenue aggregated per day, week, or month.
func (a *AnalyticsAgent) RevenueTimeSeries(ctx context.Context, interval string) (*models.QueryResult, error) {
	query, err := a.catalog.RevenueTimeSeriesQuery(interval)
	if err != nil {
		return nil, err
	}
	return a.runInsight(ctx, InsightRevenueTimeSeries, query)
}

func (a *AnalyticsAgent) runInsight(ctx context.Context, name, query string) (*models.QueryResult, error) {
	start := time.Now()
	result, err := a.executor.Execute(ctx, query)
	a.log.LogAgent("analytics", "insight_"+name, time.Since(start), nil, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

const sqlPromptTemplate = `You are a SQL expert for Firebolt database. Convert the following natural language query into a valid SQL query.

DATABASE SCHEMA:
Table: %s
Columns:
  - event_time     TIMESTAMPTZ NOT NULL  (when the event occurred)
  - event_type     TEXT NOT NULL         (values: 'view', 'cart', 'purchase')
  - product_id     BIGINT NOT NULL       (unique product identifier)
  - category_id    TEXT NULL             (category identifier)
  - category_code  TEXT NULL             (category code/name)
  - brand          TEXT NULL             (product brand name)
  - price          NUMERIC(38,9) NULL    (price - NULL for 'view' events)
  - user_id        TEXT NULL             (unique user identifier)
  - user_session   TEXT NULL             (session identifier)

IMPORTANT RULES:
1. Always filter NULL values when grouping by nullable columns (brand, category_code, etc.)
2. Use COALESCE() to replace NULL values with defaults like 'Unknown' or 'Uncategorized'
3. For revenue queries, filter WHERE event_type = 'purchase' AND price IS NOT NULL
4. Use NULLIF() in division to avoid divide-by-zero errors
5. Use ROUND() for monetary values (2 decimal places)
6. Return only the SQL query, no explanations or markdown
7. Use %s as the table name
8. Limit results to 100 rows maximum

USER QUESTION:
%s

SQL QUERY (only return the SQL, no markdown or explanations):`

// ExecuteNaturalLanguageQuery converts question into SQL with the model
// and executes it. Failures never propagate as errors; the outcome object
// carries success=false plus the failure message, and when generation
// succeeded the offending SQL is included for debugging.
func (a *AnalyticsAgent) ExecuteNaturalLanguageQuery(ctx context.Context, question string) *models.NaturalLanguageResult {
	start := time.Now()

	prompt := fmt.Sprintf(sqlPromptTemplate, a.catalog.Table(), a.catalog.Table(), question)

	generated, err := a.generator.Generate(ctx, a.sqlModel, prompt)
	if err != nil {
		a.log.LogAgent("analytics", "natural_language_query", time.Since(start), map[string]any{
			"stage": "generate",
		}, err)
		return &models.NaturalLanguageResult{Success: false, Error: err.Error()}
	}

	cleanSQL := stripCodeFences(generated)
	if strings.TrimSpace(cleanSQL) == "" {
		err := models.NewExternalError(models.CodeGenerationFailed, "model returned empty SQL")
		a.log.LogAgent("analytics", "natural_language_query", time.Since(start), nil, err)
		return &models.NaturalLanguageResult{Success: false, Error: err.Error()}
	}

	result, err := a.executor.Execute(ctx, cleanSQL)
	a.log.LogAgent("analytics", "natural_language_query", time.Since(start), map[string]any{
		"sql_length": len(cleanSQL),
	}, err)
	if err != nil {
		return &models.NaturalLanguageResult{
			Success: false,
			SQL:     cleanSQL,
			Error:   err.Error(),
		}
	}

	return &models.NaturalLanguageResult{
		Success: true,
		SQL:     cleanSQL,
		Result:  result,
	}
}

// QueryTypes exposes the catalog's known types for validation and the
// capability listing.
func (a *AnalyticsAgent) QueryTypes() []string {
	return a.catalog.QueryTypes()
}

func (a *AnalyticsAgent) QueryDescriptions() map[string]string {
	return a.catalog.QueryDescriptions()
}
