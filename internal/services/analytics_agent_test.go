package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aria-analytics-pipeline/internal/models"
)

func newTestAnalyticsAgent(t *testing.T, executor *stubExecutor, generator *stubGenerator) *AnalyticsAgent {
	t.Helper()
	return NewAnalyticsAgent(NewCatalog("public"), executor, generator, "gemini-2.0-flash", newTestLogger(t))
}

func TestExecuteQueryUnknownTypeSkipsBackend(t *testing.T) {
	executor := &stubExecutor{}
	agent := newTestAnalyticsAgent(t, executor, &stubGenerator{})

	_, err := agent.ExecuteQuery(context.Background(), "nonexistent")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !models.IsCode(err, models.CodeUnknownQueryType) {
		t.Errorf("expected UNKNOWN_QUERY_TYPE, got %v", err)
	}
	if executor.calls != 0 {
		t.Errorf("backend must not be called for unknown query type, got %d calls", executor.calls)
	}
}

func TestExecuteQueryRunsCatalogSQL(t *testing.T) {
	executor := &stubExecutor{}
	agent := newTestAnalyticsAgent(t, executor, &stubGenerator{})

	_, err := agent.ExecuteQuery(context.Background(), models.QueryTypeTopProducts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if executor.calls != 1 {
		t.Fatalf("expected 1 backend call, got %d", executor.calls)
	}
	if !strings.Contains(executor.sqls[0], "purchase_count") {
		t.Errorf("executed SQL does not look like the top products query: %s", executor.sqls[0])
	}
}

func TestNaturalLanguageQueryStripsFences(t *testing.T) {
	executor := &stubExecutor{}
	generator := &stubGenerator{responses: []string{
		"```sql\nSELECT brand FROM public.ecommerce LIMIT 10\n```",
	}}
	agent := newTestAnalyticsAgent(t, executor, generator)

	result := agent.ExecuteNaturalLanguageQuery(context.Background(), "which brands sell best?")

	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if result.SQL != "SELECT brand FROM public.ecommerce LIMIT 10" {
		t.Errorf("fences not stripped: %q", result.SQL)
	}
	if executor.sqls[0] != result.SQL {
		t.Errorf("executed SQL %q differs from reported SQL %q", executor.sqls[0], result.SQL)
	}
}

func TestNaturalLanguageQueryPromptMentionsTable(t *testing.T) {
	generator := &stubGenerator{responses: []string{"SELECT 1"}}
	agent := newTestAnalyticsAgent(t, &stubExecutor{}, generator)

	agent.ExecuteNaturalLanguageQuery(context.Background(), "anything")

	if len(generator.prompts) != 1 {
		t.Fatalf("expected 1 generation call, got %d", len(generator.prompts))
	}
	if !strings.Contains(generator.prompts[0], "public.ecommerce") {
		t.Error("prompt must name the fact table")
	}
	if generator.models[0] != "gemini-2.0-flash" {
		t.Errorf("expected the SQL model, got %q", generator.models[0])
	}
}

func TestNaturalLanguageQueryGenerationFailure(t *testing.T) {
	executor := &stubExecutor{}
	generator := &stubGenerator{err: errors.New("quota exhausted")}
	agent := newTestAnalyticsAgent(t, executor, generator)

	result := agent.ExecuteNaturalLanguageQuery(context.Background(), "anything")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error == "" {
		t.Error("expected error message")
	}
	if result.SQL != "" {
		t.Errorf("no SQL should be reported when generation failed, got %q", result.SQL)
	}
	if executor.calls != 0 {
		t.Error("backend must not be called when generation failed")
	}
}

func TestNaturalLanguageQueryExecutionFailureIncludesSQL(t *testing.T) {
	executor := &stubExecutor{err: models.NewExternalError(models.CodeQueryExecutionFailed, "boom")}
	generator := &stubGenerator{responses: []string{"SELECT bad_column FROM public.ecommerce"}}
	agent := newTestAnalyticsAgent(t, executor, generator)

	result := agent.ExecuteNaturalLanguageQuery(context.Background(), "anything")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.SQL != "SELECT bad_column FROM public.ecommerce" {
		t.Errorf("failed execution must still report the generated SQL, got %q", result.SQL)
	}
}

func TestInsightQueriesReachBackend(t *testing.T) {
	executor := &stubExecutor{}
	agent := newTestAnalyticsAgent(t, executor, &stubGenerator{})
	ctx := context.Background()

	if _, err := agent.CustomerGrowth(ctx); err != nil {
		t.Errorf("customer growth: %v", err)
	}
	if _, err := agent.ConversionFunnel(ctx); err != nil {
		t.Errorf("conversion funnel: %v", err)
	}
	if _, err := agent.RevenueTimeSeries(ctx, "week"); err != nil {
		t.Errorf("revenue time series: %v", err)
	}
	if executor.calls != 3 {
		t.Errorf("expected 3 backend calls, got %d", executor.calls)
	}

	if _, err := agent.RevenueTimeSeries(ctx, "decade"); err == nil {
		t.Error("invalid interval must be rejected before reaching the backend")
	}
	if executor.calls != 3 {
		t.Errorf("invalid interval must not reach the backend, got %d calls", executor.calls)
	}
}
