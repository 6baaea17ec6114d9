package services

import (
	"context"
	"sync"
	"time"

	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/logger"
)

// Orchestrator coordinates the analytics, report, and email agents for
// multi-step queries and routes classified intents to the right agent.
type Orchestrator struct {
	analytics  *AnalyticsAgent
	report     *ReportAgent
	classifier IntentClassifier
	log        *logger.Logger

	mu    sync.Mutex
	stats OrchestratorStats
}

type OrchestratorStats struct {
	TotalRuns      int64 `json:"total_runs"`
	SuccessfulRuns int64 `json:"successful_runs"`
	FailedRuns     int64 `json:"failed_runs"`
	TotalSteps     int64 `json:"total_steps"`
	EmailsSent     int64 `json:"emails_sent"`
}

func NewOrchestrator(analytics *AnalyticsAgent, report *ReportAgent, classifier IntentClassifier, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		analytics:  analytics,
		report:     report,
		classifier: classifier,
		log:        log,
	}
}

// ParseIntent classifies query into a structured intent.
func (o *Orchestrator) ParseIntent(ctx context.Context, query string) (*models.IntentResult, error) {
	return o.classifier.Classify(ctx, query)
}

// RouteTask maps a classified intent to the agent that handles it.
func (o *Orchestrator) RouteTask(intent *models.IntentResult) models.AgentType {
	switch intent.Intent {
	case models.IntentAnalytics:
		return models.AgentTypeAnalytics
	case models.IntentReport:
		return models.AgentTypeReport
	case models.IntentEmail:
		return models.AgentTypeEmail
	default:
		return models.AgentTypeUnknown
	}
}

// RunMultiStep plans and executes the step chain implied by query:
// analytics first, then a report when one was asked for or an email is
// due, then the email itself. Steps are recorded in execution order; a
// failure aborts the chain, appends a synthetic error step, and marks the
// run unsuccessful. A query with no recognizable analytics signal yields
// an empty successful run.
func (o *Orchestrator) RunMultiStep(ctx context.Context, query string) *models.StepRunResult {
	start := time.Now()
	steps := []models.Step{}

	signals := DetectSignals(query)
	queryType := signals.QueryType()

	result, runErr := o.runSteps(ctx, signals, queryType, &steps)
	if runErr != nil {
		steps = append(steps, models.Step{
			Step:   "error",
			Action: "orchestration_failed",
			Output: runErr.Error(),
			Status: models.StepStatusFailed,
		})
		result = &models.StepRunResult{
			Success:    false,
			TotalSteps: len(steps),
			Steps:      steps,
			Error:      runErr.Error(),
		}
	}

	o.recordRun(result)
	o.log.LogAgent("orchestrator", "multi_step", time.Since(start), map[string]any{
		"query_type":  queryType,
		"total_steps": result.TotalSteps,
		"success":     result.Success,
	}, runErr)

	return result
}

func (o *Orchestrator) runSteps(ctx context.Context, signals QuerySignals, queryType string, steps *[]models.Step) (*models.StepRunResult, error) {
	if queryType == "" {
		return &models.StepRunResult{
			Success:    true,
			TotalSteps: 0,
			Steps:      []models.Step{},
		}, nil
	}

	analyticsResult, err := o.analytics.ExecuteQuery(ctx, queryType)
	if err != nil {
		return nil, err
	}
	*steps = append(*steps, models.Step{
		Step:   "analytics",
		Action: queryType + "_query",
		Output: analyticsResult,
		Status: models.StepStatusCompleted,
	})

	if signals.Report || signals.Recipient != "" {
		reportType := models.ReportTypeSummary
		if signals.Revenue || signals.Category || signals.Brand {
			reportType = models.ReportTypeFinancial
		}

		var report string
		if reportType == models.ReportTypeFinancial {
			report, err = o.report.GenerateFinancialReport(ctx, analyticsResult)
		} else {
			report, err = o.report.GenerateReport(ctx, analyticsResult, models.ReportTypeSummary)
		}
		if err != nil {
			return nil, err
		}
		*steps = append(*steps, models.Step{
			Step:   "report",
			Action: "generate_" + string(reportType) + "_report",
			Output: report,
			Status: models.StepStatusCompleted,
		})

		if signals.Recipient != "" {
			subject := models.SubjectForQueryType(queryType)
			sent := o.report.SendEmail(signals.Recipient, subject, report)

			status := models.StepStatusCompleted
			if !sent {
				status = models.StepStatusFailed
			}
			*steps = append(*steps, models.Step{
				Step:   "email",
				Action: "send_report",
				Output: models.EmailStepOutput{
					Recipient: signals.Recipient,
					Subject:   subject,
					Sent:      sent,
					Sandbox:   o.report.MailMode() == "sandbox",
				},
				Status: status,
			})
		}
	}

	return &models.StepRunResult{
		Success:    true,
		TotalSteps: len(*steps),
		Steps:      *steps,
	}, nil
}

func (o *Orchestrator) recordRun(result *models.StepRunResult) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stats.TotalRuns++
	o.stats.TotalSteps += int64(result.TotalSteps)
	if result.Success {
		o.stats.SuccessfulRuns++
	} else {
		o.stats.FailedRuns++
	}
	for _, step := range result.Steps {
		if step.Step == "email" && step.Status == models.StepStatusCompleted {
			o.stats.EmailsSent++
		}
	}
}

// GetStats returns a snapshot of the run counters.
func (o *Orchestrator) GetStats() OrchestratorStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}
