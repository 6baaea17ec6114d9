package models

import (
	"github.com/google/uuid"
)

// Names of the pre-defined catalog queries. Query types travel as plain
// strings through JSON bodies and map keys; validation happens at the
// boundary via IsKnownQueryType.
const (
	QueryTypeRevenue             = "revenue"
	QueryTypeTopProducts         = "top_products"
	QueryTypeUserBehavior        = "user_behavior"
	QueryTypeCategoryPerformance = "category_performance"
	QueryTypeBrandAnalysis       = "brand_analysis"
)

// IsKnownQueryType reports whether queryType names a catalog query.
func IsKnownQueryType(queryType string) bool {
	switch queryType {
	case QueryTypeRevenue, QueryTypeTopProducts, QueryTypeUserBehavior,
		QueryTypeCategoryPerformance, QueryTypeBrandAnalysis:
		return true
	}
	return false
}

// QueryResult is the tabular shape returned by the execution backend.
// Invariant: every row carries exactly the keys listed in Columns.
type QueryResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

type Intent string

const (
	IntentAnalytics Intent = "analytics"
	IntentReport    Intent = "report"
	IntentEmail     Intent = "email"
	IntentMultiStep Intent = "multi_step"
)

type AgentType string

const (
	AgentTypeAnalytics AgentType = "analytics"
	AgentTypeReport    AgentType = "report"
	AgentTypeEmail     AgentType = "email"
	AgentTypeUnknown   AgentType = "unknown"
)

type IntentEntities struct {
	QueryType string `json:"query_type,omitempty"`
	TimeRange string `json:"time_range,omitempty"`
	Recipient string `json:"recipient,omitempty"`
}

// IntentResult is produced once per classification call and is not
// mutated afterwards.
type IntentResult struct {
	Intent     Intent         `json:"intent"`
	Entities   IntentEntities `json:"entities"`
	Confidence float64        `json:"confidence"`
}

type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// Step is one recorded stage of a multi-step orchestration run. Steps are
// appended in execution order and never mutated after being appended.
type Step struct {
	Step   string     `json:"step"`
	Action string     `json:"action"`
	Output any        `json:"output"`
	Status StepStatus `json:"status"`
}

type StepRunResult struct {
	Success    bool   `json:"success"`
	TotalSteps int    `json:"totalSteps"`
	Steps      []Step `json:"steps"`
	Error      string `json:"error,omitempty"`
}

// EmailStepOutput is the output payload of an email step in the trace.
type EmailStepOutput struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Sent      bool   `json:"sent"`
	Sandbox   bool   `json:"sandbox"`
}

// EmailPayload is constructed, handed to the mail client, and discarded.
type EmailPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// NaturalLanguageResult is the outcome of the text-to-SQL path. The path
// never propagates errors to its caller; failures land in Error.
type NaturalLanguageResult struct {
	Success bool         `json:"success"`
	SQL     string       `json:"sql,omitempty"`
	Result  *QueryResult `json:"result,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type ReportType string

const (
	ReportTypeSummary   ReportType = "summary"
	ReportTypeDetailed  ReportType = "detailed"
	ReportTypeFinancial ReportType = "financial"
)

// SubjectForQueryType returns the email subject line used when a report
// for the given catalog query is delivered.
func SubjectForQueryType(queryType string) string {
	subjects := map[string]string{
		QueryTypeRevenue:             "Revenue Analysis Report",
		QueryTypeTopProducts:         "Top Products Performance Report",
		QueryTypeUserBehavior:        "User Behavior Insights Report",
		QueryTypeCategoryPerformance: "Category Performance Report",
		QueryTypeBrandAnalysis:       "Brand Analysis Report",
	}
	if subject, ok := subjects[queryType]; ok {
		return subject
	}
	return "Analytics Report"
}

func GenerateRequestID() string {
	return uuid.New().String()
}
