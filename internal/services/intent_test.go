package services

import (
	"context"
	"testing"

	"aria-analytics-pipeline/internal/models"
)

func TestDetectSignalsFamilies(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"show me revenue", models.QueryTypeRevenue},
		{"how much money did we make", models.QueryTypeRevenue},
		{"what are the top products", models.QueryTypeTopProducts},
		{"best sellers this month", models.QueryTypeTopProducts},
		{"popular items", models.QueryTypeTopProducts},
		{"user behavior trends", models.QueryTypeUserBehavior},
		{"customer behavior overview", models.QueryTypeUserBehavior},
		{"engagement stats", models.QueryTypeUserBehavior},
		{"category performance", models.QueryTypeCategoryPerformance},
		{"how do product categories compare", models.QueryTypeCategoryPerformance},
		{"brand analysis please", models.QueryTypeBrandAnalysis},
		{"best performing brands", models.QueryTypeBrandAnalysis},
		{"hello there", ""},
	}

	for _, tc := range cases {
		got := DetectSignals(tc.query).QueryType()
		if got != tc.want {
			t.Errorf("DetectSignals(%q).QueryType() = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestDetectSignalsPriorityOrder(t *testing.T) {
	// Revenue outranks every other family when several match.
	signals := DetectSignals("revenue by brand and category")
	if got := signals.QueryType(); got != models.QueryTypeRevenue {
		t.Errorf("expected revenue to win, got %q", got)
	}

	signals = DetectSignals("top products by category")
	if got := signals.QueryType(); got != models.QueryTypeTopProducts {
		t.Errorf("expected top_products to outrank category, got %q", got)
	}
}

func TestDetectSignalsRecipientAndReport(t *testing.T) {
	signals := DetectSignals("Generate a revenue report and email it to John.Doe@Example.COM")

	if !signals.Report {
		t.Error("expected report signal")
	}
	if signals.Recipient != "john.doe@example.com" {
		t.Errorf("expected lowercased recipient, got %q", signals.Recipient)
	}
}

func TestKeywordClassifierIntents(t *testing.T) {
	classifier := NewKeywordClassifier()
	ctx := context.Background()

	cases := []struct {
		query string
		want  models.Intent
	}{
		{"show me revenue", models.IntentAnalytics},
		{"generate a revenue report", models.IntentMultiStep},
		{"revenue report to user@example.com", models.IntentMultiStep},
		{"send something to user@example.com", models.IntentEmail},
		{"generate a summary", models.IntentReport},
	}

	for _, tc := range cases {
		result, err := classifier.Classify(ctx, tc.query)
		if err != nil {
			t.Errorf("Classify(%q): unexpected error: %v", tc.query, err)
			continue
		}
		if result.Intent != tc.want {
			t.Errorf("Classify(%q).Intent = %q, want %q", tc.query, result.Intent, tc.want)
		}
	}
}

func TestGeminiClassifierParsesValidResponse(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"intent":"multi_step","entities":{"query_type":"revenue","recipient":"user@example.com"},"confidence":0.92}`,
	}}
	classifier := NewGeminiClassifier(gen, "gemini-2.5-flash")

	result, err := classifier.Classify(context.Background(), "revenue report to user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Intent != models.IntentMultiStep {
		t.Errorf("expected multi_step, got %s", result.Intent)
	}
	if result.Entities.Recipient != "user@example.com" {
		t.Errorf("unexpected recipient: %q", result.Entities.Recipient)
	}
	if result.Confidence != 0.92 {
		t.Errorf("unexpected confidence: %v", result.Confidence)
	}
}

func TestGeminiClassifierStripsFences(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		"```json\n{\"intent\":\"analytics\",\"entities\":{\"query_type\":\"revenue\"},\"confidence\":0.8}\n```",
	}}
	classifier := NewGeminiClassifier(gen, "gemini-2.5-flash")

	result, err := classifier.Classify(context.Background(), "show me revenue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Entities.QueryType != models.QueryTypeRevenue {
		t.Errorf("unexpected query type: %q", result.Entities.QueryType)
	}
}

func TestGeminiClassifierRejectsMalformedResponses(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "Sure! The intent is analytics."},
		{"unknown intent", `{"intent":"chitchat","entities":{},"confidence":0.5}`},
		{"unknown query type", `{"intent":"analytics","entities":{"query_type":"weather"},"confidence":0.5}`},
		{"confidence out of range", `{"intent":"analytics","entities":{},"confidence":1.5}`},
		{"unknown field", `{"intent":"analytics","entities":{},"confidence":0.5,"extra":true}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{responses: []string{tc.response}}
			classifier := NewGeminiClassifier(gen, "gemini-2.5-flash")

			_, err := classifier.Classify(context.Background(), "anything")
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !models.IsCode(err, models.CodeIntentParseFailed) {
				t.Errorf("expected INTENT_PARSE_FAILED, got %v", err)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```sql\nSELECT 1\n```", "SELECT 1"},
		{"```\nSELECT 1\n```", "SELECT 1"},
		{"SELECT 1", "SELECT 1"},
		{"  SELECT 1  ", "SELECT 1"},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
