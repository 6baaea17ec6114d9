package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"aria-analytics-pipeline/internal/models"
)

// IntentClassifier resolves a free-text query into a structured intent.
type IntentClassifier interface {
	Classify(ctx context.Context, query string) (*models.IntentResult, error)
}

var (
	revenueRe      = regexp.MustCompile(`revenue|sales|income|earnings|money`)
	topProductsRe  = regexp.MustCompile(`top\s+products|best\s+sellers?|popular\s+items|trending`)
	userBehaviorRe = regexp.MustCompile(`user\s+behavior|customer\s+behavior|user\s+activity|engagement`)
	categoryRe     = regexp.MustCompile(`categor(y|ies)|product\s+categories|category\s+performance`)
	brandRe        = regexp.MustCompile(`brand(s)?|brand\s+performance|brand\s+analysis`)
	reportRe       = regexp.MustCompile(`report|summary|generate|create\s+report`)
	recipientRe    = regexp.MustCompile(`[\w.-]+@[\w.-]+\.[a-z]{2,}`)
)

// QuerySignals are the keyword matches extracted from a lowercased query.
// Detection order is fixed: revenue wins over top products, and so on down
// to brand analysis, so a query touching several families resolves to the
// highest-priority one.
type QuerySignals struct {
	Revenue      bool
	TopProducts  bool
	UserBehavior bool
	Category     bool
	Brand        bool
	Report       bool
	Recipient    string
}

func DetectSignals(query string) QuerySignals {
	lower := strings.ToLower(query)
	return QuerySignals{
		Revenue:      revenueRe.MatchString(lower),
		TopProducts:  topProductsRe.MatchString(lower),
		UserBehavior: userBehaviorRe.MatchString(lower),
		Category:     categoryRe.MatchString(lower),
		Brand:        brandRe.MatchString(lower),
		Report:       reportRe.MatchString(lower),
		Recipient:    recipientRe.FindString(lower),
	}
}

// QueryType returns the highest-priority matched query type, or "" when no
// family matched.
func (s QuerySignals) QueryType() string {
	switch {
	case s.Revenue:
		return models.QueryTypeRevenue
	case s.TopProducts:
		return models.QueryTypeTopProducts
	case s.UserBehavior:
		return models.QueryTypeUserBehavior
	case s.Category:
		return models.QueryTypeCategoryPerformance
	case s.Brand:
		return models.QueryTypeBrandAnalysis
	default:
		return ""
	}
}

// KeywordClassifier classifies without a model call. It is the fallback
// when the language model is unavailable and the reference behavior for
// multi-step planning.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(_ context.Context, query string) (*models.IntentResult, error) {
	signals := DetectSignals(query)
	queryType := signals.QueryType()

	result := &models.IntentResult{
		Intent:     models.IntentAnalytics,
		Confidence: 0.6,
		Entities: models.IntentEntities{
			QueryType: queryType,
			Recipient: signals.Recipient,
		},
	}

	switch {
	case queryType != "" && (signals.Report || signals.Recipient != ""):
		result.Intent = models.IntentMultiStep
	case signals.Recipient != "":
		result.Intent = models.IntentEmail
	case signals.Report:
		result.Intent = models.IntentReport
	}

	if queryType != "" {
		result.Confidence = 0.75
	}
	return result, nil
}

// GeminiClassifier asks the model for a structured classification and
// validates the response strictly: a fenced or malformed reply is an
// INTENT_PARSE_FAILED error, never a guess.
type GeminiClassifier struct {
	generator TextGenerator
	model     string
}

func NewGeminiClassifier(generator TextGenerator, model string) *GeminiClassifier {
	return &GeminiClassifier{generator: generator, model: model}
}

const intentPromptTemplate = `Analyze this user query and classify the intent for an ecommerce analytics system:
Query: %q

Context: The system analyzes ecommerce purchase data with the following schema:
- event_time: timestamp of the event
- event_type: 'view', 'cart', or 'purchase'
- product_id: product identifier
- category_code: product category
- brand: product brand
- price: transaction price (null for non-purchase events)
- user_id: customer identifier
- user_session: session identifier

The system can:
- Run analytics queries (revenue, top products, user behavior, category/brand analysis)
- Generate reports (summary or financial)
- Send emails with reports
- Handle multi-step queries that combine the above

Respond with ONLY a JSON object, no markdown fences, in this format:
{
  "intent": "analytics" | "report" | "email" | "multi_step",
  "entities": {
    "query_type": "revenue|top_products|user_behavior|category_performance|brand_analysis",
    "time_range": "time period if specified",
    "recipient": "email address if specified"
  },
  "confidence": 0.0 to 1.0
}

Examples:
- "Show me revenue" -> intent: analytics, query_type: revenue
- "What are the top selling products?" -> intent: analytics, query_type: top_products
- "Generate report and email to john@example.com" -> intent: multi_step, recipient: john@example.com
- "How are users behaving?" -> intent: analytics, query_type: user_behavior
- "Best performing brands" -> intent: analytics, query_type: brand_analysis
- "Category performance" -> intent: analytics, query_type: category_performance`

func (c *GeminiClassifier) Classify(ctx context.Context, query string) (*models.IntentResult, error) {
	prompt := fmt.Sprintf(intentPromptTemplate, query)

	response, err := c.generator.Generate(ctx, c.model, prompt)
	if err != nil {
		return nil, err
	}

	return parseIntentResponse(response)
}

func parseIntentResponse(response string) (*models.IntentResult, error) {
	cleaned := stripCodeFences(response)

	var result models.IntentResult
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&result); err != nil {
		return nil, models.NewExternalError(models.CodeIntentParseFailed,
			"model response is not valid intent JSON").WithCause(err).
			WithMetadata("response_length", len(response))
	}

	switch result.Intent {
	case models.IntentAnalytics, models.IntentReport, models.IntentEmail, models.IntentMultiStep:
	default:
		return nil, models.NewExternalError(models.CodeIntentParseFailed,
			fmt.Sprintf("model returned unknown intent %q", result.Intent))
	}

	if qt := result.Entities.QueryType; qt != "" && !models.IsKnownQueryType(qt) {
		return nil, models.NewExternalError(models.CodeIntentParseFailed,
			fmt.Sprintf("model returned unknown query type %q", qt))
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, models.NewExternalError(models.CodeIntentParseFailed,
			fmt.Sprintf("model returned out-of-range confidence %v", result.Confidence))
	}

	return &result, nil
}
