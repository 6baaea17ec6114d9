package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/emailtmpl"
	"aria-analytics-pipeline/internal/pkg/logger"
)

// ReportAgent turns query results into narrative reports and delivers
// them by email.
type ReportAgent struct {
	generator TextGenerator
	mailer    MailSender
	model     string
	log       *logger.Logger
}

func NewReportAgent(generator TextGenerator, mailer MailSender, model string, log *logger.Logger) *ReportAgent {
	return &ReportAgent{
		generator: generator,
		mailer:    mailer,
		model:     model,
		log:       log,
	}
}

const summaryPromptTemplate = `Create a professional %s ecommerce analytics report from this data:
%s

Data Context - This is from an ecommerce platform that tracks:
- Purchase transactions with pricing information
- Product details (product_id, brand, category_code)
- Customer behavior (user_id, user_session)
- Event types: 'view' (browsing), 'cart' (add to cart), 'purchase' (completed sale)

The data includes:
- Revenue metrics (total_revenue, avg_revenue_per_customer)
- Transaction counts (total_purchases, unique_customers)
- Product performance (purchase_count, by brand/category)
- Customer engagement (event_count, unique_users, sessions)

Format: Executive summary with key insights and metrics
Length: ~250-300 words
Style: Professional, data-driven, actionable

Include:
1. Key Performance Indicators (KPIs)
   - Present actual numbers from the data
   - Explain what each metric means for the business

2. Notable Trends or Patterns
   - Identify top performers (products, categories, brands)
   - Note customer engagement patterns
   - Highlight conversion or behavioral insights

3. Comparative Insights (if data allows)
   - Compare top vs. bottom performers
   - Revenue concentration analysis
   - Customer value distribution

4. Brief Recommendations
   - 2-3 actionable suggestions based on the data
   - Focus on revenue optimization or customer retention

Note: If the data appears empty or has null values, acknowledge this and suggest data collection improvements.`

const financialPromptTemplate = `Using this ecommerce financial data, create a comprehensive financial report with the following structure:

DATA CONTEXT:
This is real ecommerce transaction data from a Firebolt analytics database with the following schema:
- event_time: timestamp of customer interactions
- event_type: 'view', 'cart', or 'purchase' events
- product_id: unique product identifier
- category_code: product category (e.g., electronics.smartphone, apparel.shoes)
- brand: product brand name
- price: transaction amount (only for 'purchase' events, null otherwise)
- user_id: unique customer identifier
- user_session: session tracking ID

ACTUAL DATA:
%s

REPORT STRUCTURE:

1. EXECUTIVE SUMMARY (3-4 sentences)
   - Overview of key findings from the data
   - Overall business health assessment
   - Time period covered (check period_start/period_end if available, or note "all-time data")
   - Most significant insight or achievement

2. KEY METRICS (bullet points with actual numbers)
   Revenue Metrics:
   - Total Revenue: [extract total_revenue from data]
   - Total Transactions/Purchases: [extract total_purchases or purchase_count]
   - Average Order Value (AOV): [calculate or extract avg_price]

   Customer Metrics:
   - Unique Customers: [extract unique_customers or customers]
   - Revenue per Customer: [extract avg_revenue_per_customer]
   - Customer Engagement: [extract unique_users, unique_sessions if available]

   Product/Category Performance:
   - Top Product/Category/Brand: [identify highest performer from data]
   - Performance Distribution: [note concentration or spread]

   Growth Indicators:
   - Growth rates: [extract growth_pct, revenue_growth_pct if available]
   - Trends: [note any period-over-period changes]

3. TRENDS ANALYSIS (detailed insights)
   - Event distribution and conversion signals if present
   - Top performing products/categories/brands by revenue
   - User engagement levels and session quality
   - Period-over-period changes and growth trajectory
   - Significant anomalies or underperforming segments

4. RECOMMENDATIONS (actionable strategies)
   - Revenue optimization: upsell, pricing, product mix
   - Customer acquisition and retention tactics
   - Product and inventory focus areas
   - Risk mitigation for declining or concentrated metrics

FORMATTING GUIDELINES:
- Use clear headings with markdown formatting (## for sections, ### for subsections)
- Present metrics as bullet points with actual values
- Use bold for important numbers (**$123,456**)
- Include percentages rounded to 2 decimal places
- If data is missing or null, note it explicitly and suggest data collection
- Keep tone professional, analytical, and solution-oriented

LENGTH: Comprehensive but focused (~600-700 words)
STYLE: Executive-level, data-driven, confident

IMPORTANT: Base ALL analysis on the actual data provided. Don't invent numbers or make assumptions beyond what the data shows.`

const insightsPromptTemplate = `Analyze this ecommerce data and provide strategic business insights:

DATA SOURCE: Firebolt ecommerce analytics database
Schema includes:
- event_time, event_type ('view'/'cart'/'purchase')
- product_id, category_code, brand
- price (for purchase events)
- user_id, user_session

ACTUAL DATA:
%s

ANALYSIS FRAMEWORK:

1. Revenue Optimization
   - Identify high-value products and categories from the data
   - Analyze pricing opportunities (avg_price, price ranges)
   - Suggest cross-sell and upsell potential
   - Revenue concentration analysis (top performers vs long tail)

2. Customer Behavior
   - Purchase patterns from event_count and unique_users
   - Customer segmentation opportunities
   - Engagement signals from user_session data
   - Retention indicators (if growth_pct or repeat metrics present)

3. Product Performance
   - Top performers (by purchase_count, total_revenue)
   - Bottom performers needing attention
   - Category trends and brand positioning

4. Actionable Recommendations
   - Inventory management strategies
   - Marketing focus areas
   - Product development opportunities
   - Conversion funnel optimization
   - Data-driven pricing adjustments

Format: Clear sections with markdown headings (##) and bullet points
Style: Strategic, executive-level, actionable
Length: ~400-500 words

IMPORTANT:
- Base insights on ACTUAL data provided, not assumptions
- If data is limited or null, note it and suggest data collection needs
- Focus on actionable recommendations that can drive business growth`

// GenerateReport produces a summary or detailed narrative from data.
// Unknown report types fall back to summary.
func (r *ReportAgent) GenerateReport(ctx context.Context, data any, reportType models.ReportType) (string, error) {
	if reportType != models.ReportTypeDetailed {
		reportType = models.ReportTypeSummary
	}
	return r.generate(ctx, "generate_"+string(reportType)+"_report",
		summaryPromptTemplate, string(reportType), data)
}

// GenerateFinancialReport produces the structured financial narrative.
func (r *ReportAgent) GenerateFinancialReport(ctx context.Context, data any) (string, error) {
	return r.generate(ctx, "generate_financial_report", financialPromptTemplate, "", data)
}

// GenerateEcommerceInsights produces the strategic insights narrative.
func (r *ReportAgent) GenerateEcommerceInsights(ctx context.Context, data any) (string, error) {
	return r.generate(ctx, "generate_ecommerce_insights", insightsPromptTemplate, "", data)
}

func (r *ReportAgent) generate(ctx context.Context, operation, promptTemplate, reportType string, data any) (string, error) {
	start := time.Now()

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", models.NewInternalError(models.CodeGenerationFailed,
			"failed to encode report data").WithCause(err)
	}

	var prompt string
	if reportType != "" {
		prompt = fmt.Sprintf(promptTemplate, reportType, string(encoded))
	} else {
		prompt = fmt.Sprintf(promptTemplate, string(encoded))
	}

	report, err := r.generator.Generate(ctx, r.model, prompt)
	r.log.LogAgent("report", operation, time.Since(start), map[string]any{
		"data_length": len(encoded),
	}, err)
	if err != nil {
		return "", err
	}
	return report, nil
}

// SendEmail wraps report in the branded HTML template and delivers it.
// Delivery problems are reported as false, never as an error.
func (r *ReportAgent) SendEmail(recipient, subject, report string) bool {
	body, err := emailtmpl.Render(report, "", "Aria Analytics Pipeline")
	if err != nil {
		r.log.Error("failed to render email template", "error", err.Error())
		body = report
	}

	sent := r.mailer.Send(models.EmailPayload{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	})
	if sent {
		r.log.Info("report email dispatched", "recipient", recipient, "subject", subject)
	} else {
		r.log.Warn("report email delivery failed", "recipient", recipient, "subject", subject)
	}
	return sent
}

// MailMode reports whether deliveries are live or sandboxed.
func (r *ReportAgent) MailMode() string {
	return string(r.mailer.Mode())
}
