package services

import (
	"fmt"
	"strings"

	"aria-analytics-pipeline/internal/models"
)

// Catalog maps the pre-defined query types to SQL over the ecommerce fact
// table. The table schema:
//
//	event_time     TIMESTAMPTZ NOT NULL
//	event_type     TEXT NOT NULL         ('view', 'cart', 'purchase')
//	product_id     BIGINT NOT NULL
//	category_id    TEXT NULL
//	category_code  TEXT NULL
//	brand          TEXT NULL
//	price          NUMERIC(38,9) NULL    (NULL for non-purchase events)
//	user_id        TEXT NULL
//	user_session   TEXT NULL
//
// Every template filters event_type='purchase' AND price IS NOT NULL for
// revenue-bearing aggregates, coalesces nullable dimension columns so
// grouped aggregates keep unlabeled rows, and null-guards division.
type Catalog struct {
	table   string
	queries map[string]string
}

const (
	InsightCustomerGrowth    = "customer_growth"
	InsightConversionFunnel  = "conversion_funnel"
	InsightRevenueTimeSeries = "revenue_timeseries"
)

func NewCatalog(schema string) *Catalog {
	if schema == "" {
		schema = "public"
	}
	table := schema + ".ecommerce"

	queries := map[string]string{
		models.QueryTypeRevenue: fmt.Sprintf(`
			SELECT
				ROUND(SUM(price), 2) as total_revenue,
				COUNT(*) as total_purchases,
				COUNT(DISTINCT user_id) as unique_customers,
				ROUND(SUM(price) / NULLIF(COUNT(DISTINCT user_id), 0), 2) as avg_revenue_per_customer,
				MIN(event_time) as period_start,
				MAX(event_time) as period_end
			FROM %s
			WHERE event_type = 'purchase'
			AND price IS NOT NULL`, table),
		models.QueryTypeTopProducts: fmt.Sprintf(`
			SELECT
				product_id,
				COALESCE(brand, 'Unknown') as brand,
				COALESCE(category_code, 'Uncategorized') as category_code,
				COUNT(*) as purchase_count,
				ROUND(SUM(price), 2) as total_revenue,
				ROUND(AVG(price), 2) as avg_price
			FROM %s
			WHERE event_type = 'purchase'
			AND price IS NOT NULL
			GROUP BY product_id, brand, category_code
			ORDER BY purchase_count DESC
			LIMIT 10`, table),
		models.QueryTypeUserBehavior: fmt.Sprintf(`
			SELECT
				event_type,
				COUNT(*) as event_count,
				COUNT(DISTINCT user_id) as unique_users,
				COUNT(DISTINCT user_session) as unique_sessions,
				ROUND(AVG(CASE WHEN price IS NOT NULL THEN price ELSE 0 END), 2) as avg_price_when_present
			FROM %s
			GROUP BY event_type
			ORDER BY event_count DESC`, table),
		models.QueryTypeCategoryPerformance: fmt.Sprintf(`
			SELECT
				COALESCE(category_code, 'Uncategorized') as category_code,
				COUNT(*) as purchases,
				ROUND(SUM(price), 2) as revenue,
				ROUND(AVG(price), 2) as avg_price,
				COUNT(DISTINCT user_id) as unique_customers
			FROM %s
			WHERE event_type = 'purchase'
			AND price IS NOT NULL
			GROUP BY category_code
			ORDER BY revenue DESC
			LIMIT 10`, table),
		models.QueryTypeBrandAnalysis: fmt.Sprintf(`
			SELECT
				COALESCE(brand, 'Unknown Brand') as brand,
				COUNT(*) as purchases,
				ROUND(SUM(price), 2) as revenue,
				ROUND(AVG(price), 2) as avg_price,
				COUNT(DISTINCT user_id) as customers
			FROM %s
			WHERE event_type = 'purchase'
			AND price IS NOT NULL
			GROUP BY brand
			ORDER BY revenue DESC
			LIMIT 10`, table),
	}

	return &Catalog{table: table, queries: queries}
}

// Table returns the schema-qualified fact table name.
func (c *Catalog) Table() string {
	return c.table
}

// Query returns the SQL template for queryType, or an UNKNOWN_QUERY_TYPE
// validation error naming the offending value.
func (c *Catalog) Query(queryType string) (string, error) {
	query, ok := c.queries[queryType]
	if !ok {
		return "", models.NewValidationError(models.CodeUnknownQueryType,
			fmt.Sprintf("unknown query type: %s", queryType)).
			WithMetadata("query_type", queryType)
	}
	return query, nil
}

// QueryTypes lists the recognized types in detection-priority order.
func (c *Catalog) QueryTypes() []string {
	return []string{
		models.QueryTypeRevenue,
		models.QueryTypeTopProducts,
		models.QueryTypeUserBehavior,
		models.QueryTypeCategoryPerformance,
		models.QueryTypeBrandAnalysis,
	}
}

// QueryDescriptions backs the analytics capability endpoint.
func (c *Catalog) QueryDescriptions() map[string]string {
	return map[string]string{
		models.QueryTypeRevenue:             "Total revenue, purchases, and customer metrics",
		models.QueryTypeTopProducts:         "Top 10 products by purchase count",
		models.QueryTypeUserBehavior:        "User behavior analysis across view, cart, and purchase events",
		models.QueryTypeCategoryPerformance: "Category performance metrics ranked by revenue",
		models.QueryTypeBrandAnalysis:       "Brand performance analysis ranked by revenue",
	}
}

// CustomerGrowthQuery shows month-over-month growth in purchasing customers.
func (c *Catalog) CustomerGrowthQuery() string {
	return fmt.Sprintf(`
		WITH monthly_customers AS (
			SELECT
				DATE_TRUNC('month', event_time) as month,
				COUNT(DISTINCT user_id) as new_customers
			FROM %s
			WHERE event_type = 'purchase'
			AND user_id IS NOT NULL
			GROUP BY DATE_TRUNC('month', event_time)
		)
		SELECT
			month,
			new_customers,
			LAG(new_customers) OVER (ORDER BY month) as prev_month_customers,
			CASE
				WHEN LAG(new_customers) OVER (ORDER BY month) = 0 OR LAG(new_customers) OVER (ORDER BY month) IS NULL
				THEN NULL
				ELSE ROUND(
					((new_customers - LAG(new_customers) OVER (ORDER BY month))::NUMERIC
					/ LAG(new_customers) OVER (ORDER BY month)) * 100, 2
				)
			END as growth_pct
		FROM monthly_customers
		ORDER BY month DESC
		LIMIT 12`, c.table)
}

// ConversionFunnelQuery tracks the view -> cart -> purchase journey with
// null-guarded rate division.
func (c *Catalog) ConversionFunnelQuery() string {
	return fmt.Sprintf(`
		WITH funnel_data AS (
			SELECT
				user_id,
				user_session,
				MAX(CASE WHEN event_type = 'view' THEN 1 ELSE 0 END) as viewed,
				MAX(CASE WHEN event_type = 'cart' THEN 1 ELSE 0 END) as added_to_cart,
				MAX(CASE WHEN event_type = 'purchase' THEN 1 ELSE 0 END) as purchased
			FROM %s
			WHERE user_id IS NOT NULL
			GROUP BY user_id, user_session
		)
		SELECT
			SUM(viewed) as total_views,
			SUM(added_to_cart) as total_cart_adds,
			SUM(purchased) as total_purchases,
			ROUND((SUM(added_to_cart)::NUMERIC / NULLIF(SUM(viewed), 0)) * 100, 2) as view_to_cart_rate,
			ROUND((SUM(purchased)::NUMERIC / NULLIF(SUM(added_to_cart), 0)) * 100, 2) as cart_to_purchase_rate,
			ROUND((SUM(purchased)::NUMERIC / NULLIF(SUM(viewed), 0)) * 100, 2) as overall_conversion_rate
		FROM funnel_data`, c.table)
}

// RevenueTimeSeriesQuery aggregates revenue per period with growth
// percentages. interval must be day, week, or month.
func (c *Catalog) RevenueTimeSeriesQuery(interval string) (string, error) {
	switch strings.ToLower(interval) {
	case "":
		interval = "day"
	case "day", "week", "month":
		interval = strings.ToLower(interval)
	default:
		return "", models.NewValidationError(models.CodeUnknownInsight,
			fmt.Sprintf("invalid interval: %s (must be day, week, or month)", interval))
	}

	return fmt.Sprintf(`
		WITH time_series AS (
			SELECT
				DATE_TRUNC('%s', event_time) as period,
				ROUND(SUM(price), 2) as revenue,
				COUNT(*) as transactions,
				COUNT(DISTINCT user_id) as customers
			FROM %s
			WHERE event_type = 'purchase'
			AND price IS NOT NULL
			GROUP BY DATE_TRUNC('%s', event_time)
		)
		SELECT
			period,
			revenue,
			transactions,
			customers,
			ROUND(revenue / NULLIF(transactions, 0), 2) as avg_order_value,
			LAG(revenue) OVER (ORDER BY period) as prev_period_revenue,
			ROUND(
				((revenue - LAG(revenue) OVER (ORDER BY period))::NUMERIC
				/ NULLIF(LAG(revenue) OVER (ORDER BY period), 0)) * 100,
				2
			) as revenue_growth_pct
		FROM time_series
		ORDER BY period DESC
		LIMIT 90`, interval, c.table, interval), nil
}
