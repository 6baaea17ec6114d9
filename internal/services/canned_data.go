package services

import (
	"strings"

	"aria-analytics-pipeline/internal/models"
)

// cannedResult serves simulated mode. Matching runs on the lowercased SQL
// text, so callers get the same deterministic fixture for a given query
// shape regardless of schema prefix or whitespace.
func cannedResult(sql string) *models.QueryResult {
	lower := strings.ToLower(sql)

	switch {
	case strings.Contains(lower, "sum(viewed)") && strings.Contains(lower, "overall_conversion_rate"):
		return &models.QueryResult{
			Columns: []string{"total_views", "total_cart_adds", "total_purchases", "view_to_cart_rate", "cart_to_purchase_rate", "overall_conversion_rate"},
			Rows: []map[string]any{
				{"total_views": 145623, "total_cart_adds": 28945, "total_purchases": 12547, "view_to_cart_rate": 19.88, "cart_to_purchase_rate": 43.35, "overall_conversion_rate": 8.62},
			},
		}

	case strings.Contains(lower, "monthly_customers") && strings.Contains(lower, "growth_pct"):
		return &models.QueryResult{
			Columns: []string{"month", "new_customers", "prev_month_customers", "growth_pct"},
			Rows: []map[string]any{
				{"month": "2024-06-01", "new_customers": 1684, "prev_month_customers": 1521, "growth_pct": 10.72},
				{"month": "2024-05-01", "new_customers": 1521, "prev_month_customers": 1389, "growth_pct": 9.50},
				{"month": "2024-04-01", "new_customers": 1389, "prev_month_customers": 1456, "growth_pct": -4.60},
				{"month": "2024-03-01", "new_customers": 1456, "prev_month_customers": 1203, "growth_pct": 21.03},
				{"month": "2024-02-01", "new_customers": 1203, "prev_month_customers": 1098, "growth_pct": 9.56},
				{"month": "2024-01-01", "new_customers": 1098, "prev_month_customers": nil, "growth_pct": nil},
			},
		}

	case strings.Contains(lower, "time_series") && strings.Contains(lower, "revenue_growth_pct"):
		return &models.QueryResult{
			Columns: []string{"period", "revenue", "transactions", "customers", "avg_order_value", "prev_period_revenue", "revenue_growth_pct"},
			Rows: []map[string]any{
				{"period": "2024-06-30", "revenue": 98234.50, "transactions": 423, "customers": 389, "avg_order_value": 232.23, "prev_period_revenue": 91450.25, "revenue_growth_pct": 7.42},
				{"period": "2024-06-29", "revenue": 91450.25, "transactions": 401, "customers": 367, "avg_order_value": 228.06, "prev_period_revenue": 104320.00, "revenue_growth_pct": -12.34},
				{"period": "2024-06-28", "revenue": 104320.00, "transactions": 456, "customers": 412, "avg_order_value": 228.77, "prev_period_revenue": 87654.75, "revenue_growth_pct": 19.01},
				{"period": "2024-06-27", "revenue": 87654.75, "transactions": 378, "customers": 345, "avg_order_value": 231.89, "prev_period_revenue": nil, "revenue_growth_pct": nil},
			},
		}

	// Checked before the revenue pattern: the top products SQL also
	// aliases SUM(price) to total_revenue.
	case strings.Contains(lower, "product_id") && strings.Contains(lower, "purchase_count") && strings.Contains(lower, "ecommerce"):
		return &models.QueryResult{
			Columns: []string{"product_id", "brand", "category_code", "purchase_count", "total_revenue", "avg_price"},
			Rows: []map[string]any{
				{"product_id": 1004767, "brand": "Samsung", "category_code": "electronics.smartphone", "purchase_count": 847, "total_revenue": 846153.00, "avg_price": 999.00},
				{"product_id": 1004856, "brand": "Apple", "category_code": "electronics.smartphone", "purchase_count": 723, "total_revenue": 866760.00, "avg_price": 1199.00},
				{"product_id": 1005115, "brand": "Sony", "category_code": "electronics.audio.headphone", "purchase_count": 642, "total_revenue": 160500.00, "avg_price": 250.00},
				{"product_id": 1004833, "brand": "LG", "category_code": "electronics.tablet", "purchase_count": 521, "total_revenue": 260500.00, "avg_price": 500.00},
				{"product_id": 1004545, "brand": "Canon", "category_code": "electronics.camera", "purchase_count": 445, "total_revenue": 355600.00, "avg_price": 799.00},
				{"product_id": 1004258, "brand": "Dell", "category_code": "computers.notebook", "purchase_count": 398, "total_revenue": 557200.00, "avg_price": 1400.00},
				{"product_id": 1004912, "brand": "Bose", "category_code": "electronics.audio.speaker", "purchase_count": 367, "total_revenue": 110100.00, "avg_price": 300.00},
				{"product_id": 1004623, "brand": "HP", "category_code": "computers.notebook", "purchase_count": 334, "total_revenue": 400800.00, "avg_price": 1200.00},
				{"product_id": 1005234, "brand": "Xiaomi", "category_code": "electronics.smartphone", "purchase_count": 312, "total_revenue": 155688.00, "avg_price": 499.00},
				{"product_id": 1004789, "brand": "Lenovo", "category_code": "computers.notebook", "purchase_count": 289, "total_revenue": 318890.00, "avg_price": 1103.00},
			},
		}

	case strings.Contains(lower, "sum(price)") && strings.Contains(lower, "total_revenue") && strings.Contains(lower, "ecommerce"):
		return &models.QueryResult{
			Columns: []string{"total_revenue", "total_purchases", "unique_customers", "avg_revenue_per_customer"},
			Rows: []map[string]any{
				{"total_revenue": 2847563.42, "total_purchases": 12547, "unique_customers": 4821, "avg_revenue_per_customer": 590.58},
			},
		}

	case strings.Contains(lower, "event_type") && strings.Contains(lower, "event_count") && strings.Contains(lower, "ecommerce"):
		return &models.QueryResult{
			Columns: []string{"event_type", "event_count", "unique_users", "unique_sessions"},
			Rows: []map[string]any{
				{"event_type": "view", "event_count": 145623, "unique_users": 18947, "unique_sessions": 23456},
				{"event_type": "cart", "event_count": 28945, "unique_users": 12341, "unique_sessions": 15234},
				{"event_type": "purchase", "event_count": 12547, "unique_users": 4821, "unique_sessions": 6234},
			},
		}

	case strings.Contains(lower, "category_code") && strings.Contains(lower, "group by category_code") && strings.Contains(lower, "ecommerce"):
		return &models.QueryResult{
			Columns: []string{"category_code", "purchases", "revenue", "avg_price", "unique_customers"},
			Rows: []map[string]any{
				{"category_code": "electronics.smartphone", "purchases": 3245, "revenue": 3089775.00, "avg_price": 952.00, "unique_customers": 2890},
				{"category_code": "computers.notebook", "purchases": 2156, "revenue": 2894560.00, "avg_price": 1342.00, "unique_customers": 1987},
				{"category_code": "electronics.tablet", "purchases": 1834, "revenue": 1100400.00, "avg_price": 600.00, "unique_customers": 1654},
				{"category_code": "electronics.audio.headphone", "purchases": 1567, "revenue": 391750.00, "avg_price": 250.00, "unique_customers": 1423},
				{"category_code": "electronics.camera", "purchases": 1342, "revenue": 1072258.00, "avg_price": 799.00, "unique_customers": 1198},
				{"category_code": "electronics.audio.speaker", "purchases": 1123, "revenue": 336900.00, "avg_price": 300.00, "unique_customers": 1034},
				{"category_code": "appliances.kitchen.refrigerator", "purchases": 845, "revenue": 760500.00, "avg_price": 900.00, "unique_customers": 789},
				{"category_code": "electronics.tv", "purchases": 756, "revenue": 832560.00, "avg_price": 1101.00, "unique_customers": 698},
				{"category_code": "appliances.kitchen.washer", "purchases": 634, "revenue": 443800.00, "avg_price": 700.00, "unique_customers": 587},
				{"category_code": "computers.desktop", "purchases": 567, "revenue": 623700.00, "avg_price": 1100.00, "unique_customers": 521},
			},
		}

	case strings.Contains(lower, "brand") && strings.Contains(lower, "group by brand") && strings.Contains(lower, "ecommerce"):
		return &models.QueryResult{
			Columns: []string{"brand", "purchases", "revenue", "avg_price", "customers"},
			Rows: []map[string]any{
				{"brand": "Samsung", "purchases": 2847, "revenue": 2561300.00, "avg_price": 899.75, "customers": 2456},
				{"brand": "Apple", "purchases": 2134, "revenue": 2987600.00, "avg_price": 1400.00, "customers": 1987},
				{"brand": "Sony", "purchases": 1756, "revenue": 1404800.00, "avg_price": 800.00, "customers": 1543},
				{"brand": "LG", "purchases": 1523, "revenue": 1218400.00, "avg_price": 800.00, "customers": 1398},
				{"brand": "Dell", "purchases": 1398, "revenue": 1957200.00, "avg_price": 1400.00, "customers": 1256},
				{"brand": "HP", "purchases": 1267, "revenue": 1520400.00, "avg_price": 1200.00, "customers": 1134},
				{"brand": "Xiaomi", "purchases": 1145, "revenue": 571455.00, "avg_price": 499.00, "customers": 1045},
				{"brand": "Canon", "purchases": 987, "revenue": 788613.00, "avg_price": 799.00, "customers": 897},
				{"brand": "Bose", "purchases": 845, "revenue": 253500.00, "avg_price": 300.00, "customers": 765},
				{"brand": "Lenovo", "purchases": 756, "revenue": 833868.00, "avg_price": 1103.00, "customers": 689},
			},
		}

	default:
		return &models.QueryResult{
			Columns: []string{"message"},
			Rows: []map[string]any{
				{"message": "Simulated data: query pattern not recognized. Add a pattern to cannedResult for realistic results."},
			},
		}
	}
}
