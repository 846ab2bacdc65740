/*
 * @module service/aggregation/aggregator
 * @description 汇总表刷新服务，重建客户、商品、日度和月度四张汇总表
 * @architecture 分层架构 - 数据处理层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 删除旧汇总表 -> CREATE TABLE AS重建 -> 创建索引 -> 汇总刷新结果
 * @rules 单表刷新失败不中断其余表的刷新，汇总只统计已交付订单
 * @dependencies service/store, context
 * @refs service/quality/, service/scheduler/
 */

package aggregation

import (
	"context"
	"log/slog"
	"time"

	"ecommerce-pipeline/service/store"
)

// aggregateDefinition 单张汇总表的重建语句
type aggregateDefinition struct {
	table      string
	statements []string
}

// 重建顺序固定，客户和商品汇总在前，时间序列汇总在后
var aggregateDefinitions = []aggregateDefinition{
	{
		table: "customer_summary",
		statements: []string{
			"DROP TABLE IF EXISTS customer_summary CASCADE",
			`CREATE TABLE customer_summary AS
			SELECT
				c.customer_id,
				c.first_name || ' ' || c.last_name AS customer_name,
				c.email,
				c.city,
				c.state,
				COUNT(o.order_id) AS total_orders,
				COALESCE(SUM(o.total_amount), 0) AS total_spent,
				COALESCE(AVG(o.total_amount), 0) AS avg_order_value,
				MIN(o.order_date) AS first_order_date,
				MAX(o.order_date) AS last_order_date,
				CURRENT_DATE - MAX(o.order_date)::DATE AS days_since_last_order,
				COUNT(DISTINCT o.product_id) AS unique_products_purchased,
				CASE
					WHEN MAX(o.order_date) >= CURRENT_DATE - INTERVAL '30 days' THEN 'Active'
					WHEN MAX(o.order_date) >= CURRENT_DATE - INTERVAL '90 days' THEN 'At Risk'
					ELSE 'Churned'
				END AS customer_status,
				CURRENT_TIMESTAMP AS last_updated
			FROM customers c
			LEFT JOIN orders o ON c.customer_id = o.customer_id
			WHERE o.order_status = 'Delivered'
			GROUP BY c.customer_id, c.first_name, c.last_name, c.email, c.city, c.state
			ORDER BY total_spent DESC`,
			"CREATE INDEX idx_customer_summary_total_spent ON customer_summary(total_spent DESC)",
			"CREATE INDEX idx_customer_summary_status ON customer_summary(customer_status)",
			"CREATE INDEX idx_customer_summary_city ON customer_summary(city)",
		},
	},
	{
		table: "product_summary",
		statements: []string{
			"DROP TABLE IF EXISTS product_summary CASCADE",
			`CREATE TABLE product_summary AS
			SELECT
				p.product_id,
				p.product_name,
				p.category,
				p.subcategory,
				p.brand,
				p.price,
				p.cost,
				COUNT(DISTINCT o.order_id) AS times_sold,
				SUM(o.quantity) AS total_units_sold,
				ROUND(SUM(o.total_amount), 2) AS total_revenue,
				ROUND(SUM(o.quantity * (p.price - p.cost)), 2) AS total_profit,
				ROUND(AVG(o.quantity), 2) AS avg_quantity_per_order,
				ROUND(AVG(o.total_amount), 2) AS avg_order_value,
				MAX(o.order_date) AS last_sold_date,
				MIN(o.order_date) AS first_sold_date,
				COUNT(DISTINCT o.customer_id) AS unique_customers,
				ROUND(((SUM(o.total_amount) - SUM(o.quantity * p.cost)) / NULLIF(SUM(o.total_amount), 0) * 100), 2) AS profit_margin_pct,
				CURRENT_TIMESTAMP AS last_updated
			FROM products p
			LEFT JOIN orders o ON p.product_id = o.product_id
			WHERE o.order_status = 'Delivered' OR o.order_id IS NULL
			GROUP BY p.product_id, p.product_name, p.category, p.subcategory, p.brand, p.price, p.cost
			ORDER BY total_revenue DESC`,
			"CREATE INDEX idx_product_summary_revenue ON product_summary(total_revenue DESC)",
			"CREATE INDEX idx_product_summary_category ON product_summary(category)",
		},
	},
	{
		table: "daily_sales_summary",
		statements: []string{
			"DROP TABLE IF EXISTS daily_sales_summary CASCADE",
			`CREATE TABLE daily_sales_summary AS
			SELECT
				DATE(o.order_date) AS sale_date,
				COUNT(DISTINCT o.order_id) AS total_orders,
				COUNT(DISTINCT o.customer_id) AS unique_customers,
				SUM(o.quantity) AS total_units_sold,
				SUM(o.total_amount) AS total_revenue,
				ROUND(AVG(o.total_amount), 2) AS avg_order_value,
				MIN(o.total_amount) AS min_order_value,
				MAX(o.total_amount) AS max_order_value,
				COUNT(DISTINCT o.product_id) AS products_sold,
				CURRENT_TIMESTAMP AS last_updated
			FROM orders o
			WHERE o.order_status = 'Delivered'
			GROUP BY DATE(o.order_date)
			ORDER BY sale_date DESC`,
			"CREATE INDEX idx_daily_sales_date ON daily_sales_summary(sale_date DESC)",
		},
	},
	{
		table: "monthly_sales_summary",
		statements: []string{
			"DROP TABLE IF EXISTS monthly_sales_summary CASCADE",
			`CREATE TABLE monthly_sales_summary AS
			SELECT
				DATE_TRUNC('month', o.order_date)::DATE AS month_start,
				TO_CHAR(DATE_TRUNC('month', o.order_date), 'YYYY-MM') AS month,
				COUNT(DISTINCT o.order_id) AS total_orders,
				COUNT(DISTINCT o.customer_id) AS unique_customers,
				SUM(o.quantity) AS total_units_sold,
				ROUND(SUM(o.total_amount), 2) AS total_revenue,
				ROUND(AVG(o.total_amount), 2) AS avg_order_value,
				COUNT(DISTINCT o.product_id) AS products_sold,
				ROUND(
					(SUM(o.total_amount) - LAG(SUM(o.total_amount))
					 OVER (ORDER BY DATE_TRUNC('month', o.order_date)))
					/ NULLIF(LAG(SUM(o.total_amount)) OVER (ORDER BY DATE_TRUNC('month', o.order_date)), 0) * 100, 2
				) AS revenue_growth_pct,
				CURRENT_TIMESTAMP AS last_updated
			FROM orders o
			WHERE o.order_status = 'Delivered'
			GROUP BY DATE_TRUNC('month', o.order_date)
			ORDER BY month_start DESC`,
			"CREATE INDEX idx_monthly_sales_month ON monthly_sales_summary(month_start DESC)",
		},
	},
}

// TableResult 单张汇总表的刷新结果
type TableResult struct {
	Table    string        `json:"table"`
	Success  bool          `json:"success"`
	RowCount int64         `json:"row_count"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// RefreshSummary 一轮汇总刷新的整体结果
type RefreshSummary struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []TableResult `json:"results"`
	Duration  time.Duration `json:"duration"`
}

// Aggregator 汇总表刷新服务
type Aggregator struct {
	store store.Store
}

// NewAggregator 创建汇总表刷新服务
func NewAggregator(s store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// RefreshAll 重建全部汇总表
// 单表失败记录错误后继续刷新剩余表
func (a *Aggregator) RefreshAll(ctx context.Context) *RefreshSummary {
	start := time.Now()
	summary := &RefreshSummary{}

	for _, def := range aggregateDefinitions {
		result := a.refreshTable(ctx, def)
		if result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}

	summary.Duration = time.Since(start)
	slog.Info("汇总表刷新完成", "succeeded", summary.Succeeded,
		"failed", summary.Failed, "duration", summary.Duration)
	return summary
}

// refreshTable 重建单张汇总表
func (a *Aggregator) refreshTable(ctx context.Context, def aggregateDefinition) TableResult {
	start := time.Now()
	result := TableResult{Table: def.table}

	for _, stmt := range def.statements {
		if _, err := a.store.Exec(ctx, stmt); err != nil {
			result.Error = err.Error()
			result.Duration = time.Since(start)
			slog.Error("汇总表刷新失败", "table", def.table, "error", err)
			return result
		}
	}

	count, err := a.store.TableCount(ctx, def.table)
	if err != nil {
		slog.Warn("汇总表行数统计失败", "table", def.table, "error", err)
	}

	result.Success = true
	result.RowCount = count
	result.Duration = time.Since(start)
	slog.Info("汇总表已重建", "table", def.table, "rows", count, "duration", result.Duration)
	return result
}
