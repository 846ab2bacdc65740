/*
 * @module service/quality/check_catalog
 * @description 内置质量检查目录，按完整性、有效性、一致性、唯一性四个维度声明全部检查
 * @architecture 策略模式 - 声明式检查定义，由执行器统一运行
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 目录提供检查定义 -> 执行器逐项运行 -> 汇总器按维度打分
 * @rules 检查SQL必须返回单个标量，期望值恒为0，新增检查只需追加定义
 * @refs check_runner.go, quality_checker.go
 */

package quality

import "ecommerce-pipeline/service/models"

// CompletenessChecks 完整性检查：关键字段不允许为NULL
func CompletenessChecks() []models.CheckDefinition {
	return []models.CheckDefinition{
		{
			Name:        "customers_no_null_emails",
			Dimension:   models.DimensionCompleteness,
			Query:       "SELECT COUNT(*) FROM customers WHERE email IS NULL",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "customers",
			Column:      "email",
			Remediation: "回填缺失邮箱，并在采集端将邮箱设为必填字段",
		},
		{
			Name:        "customers_no_null_customer_ids",
			Dimension:   models.DimensionCompleteness,
			Query:       "SELECT COUNT(*) FROM customers WHERE customer_id IS NULL",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "customers",
			Column:      "customer_id",
			Remediation: "删除无主键的客户记录，并为customer_id添加NOT NULL约束",
		},
		{
			Name:        "products_no_null_product_names",
			Dimension:   models.DimensionCompleteness,
			Query:       "SELECT COUNT(*) FROM products WHERE product_name IS NULL",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "products",
			Column:      "product_name",
			Remediation: "从商品主数据补齐名称，或下架无名称商品",
		},
		{
			Name:        "products_no_null_prices",
			Dimension:   models.DimensionCompleteness,
			Query:       "SELECT COUNT(*) FROM products WHERE price IS NULL",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "products",
			Column:      "price",
			Remediation: "从定价系统回填售价，价格缺失的商品不应参与交易",
		},
		{
			Name:        "orders_no_null_order_ids",
			Dimension:   models.DimensionCompleteness,
			Query:       "SELECT COUNT(*) FROM orders WHERE order_id IS NULL",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "orders",
			Column:      "order_id",
			Remediation: "删除无主键的订单记录，并为order_id添加NOT NULL约束",
		},
		{
			Name:        "orders_no_null_total_amounts",
			Dimension:   models.DimensionCompleteness,
			Query:       "SELECT COUNT(*) FROM orders WHERE total_amount IS NULL",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "orders",
			Column:      "total_amount",
			Remediation: "按数量x单价-折扣重算订单总额",
		},
	}
}

// ValidityChecks 有效性检查：数值范围与格式
func ValidityChecks() []models.CheckDefinition {
	return []models.CheckDefinition{
		{
			Name:        "customers_age_in_range",
			Dimension:   models.DimensionValidity,
			Query:       "SELECT COUNT(*) FROM customers WHERE age < 18 OR age > 120",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "customers",
			Column:      "age",
			Remediation: "核对注册信息中的出生日期，修正超出18-120范围的年龄",
		},
		{
			Name:        "products_price_positive",
			Dimension:   models.DimensionValidity,
			Query:       "SELECT COUNT(*) FROM products WHERE price <= 0",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "products",
			Column:      "price",
			Remediation: "修正非正售价，并在定价系统增加价格下限校验",
		},
		{
			Name:        "orders_total_amount_positive",
			Dimension:   models.DimensionValidity,
			Query:       "SELECT COUNT(*) FROM orders WHERE total_amount <= 0",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "orders",
			Column:      "total_amount",
			Remediation: "核查非正金额订单的折扣逻辑，全额折扣订单应单独标记",
		},
		{
			Name:        "orders_quantity_positive",
			Dimension:   models.DimensionValidity,
			Query:       "SELECT COUNT(*) FROM orders WHERE quantity <= 0",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "orders",
			Column:      "quantity",
			Remediation: "修正非正数量订单，下单接口应拒绝数量小于1的请求",
		},
		{
			Name:        "customers_email_format",
			Dimension:   models.DimensionValidity,
			Query:       "SELECT COUNT(*) FROM customers WHERE email NOT LIKE '%@%.%'",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "customers",
			Column:      "email",
			Remediation: "对格式非法的邮箱触发重新验证流程",
		},
		{
			Name:        "orders_no_future_dates",
			Dimension:   models.DimensionValidity,
			Query:       "SELECT COUNT(*) FROM orders WHERE order_date > CURRENT_TIMESTAMP",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "orders",
			Column:      "order_date",
			Remediation: "检查下单链路的时钟与时区配置，修正未来时间的订单",
		},
	}
}

// ConsistencyChecks 一致性检查：外键引用与业务逻辑
func ConsistencyChecks() []models.CheckDefinition {
	return []models.CheckDefinition{
		{
			Name:      "orders_customer_fk_integrity",
			Dimension: models.DimensionConsistency,
			Query: `SELECT COUNT(*) FROM orders o
				LEFT JOIN customers c ON o.customer_id = c.customer_id
				WHERE c.customer_id IS NULL`,
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "orders",
			Column:      "customer_id",
			Remediation: "恢复缺失的客户记录，或归档引用失效客户的孤儿订单",
		},
		{
			Name:      "orders_product_fk_integrity",
			Dimension: models.DimensionConsistency,
			Query: `SELECT COUNT(*) FROM orders o
				LEFT JOIN products p ON o.product_id = p.product_id
				WHERE p.product_id IS NULL`,
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "orders",
			Column:      "product_id",
			Remediation: "恢复缺失的商品记录，或归档引用失效商品的孤儿订单",
		},
		{
			// 折扣造成的偏差允许1%容差
			Name:      "orders_amount_matches_price",
			Dimension: models.DimensionConsistency,
			Query: `SELECT COUNT(*) FROM orders o
				JOIN products p ON o.product_id = p.product_id
				WHERE ABS(o.total_amount - (o.quantity * p.price)) > (o.quantity * p.price * 0.01)`,
			Expected:    0,
			Severity:    models.SeverityWarning,
			Table:       "orders",
			Column:      "total_amount",
			Remediation: "复核折扣计算逻辑，确认订单总额与数量x单价的偏差来源",
		},
		{
			Name:      "customer_summary_row_count",
			Dimension: models.DimensionConsistency,
			Query: `SELECT ABS(
				(SELECT COUNT(DISTINCT customer_id) FROM orders WHERE order_status = 'Delivered') -
				(SELECT COUNT(*) FROM customer_summary)
			)`,
			Expected:    0,
			Severity:    models.SeverityWarning,
			Table:       "customer_summary",
			Remediation: "重新执行汇总表刷新，使客户汇总与订单明细对齐",
		},
	}
}

// UniquenessChecks 唯一性检查：主键与业务键去重
func UniquenessChecks() []models.CheckDefinition {
	return []models.CheckDefinition{
		{
			Name:        "customers_no_duplicate_ids",
			Dimension:   models.DimensionUniqueness,
			Query:       "SELECT COUNT(*) - COUNT(DISTINCT customer_id) FROM customers",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "customers",
			Column:      "customer_id",
			Remediation: "合并重复客户记录，并为customer_id添加唯一约束",
		},
		{
			Name:        "products_no_duplicate_ids",
			Dimension:   models.DimensionUniqueness,
			Query:       "SELECT COUNT(*) - COUNT(DISTINCT product_id) FROM products",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "products",
			Column:      "product_id",
			Remediation: "合并重复商品记录，并为product_id添加唯一约束",
		},
		{
			Name:        "orders_no_duplicate_ids",
			Dimension:   models.DimensionUniqueness,
			Query:       "SELECT COUNT(*) - COUNT(DISTINCT order_id) FROM orders",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "orders",
			Column:      "order_id",
			Remediation: "排查加载环节的重复写入，删除重复订单行",
		},
		{
			Name:        "customers_no_duplicate_emails",
			Dimension:   models.DimensionUniqueness,
			Query:       "SELECT COUNT(*) - COUNT(DISTINCT email) FROM customers",
			Expected:    0,
			Severity:    models.SeverityError,
			Table:       "customers",
			Column:      "email",
			Remediation: "合并共用邮箱的客户账户，或确认是否为家庭共享账户",
		},
	}
}

// AllBatteries 按维度顺序返回全部检查组
func AllBatteries() map[string][]models.CheckDefinition {
	return map[string][]models.CheckDefinition{
		models.DimensionCompleteness: CompletenessChecks(),
		models.DimensionValidity:     ValidityChecks(),
		models.DimensionConsistency:  ConsistencyChecks(),
		models.DimensionUniqueness:   UniquenessChecks(),
	}
}

// BatteryOrder 维度执行顺序
func BatteryOrder() []string {
	return []string{
		models.DimensionCompleteness,
		models.DimensionValidity,
		models.DimensionConsistency,
		models.DimensionUniqueness,
	}
}
