/*
 * @module service/quality/anomaly_detector
 * @description 统计异常检测器，基于Z-score方法和业务规则识别订单、客户与销售数据中的异常
 * @architecture 策略模式 - 多个检测器顺序执行，单个检测器失败不影响其他检测器
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 查询样本数据 -> 计算Z-score -> 筛选离群点 -> 按值排序取前5 -> 汇总发现
 * @rules 标准差为0时直接返回空结果，检测器异常只记录日志不中断整轮检测
 * @dependencies service/store, github.com/spf13/cast
 * @refs quality_checker.go
 */

package quality

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/service/store"

	"github.com/spf13/cast"
)

// 固定阈值：客户消费和日销售的离群判定与订单金额独立
const (
	customerSpendingThreshold = 2.5
	dailySalesThreshold       = 2.0
	highQuantityLimit         = 5
	highValueOrderLimit       = 200000
	frequentCustomerLimit     = 20
	topFindings               = 5
)

// Sample 异常检测样本
type Sample struct {
	ID    string
	Label string
	Value float64
}

// Outlier 离群样本及其Z-score
type Outlier struct {
	Sample
	ZScore float64
}

// ZScoreOutliers 使用Z-score方法检测离群样本
// 使用样本标准差（n-1），标准差为0时返回空结果
func ZScoreOutliers(samples []Sample, threshold float64) []Outlier {
	if len(samples) < 2 {
		return nil
	}

	var sum float64
	for _, s := range samples {
		sum += s.Value
	}
	mean := sum / float64(len(samples))

	var sqSum float64
	for _, s := range samples {
		d := s.Value - mean
		sqSum += d * d
	}
	std := math.Sqrt(sqSum / float64(len(samples)-1))
	if std == 0 {
		return nil
	}

	var outliers []Outlier
	for _, s := range samples {
		z := math.Abs((s.Value - mean) / std)
		if z > threshold {
			outliers = append(outliers, Outlier{Sample: s, ZScore: z})
		}
	}
	return outliers
}

// AnomalyDetector 异常检测器
type AnomalyDetector struct {
	store           store.Store
	zscoreThreshold float64
}

// NewAnomalyDetector 创建异常检测器
func NewAnomalyDetector(s store.Store, zscoreThreshold float64) *AnomalyDetector {
	return &AnomalyDetector{store: s, zscoreThreshold: zscoreThreshold}
}

// RunAll 顺序执行全部异常检测
// 单个检测器失败只记录日志，剩余检测器继续执行
func (d *AnomalyDetector) RunAll(ctx context.Context) []models.AnomalyFinding {
	var findings []models.AnomalyFinding

	detectors := []struct {
		name string
		fn   func(context.Context) ([]models.AnomalyFinding, error)
	}{
		{"order_amount", d.detectOrderAmounts},
		{"order_quantity", d.detectQuantities},
		{"customer_spending", d.detectCustomerSpending},
		{"daily_sales", d.detectDailySales},
		{"business_rules", d.detectBusinessRules},
	}

	for _, det := range detectors {
		result, err := det.fn(ctx)
		if err != nil {
			slog.Error("异常检测器执行失败", "detector", det.name, "error", err)
			continue
		}
		slog.Info("异常检测完成", "detector", det.name, "findings", len(result))
		findings = append(findings, result...)
	}

	return findings
}

// detectOrderAmounts 检测已交付订单中的异常金额
func (d *AnomalyDetector) detectOrderAmounts(ctx context.Context) ([]models.AnomalyFinding, error) {
	samples, err := d.querySamples(ctx,
		`SELECT order_id, total_amount FROM orders WHERE order_status = 'Delivered'`)
	if err != nil {
		return nil, err
	}

	outliers := ZScoreOutliers(samples, d.zscoreThreshold)
	return d.outlierFindings(outliers, "zscore_order_amount", "order",
		fmt.Sprintf("订单金额超过均值%.1f个标准差", d.zscoreThreshold)), nil
}

// detectQuantities 检测大宗采购订单（数量大于5）
func (d *AnomalyDetector) detectQuantities(ctx context.Context) ([]models.AnomalyFinding, error) {
	_, rows, err := d.store.QueryRows(ctx, fmt.Sprintf(
		`SELECT o.order_id, p.product_name, o.quantity
		 FROM orders o
		 JOIN products p ON o.product_id = p.product_id
		 WHERE o.order_status = 'Delivered' AND o.quantity > %d
		 ORDER BY o.quantity DESC`, highQuantityLimit))
	if err != nil {
		return nil, err
	}

	var findings []models.AnomalyFinding
	for i, row := range rows {
		if i >= topFindings {
			break
		}
		findings = append(findings, models.AnomalyFinding{
			Detector:    "rule_high_quantity",
			Severity:    models.SeverityInfo,
			EntityType:  "order",
			EntityID:    cast.ToString(row[0]),
			Value:       cast.ToFloat64(row[2]),
			Description: "可能的批量采购订单",
			Details: map[string]interface{}{
				"product_name": cast.ToString(row[1]),
				"total_count":  len(rows),
			},
		})
	}
	return findings, nil
}

// detectCustomerSpending 检测消费异常的客户
func (d *AnomalyDetector) detectCustomerSpending(ctx context.Context) ([]models.AnomalyFinding, error) {
	samples, err := d.querySamples(ctx,
		`SELECT customer_id, total_spent FROM customer_summary`)
	if err != nil {
		return nil, err
	}

	outliers := ZScoreOutliers(samples, customerSpendingThreshold)
	return d.outlierFindings(outliers, "zscore_customer_spending", "customer",
		"客户消费额显著高于整体水平"), nil
}

// detectDailySales 检测日销售额异常波动
func (d *AnomalyDetector) detectDailySales(ctx context.Context) ([]models.AnomalyFinding, error) {
	samples, err := d.querySamples(ctx,
		`SELECT sale_date, total_revenue FROM daily_sales_summary ORDER BY sale_date DESC`)
	if err != nil {
		return nil, err
	}

	outliers := ZScoreOutliers(samples, dailySalesThreshold)
	return d.outlierFindings(outliers, "zscore_daily_sales", "sale_date",
		"当日销售额异常波动"), nil
}

// detectBusinessRules 检测业务规则违反
func (d *AnomalyDetector) detectBusinessRules(ctx context.Context) ([]models.AnomalyFinding, error) {
	var findings []models.AnomalyFinding

	rules := []struct {
		detector    string
		severity    string
		query       string
		description string
	}{
		{
			detector:    "rule_high_value_order",
			severity:    models.SeverityWarning,
			query: fmt.Sprintf(
				"SELECT COUNT(*) FROM orders WHERE total_amount > %d AND order_status = 'Delivered'",
				highValueOrderLimit),
			description: "超高金额已交付订单，建议人工复核",
		},
		{
			detector:    "rule_frequent_customer",
			severity:    models.SeverityInfo,
			query: fmt.Sprintf(
				"SELECT COUNT(*) FROM customer_summary WHERE total_orders > %d",
				frequentCustomerLimit),
			description: "高频下单客户，可纳入会员计划",
		},
		{
			// 零金额订单始终视为严重缺陷
			detector:    "rule_zero_revenue_order",
			severity:    models.SeverityError,
			query:       "SELECT COUNT(*) FROM orders WHERE total_amount = 0",
			description: "零金额订单，属于数据质量缺陷",
		},
	}

	for _, rule := range rules {
		raw, err := d.store.QueryScalar(ctx, rule.query)
		if err != nil {
			return nil, err
		}
		count := cast.ToInt64(raw)
		if count == 0 {
			continue
		}
		findings = append(findings, models.AnomalyFinding{
			Detector:    rule.detector,
			Severity:    rule.severity,
			EntityType:  "aggregate",
			EntityID:    rule.detector,
			Value:       float64(count),
			Description: rule.description,
			Details:     map[string]interface{}{"count": count},
		})
	}

	return findings, nil
}

// querySamples 执行两列查询（标识列+数值列）并构建样本集
func (d *AnomalyDetector) querySamples(ctx context.Context, query string) ([]Sample, error) {
	_, rows, err := d.store.QueryRows(ctx, query)
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(rows))
	for _, row := range rows {
		value, err := cast.ToFloat64E(row[1])
		if err != nil {
			// 数值列中的NULL样本跳过，不参与统计
			continue
		}
		samples = append(samples, Sample{ID: cast.ToString(row[0]), Value: value})
	}
	return samples, nil
}

// outlierFindings 将离群样本按值降序排列，取前5生成异常发现
func (d *AnomalyDetector) outlierFindings(outliers []Outlier, detector, entityType, description string) []models.AnomalyFinding {
	sort.Slice(outliers, func(i, j int) bool {
		return outliers[i].Value > outliers[j].Value
	})

	var findings []models.AnomalyFinding
	for i, o := range outliers {
		if i >= topFindings {
			break
		}
		findings = append(findings, models.AnomalyFinding{
			Detector:    detector,
			Severity:    models.SeverityInfo,
			EntityType:  entityType,
			EntityID:    o.ID,
			Value:       o.Value,
			ZScore:      o.ZScore,
			Description: description,
			Details:     map[string]interface{}{"total_count": len(outliers)},
		})
	}
	return findings
}
