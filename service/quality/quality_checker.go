/*
 * @module service/quality/quality_checker
 * @description 质量检查服务，编排四个维度的检查、异常检测、评分和报告落库
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 执行检查批次 -> 统计行数 -> 异常检测 -> 评分定级 -> 报告落库与导出
 * @rules 检查按固定维度顺序执行，存在ERROR级失败时整体判定为不健康
 * @dependencies gorm.io/gorm, service/store, github.com/google/uuid
 * @refs check_runner.go, anomaly_detector.go, scorer.go, service/report/
 */

package quality

import (
	"context"
	"log/slog"
	"time"

	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/service/store"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

var overallScoreGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "quality_overall_score",
	Help: "最近一次质量检查的总分",
})

// 行数统计覆盖的全部表，含基础表和汇总表
var countedTables = []string{
	"customers",
	"products",
	"orders",
	"customer_summary",
	"product_summary",
	"daily_sales_summary",
	"monthly_sales_summary",
}

// ReportSink 质量报告导出接口
type ReportSink interface {
	Write(report *models.QualityReport) error
}

// ReportPublisher 质量报告事件发布接口
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *models.QualityReport) error
}

// QualityChecker 质量检查服务
type QualityChecker struct {
	db        *gorm.DB
	store     store.Store
	runner    *CheckRunner
	detector  *AnomalyDetector
	scorer    Scorer
	sink      ReportSink
	publisher ReportPublisher
}

// NewQualityChecker 创建质量检查服务
func NewQualityChecker(db *gorm.DB, s store.Store, zscoreThreshold float64) *QualityChecker {
	return &QualityChecker{
		db:       db,
		store:    s,
		runner:   NewCheckRunner(s),
		detector: NewAnomalyDetector(s, zscoreThreshold),
		scorer:   PassRateScorer{},
	}
}

// SetSink 设置报告导出目标
func (c *QualityChecker) SetSink(sink ReportSink) {
	c.sink = sink
}

// SetPublisher 设置报告事件发布器
func (c *QualityChecker) SetPublisher(p ReportPublisher) {
	c.publisher = p
}

// SetScorer 替换评分策略
func (c *QualityChecker) SetScorer(s Scorer) {
	c.scorer = s
}

// RunAllChecks 执行一轮完整质量检查并生成报告
func (c *QualityChecker) RunAllChecks(ctx context.Context) (*models.QualityReport, error) {
	start := time.Now()
	slog.Info("开始质量检查")

	report := &models.QualityReport{
		ReportID:    uuid.New().String(),
		GeneratedAt: start,
		Dimensions:  make(map[string]models.DimensionResult),
	}

	batteries := AllBatteries()
	for _, dimension := range BatteryOrder() {
		dr := c.runner.RunBattery(ctx, dimension, batteries[dimension])
		report.Dimensions[dimension] = dr
		report.TotalChecks += dr.Passed + dr.Failed
		report.TotalPassed += dr.Passed
		report.TotalFailed += dr.Failed
		slog.Info("维度检查完成", "dimension", dimension,
			"passed", dr.Passed, "failed", dr.Failed, "score", dr.Score)
	}

	report.RowCounts = c.collectRowCounts(ctx)
	report.Issues = c.buildIssues(report)
	report.Anomalies = c.detector.RunAll(ctx)
	report.OverallScore = c.scorer.Score(report.Dimensions)
	report.Grade = Grade(report.OverallScore)
	report.Healthy = c.isHealthy(report)
	report.Duration = time.Since(start)
	overallScoreGauge.Set(report.OverallScore)

	slog.Info("质量检查完成",
		"total", report.TotalChecks, "passed", report.TotalPassed, "failed", report.TotalFailed,
		"score", report.OverallScore, "grade", report.Grade, "healthy", report.Healthy,
		"duration", report.Duration)

	if err := c.saveReport(report); err != nil {
		slog.Error("质量报告落库失败", "report_id", report.ReportID, "error", err)
	}
	if c.sink != nil {
		// 导出失败不影响检查结果
		if err := c.sink.Write(report); err != nil {
			slog.Error("质量报告导出失败", "report_id", report.ReportID, "error", err)
		}
	}
	if c.publisher != nil {
		if err := c.publisher.PublishReport(ctx, report); err != nil {
			slog.Error("质量报告事件发布失败", "report_id", report.ReportID, "error", err)
		}
	}

	return report, nil
}

// RunAnomalyDetection 单独执行异常检测
func (c *QualityChecker) RunAnomalyDetection(ctx context.Context) []models.AnomalyFinding {
	return c.detector.RunAll(ctx)
}

// collectRowCounts 统计各表行数，表不存在时记为0并告警
func (c *QualityChecker) collectRowCounts(ctx context.Context) map[string]int64 {
	counts := make(map[string]int64, len(countedTables))
	for _, table := range countedTables {
		count, err := c.store.TableCount(ctx, table)
		if err != nil {
			slog.Warn("表行数统计失败，记为0", "table", table, "error", err)
			counts[table] = 0
			continue
		}
		counts[table] = count
	}
	return counts
}

// buildIssues 将失败的检查归纳为问题清单
// 问题行数取检查实际值，占比按被检查表的行数计算
func (c *QualityChecker) buildIssues(report *models.QualityReport) []models.Issue {
	var issues []models.Issue
	for _, dimension := range BatteryOrder() {
		for _, r := range report.Dimensions[dimension].Results {
			if r.Status != models.StatusFailed {
				continue
			}
			count := cast.ToInt64(r.Actual)
			if count <= 0 {
				continue
			}

			var percentage float64
			if rows := report.RowCounts[r.Table]; rows > 0 {
				percentage = float64(count) / float64(rows) * 100
			}
			issues = append(issues, models.Issue{
				Type:            r.CheckName,
				Table:           r.Table,
				Column:          r.Column,
				Count:           count,
				Percentage:      percentage,
				Severity:        r.Severity,
				RemediationHint: r.Remediation,
			})
		}
	}
	return issues
}

// isHealthy 判断整体健康状态：不存在未通过的ERROR级检查
func (c *QualityChecker) isHealthy(report *models.QualityReport) bool {
	for _, dr := range report.Dimensions {
		for _, r := range dr.Results {
			if r.Status != models.StatusPassed && r.Severity == models.SeverityError {
				return false
			}
		}
	}
	return true
}

// saveReport 持久化质量报告记录
func (c *QualityChecker) saveReport(report *models.QualityReport) error {
	if c.db == nil {
		return nil
	}

	record := &models.QualityReportRecord{
		ID:           report.ReportID,
		GeneratedAt:  report.GeneratedAt,
		DurationMs:   report.Duration.Milliseconds(),
		TotalChecks:  report.TotalChecks,
		TotalPassed:  report.TotalPassed,
		TotalFailed:  report.TotalFailed,
		OverallScore: report.OverallScore,
		Grade:        report.Grade,
		Healthy:      report.Healthy,
		Dimensions:   models.ToJSONB(report.Dimensions),
		Issues:       models.ToJSONB(map[string]interface{}{"issues": report.Issues}),
		Anomalies:    models.ToJSONB(map[string]interface{}{"findings": report.Anomalies}),
		RowCounts:    models.ToJSONB(report.RowCounts),
	}
	return c.db.Create(record).Error
}

// GetReports 分页查询历史质量报告
func (c *QualityChecker) GetReports(page, size int) ([]models.QualityReportRecord, int64, error) {
	var records []models.QualityReportRecord
	var total int64

	if err := c.db.Model(&models.QualityReportRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size
	err := c.db.Order("generated_at DESC").Offset(offset).Limit(size).Find(&records).Error
	return records, total, err
}

// GetReport 按ID查询单个质量报告
func (c *QualityChecker) GetReport(id string) (*models.QualityReportRecord, error) {
	var record models.QualityReportRecord
	if err := c.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
