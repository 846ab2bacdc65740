/*
 * @module service/quality/check_runner
 * @description 质量检查执行器，执行单项检查并保证单项失败不中断整批检查
 * @architecture 策略模式 - 检查定义与执行解耦
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 接收检查定义 -> 执行标量SQL -> 对比期望值 -> 记录结果与指标
 * @rules 查询异常不向上传播，结果状态记为ERROR并计入失败数
 * @dependencies service/store, github.com/spf13/cast, github.com/prometheus/client_golang
 * @refs check_catalog.go, quality_checker.go
 */

package quality

import (
	"context"
	"log/slog"
	"time"

	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/service/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/cast"
)

var (
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quality_checks_total",
		Help: "质量检查执行总数，按维度和状态分类",
	}, []string{"dimension", "status"})

	checkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quality_check_duration_seconds",
		Help:    "单项质量检查执行耗时",
		Buckets: prometheus.DefBuckets,
	})
)

// CheckRunner 质量检查执行器
type CheckRunner struct {
	store store.Store
}

// NewCheckRunner 创建质量检查执行器
func NewCheckRunner(s store.Store) *CheckRunner {
	return &CheckRunner{store: s}
}

// RunCheck 执行单项质量检查
// 查询异常不会中断调用方的批次循环，异常结果状态为ERROR并计入失败
func (r *CheckRunner) RunCheck(ctx context.Context, def models.CheckDefinition) models.CheckResult {
	start := time.Now()
	result := models.CheckResult{
		CheckName:   def.Name,
		Dimension:   def.Dimension,
		Severity:    def.Severity,
		Expected:    def.Expected,
		Table:       def.Table,
		Column:      def.Column,
		Remediation: def.Remediation,
		Timestamp:   start,
	}

	raw, err := r.store.QueryScalar(ctx, def.Query)
	checkDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		result.Status = models.StatusError
		result.Error = err.Error()
		checksTotal.WithLabelValues(def.Dimension, models.StatusError).Inc()
		slog.Error("质量检查执行异常", "check", def.Name, "dimension", def.Dimension, "error", err)
		return result
	}

	actual, castErr := cast.ToInt64E(raw)
	if castErr != nil {
		result.Status = models.StatusError
		result.Error = castErr.Error()
		result.Actual = raw
		checksTotal.WithLabelValues(def.Dimension, models.StatusError).Inc()
		slog.Error("质量检查结果类型异常", "check", def.Name, "value", raw, "error", castErr)
		return result
	}

	result.Actual = actual
	if actual == def.Expected {
		result.Status = models.StatusPassed
		slog.Debug("质量检查通过", "check", def.Name, "actual", actual)
	} else {
		result.Status = models.StatusFailed
		slog.Warn("质量检查未通过", "check", def.Name,
			"severity", def.Severity, "expected", def.Expected, "actual", actual)
	}
	checksTotal.WithLabelValues(def.Dimension, result.Status).Inc()

	return result
}

// RunBattery 按顺序执行一组检查并汇总维度结果
func (r *CheckRunner) RunBattery(ctx context.Context, dimension string, defs []models.CheckDefinition) models.DimensionResult {
	dr := models.DimensionResult{Dimension: dimension}
	for _, def := range defs {
		result := r.RunCheck(ctx, def)
		if result.Status == models.StatusPassed {
			dr.Passed++
		} else {
			dr.Failed++
		}
		dr.Results = append(dr.Results, result)
	}
	if total := dr.Passed + dr.Failed; total > 0 {
		dr.Score = float64(dr.Passed) / float64(total) * 100
	} else {
		dr.Score = 100
	}
	return dr
}
