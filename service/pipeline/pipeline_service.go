/*
 * @module service/pipeline/pipeline_service
 * @description 管道编排服务，串联数据生成、加载、汇总刷新和质量检查四个阶段并记录运行历史
 * @architecture 分层架构 - 业务编排层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 生成CSV -> 加载入库 -> 刷新汇总表 -> 质量检查，每个阶段留存运行记录
 * @rules 阶段按固定顺序执行，前置阶段失败时终止整条管道
 * @dependencies gorm.io/gorm, service/generator, service/ingestion, service/aggregation, service/quality
 * @refs api/controllers/pipeline_controller.go, service/scheduler/
 */

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ecommerce-pipeline/service/aggregation"
	"ecommerce-pipeline/service/config"
	"ecommerce-pipeline/service/generator"
	"ecommerce-pipeline/service/ingestion"
	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/service/quality"

	"gorm.io/gorm"
)

// ErrQualityUnhealthy 存在未通过的ERROR级检查时质量阶段返回该错误
// 报告已落库，调用方据此将本次运行标记为失败
var ErrQualityUnhealthy = errors.New("存在未通过的ERROR级质量检查")

// 管道阶段
const (
	StageGenerate  = "generate"
	StageLoad      = "load"
	StageAggregate = "aggregate"
	StageQuality   = "quality"
	StageFull      = "full"
)

// PipelineService 管道编排服务
type PipelineService struct {
	db         *gorm.DB
	cfg        *config.Config
	loader     *ingestion.CSVLoader
	aggregator *aggregation.Aggregator
	checker    *quality.QualityChecker
}

// NewPipelineService 创建管道编排服务
func NewPipelineService(db *gorm.DB, cfg *config.Config,
	loader *ingestion.CSVLoader, aggregator *aggregation.Aggregator,
	checker *quality.QualityChecker) *PipelineService {
	return &PipelineService{
		db:         db,
		cfg:        cfg,
		loader:     loader,
		aggregator: aggregator,
		checker:    checker,
	}
}

// Generate 生成合成数据并导出CSV
func (s *PipelineService) Generate(ctx context.Context) (*models.PipelineRunRecord, error) {
	return s.runStage(StageGenerate, func() (int64, models.JSONB, error) {
		gen := generator.NewGenerator(s.cfg.RandomSeed)
		customers := gen.GenerateCustomers(s.cfg.NumCustomers)
		products := gen.GenerateProducts(s.cfg.NumProducts)
		orders := gen.GenerateOrders(customers, products, s.cfg.NumOrders)

		if err := generator.WriteAll(s.cfg.DataRawDir, customers, products, orders); err != nil {
			return 0, nil, err
		}

		total := int64(len(customers) + len(products) + len(orders))
		details := models.ToJSONB(map[string]interface{}{
			"customers": len(customers),
			"products":  len(products),
			"orders":    len(orders),
			"seed":      s.cfg.RandomSeed,
			"output":    s.cfg.DataRawDir,
		})
		return total, details, nil
	})
}

// Load 清空目标表并从CSV加载数据
func (s *PipelineService) Load(ctx context.Context) (*models.PipelineRunRecord, error) {
	return s.runStage(StageLoad, func() (int64, models.JSONB, error) {
		summary, err := s.loader.LoadAll(ctx)
		if err != nil {
			return 0, nil, err
		}
		return summary.Total(), models.ToJSONB(summary), nil
	})
}

// Refresh 重建全部汇总表
func (s *PipelineService) Refresh(ctx context.Context) (*models.PipelineRunRecord, error) {
	return s.runStage(StageAggregate, func() (int64, models.JSONB, error) {
		summary := s.aggregator.RefreshAll(ctx)
		var rows int64
		for _, r := range summary.Results {
			rows += r.RowCount
		}
		if summary.Failed > 0 {
			return rows, models.ToJSONB(summary),
				fmt.Errorf("%d张汇总表刷新失败", summary.Failed)
		}
		return rows, models.ToJSONB(summary), nil
	})
}

// Quality 执行质量检查
// ERROR级检查失败时返回ErrQualityUnhealthy，运行记录标记为失败，报告本身仍已落库
func (s *PipelineService) Quality(ctx context.Context) (*models.QualityReport, error) {
	var report *models.QualityReport
	_, err := s.runStage(StageQuality, func() (int64, models.JSONB, error) {
		r, err := s.checker.RunAllChecks(ctx)
		if err != nil {
			return 0, nil, err
		}
		report = r
		details := models.ToJSONB(map[string]interface{}{
			"report_id": r.ReportID,
			"score":     r.OverallScore,
			"grade":     r.Grade,
			"healthy":   r.Healthy,
		})
		if !r.Healthy {
			return int64(r.TotalChecks), details, ErrQualityUnhealthy
		}
		return int64(r.TotalChecks), details, nil
	})
	return report, err
}

// RunFull 执行完整管道：生成、加载、汇总、质量检查
func (s *PipelineService) RunFull(ctx context.Context) (*models.PipelineRunRecord, error) {
	return s.runStage(StageFull, func() (int64, models.JSONB, error) {
		stages := []struct {
			name string
			fn   func(context.Context) (*models.PipelineRunRecord, error)
		}{
			{StageGenerate, s.Generate},
			{StageLoad, s.Load},
			{StageAggregate, s.Refresh},
		}

		var totalRows int64
		for _, stage := range stages {
			record, err := stage.fn(ctx)
			if err != nil {
				return totalRows, nil, fmt.Errorf("阶段%s失败: %w", stage.name, err)
			}
			totalRows += record.RowsAffected
		}

		report, err := s.Quality(ctx)
		if err != nil {
			return totalRows, nil, fmt.Errorf("阶段%s失败: %w", StageQuality, err)
		}

		details := models.ToJSONB(map[string]interface{}{
			"quality_report_id": report.ReportID,
			"quality_grade":     report.Grade,
			"healthy":           report.Healthy,
		})
		return totalRows, details, nil
	})
}

// GetRuns 分页查询管道运行记录
func (s *PipelineService) GetRuns(page, size int) ([]models.PipelineRunRecord, int64, error) {
	var records []models.PipelineRunRecord
	var total int64

	if err := s.db.Model(&models.PipelineRunRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size
	err := s.db.Order("start_time DESC").Offset(offset).Limit(size).Find(&records).Error
	return records, total, err
}

// runStage 执行单个阶段并持久化运行记录
func (s *PipelineService) runStage(stage string, fn func() (int64, models.JSONB, error)) (*models.PipelineRunRecord, error) {
	record := &models.PipelineRunRecord{
		Stage:     stage,
		Status:    "running",
		StartTime: time.Now(),
	}
	if s.db != nil {
		if err := s.db.Create(record).Error; err != nil {
			slog.Warn("管道运行记录创建失败", "stage", stage, "error", err)
		}
	}

	slog.Info("管道阶段开始", "stage", stage)
	rows, details, err := fn()

	now := time.Now()
	record.EndTime = &now
	record.RowsAffected = rows
	record.Details = details
	if err != nil {
		record.Status = "failed"
		record.ErrorMessage = err.Error()
		slog.Error("管道阶段失败", "stage", stage, "error", err)
	} else {
		record.Status = "success"
		slog.Info("管道阶段完成", "stage", stage,
			"rows", rows, "duration", now.Sub(record.StartTime))
	}

	if s.db != nil {
		if saveErr := s.db.Save(record).Error; saveErr != nil {
			slog.Warn("管道运行记录更新失败", "stage", stage, "error", saveErr)
		}
	}
	return record, err
}
