/*
 * @module service/models/quality_models
 * @description 数据质量模型，包含检查定义、检查结果、异常发现与质量报告持久化记录
 * @architecture 数据模型层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 检查执行 -> 维度汇总 -> 质量评分 -> 报告落库与导出
 * @rules 检查结果一旦生成不可变更，报告记录使用UUID主键并以JSONB保存明细
 * @dependencies gorm.io/gorm, github.com/google/uuid, time
 * @refs service/quality/, service/report/
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 检查严重级别
const (
	SeverityError   = "ERROR"
	SeverityWarning = "WARNING"
	SeverityInfo    = "INFO"
)

// 检查状态
const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
	StatusError  = "ERROR"
)

// 质量维度
const (
	DimensionCompleteness = "completeness"
	DimensionValidity     = "validity"
	DimensionConsistency  = "consistency"
	DimensionUniqueness   = "uniqueness"
)

// CheckDefinition 单项质量检查定义
type CheckDefinition struct {
	Name        string `json:"name"`      // 检查名称，报告中的唯一标识
	Dimension   string `json:"dimension"` // 所属质量维度
	Query       string `json:"query"`     // 返回单个标量的SQL
	Expected    int64  `json:"expected"`  // 期望标量值
	Severity    string `json:"severity"`  // ERROR 或 WARNING
	Table       string `json:"table"`     // 被检查的表
	Column      string `json:"column,omitempty"`
	Remediation string `json:"remediation"` // 检查失败时的修复建议
}

// CheckResult 单项质量检查结果
type CheckResult struct {
	CheckName   string      `json:"check_name"`
	Dimension   string      `json:"dimension"`
	Severity    string      `json:"severity"`
	Status      string      `json:"status"`
	Expected    int64       `json:"expected"`
	Actual      interface{} `json:"actual"`          // 执行异常时为空
	Error       string      `json:"error,omitempty"` // 执行异常信息
	Table       string      `json:"table"`
	Column      string      `json:"column,omitempty"`
	Remediation string      `json:"remediation,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Issue 从失败检查归纳的质量问题，带修复建议
type Issue struct {
	Type            string  `json:"type"` // 产生该问题的检查名称
	Table           string  `json:"table"`
	Column          string  `json:"column,omitempty"`
	Count           int64   `json:"count"`
	Percentage      float64 `json:"percentage"` // 问题行数占表行数的百分比
	Severity        string  `json:"severity"`
	RemediationHint string  `json:"remediation_hint"`
}

// DimensionResult 单个维度的检查汇总
type DimensionResult struct {
	Dimension string        `json:"dimension"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Score     float64       `json:"score"` // 0-100
	Results   []CheckResult `json:"results"`
}

// AnomalyFinding 异常检测发现
type AnomalyFinding struct {
	Detector    string                 `json:"detector"` // zscore_order_amount, rule_high_value 等
	Severity    string                 `json:"severity"` // INFO 或 WARNING
	EntityType  string                 `json:"entity_type"`
	EntityID    string                 `json:"entity_id"`
	Value       float64                `json:"value"`
	ZScore      float64                `json:"z_score,omitempty"`
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// QualityReport 一次完整质量检查运行的结果
type QualityReport struct {
	ReportID     string                     `json:"report_id"`
	GeneratedAt  time.Time                  `json:"generated_at"`
	Duration     time.Duration              `json:"duration"`
	TotalChecks  int                        `json:"total_checks"`
	TotalPassed  int                        `json:"total_passed"`
	TotalFailed  int                        `json:"total_failed"`
	OverallScore float64                    `json:"overall_score"`
	Grade        string                     `json:"grade"`
	Healthy      bool                       `json:"healthy"` // 无ERROR级失败检查
	Dimensions   map[string]DimensionResult `json:"dimensions"`
	Issues       []Issue                    `json:"issues"`
	Anomalies    []AnomalyFinding           `json:"anomalies"`
	RowCounts    map[string]int64           `json:"row_counts"`
}

// QualityReportRecord 质量报告持久化记录
type QualityReportRecord struct {
	ID           string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	GeneratedAt  time.Time `gorm:"index" json:"generated_at"`
	DurationMs   int64     `json:"duration_ms"`
	TotalChecks  int       `json:"total_checks"`
	TotalPassed  int       `json:"total_passed"`
	TotalFailed  int       `json:"total_failed"`
	OverallScore float64   `json:"overall_score"`
	Grade        string    `gorm:"type:varchar(30)" json:"grade"`
	Healthy      bool      `json:"healthy"`
	Dimensions   JSONB     `gorm:"type:jsonb" json:"dimensions"` // 各维度检查明细
	Issues       JSONB     `gorm:"type:jsonb" json:"issues"`     // 问题清单与修复建议
	Anomalies    JSONB     `gorm:"type:jsonb" json:"anomalies"`  // 异常发现明细
	RowCounts    JSONB     `gorm:"type:jsonb" json:"row_counts"` // 各表行数快照
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (QualityReportRecord) TableName() string {
	return "quality_report_records"
}

// BeforeCreate 创建前钩子
func (q *QualityReportRecord) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}

// PipelineRunRecord 管道运行记录模型
type PipelineRunRecord struct {
	ID           string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Stage        string     `gorm:"type:varchar(30);not null;index" json:"stage"` // generate, load, aggregate, quality, full
	Status       string     `gorm:"type:varchar(20);not null" json:"status"`      // running, success, failed
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	RowsAffected int64      `json:"rows_affected"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	Details      JSONB      `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (PipelineRunRecord) TableName() string {
	return "pipeline_run_records"
}

// BeforeCreate 创建前钩子
func (p *PipelineRunRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
