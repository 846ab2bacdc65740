/*
 * @module service/event/kafka_publisher
 * @description 质量报告事件发布器，将检查结果摘要推送到Kafka供下游告警系统消费
 * @architecture 事件驱动架构 - 生产者
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 质量检查完成 -> 序列化报告摘要 -> 发布到Kafka主题
 * @rules 发布失败只记录日志不影响检查流程，消息Key为报告ID保证同报告有序
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/quality/quality_checker.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ecommerce-pipeline/service/models"

	"github.com/segmentio/kafka-go"
)

// reportEvent 推送到Kafka的报告摘要
type reportEvent struct {
	ReportID     string           `json:"report_id"`
	GeneratedAt  time.Time        `json:"generated_at"`
	OverallScore float64          `json:"overall_score"`
	Grade        string           `json:"grade"`
	Healthy      bool             `json:"healthy"`
	TotalChecks  int              `json:"total_checks"`
	TotalFailed  int              `json:"total_failed"`
	AnomalyCount int              `json:"anomaly_count"`
	RowCounts    map[string]int64 `json:"row_counts"`
}

// KafkaPublisher 质量报告Kafka发布器
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher 创建质量报告发布器
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
	}
	slog.Info("Kafka质量报告发布器初始化成功", "brokers", brokers, "topic", topic)
	return &KafkaPublisher{writer: writer}
}

// PublishReport 发布质量报告摘要事件
func (p *KafkaPublisher) PublishReport(ctx context.Context, report *models.QualityReport) error {
	event := reportEvent{
		ReportID:     report.ReportID,
		GeneratedAt:  report.GeneratedAt,
		OverallScore: report.OverallScore,
		Grade:        report.Grade,
		Healthy:      report.Healthy,
		TotalChecks:  report.TotalChecks,
		TotalFailed:  report.TotalFailed,
		AnomalyCount: len(report.Anomalies),
		RowCounts:    report.RowCounts,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("报告事件序列化失败: %v", err)
	}

	msg := kafka.Message{
		Key:   []byte(report.ReportID),
		Value: value,
		Time:  report.GeneratedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("报告事件发布失败: %v", err)
	}

	slog.Info("质量报告事件已发布", "report_id", report.ReportID, "grade", report.Grade)
	return nil
}

// Close 关闭Kafka生产者
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
