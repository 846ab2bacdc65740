/*
 * @module service/scheduler/pipeline_scheduler
 * @description 管道定时调度器，按cron表达式触发质量检查、汇总刷新和完整管道运行
 * @architecture 调度器模式 - cron定时触发，分布式锁防止多实例重复执行
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 注册cron任务 -> 定时触发 -> 尝试获取分布式锁 -> 执行任务 -> 释放锁
 * @rules cron表达式使用秒级精度，未配置Redis时退化为单实例直接执行
 * @dependencies github.com/robfig/cron/v3, service/distributed_lock
 * @refs service/pipeline/, service/init.go
 */

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"ecommerce-pipeline/service/config"
	"ecommerce-pipeline/service/distributed_lock"
	"ecommerce-pipeline/service/pipeline"

	"github.com/robfig/cron/v3"
)

// 任务锁TTL按最长任务耗时预估
const (
	qualityLockTTL  = 10 * time.Minute
	refreshLockTTL  = 15 * time.Minute
	pipelineLockTTL = 60 * time.Minute
)

// PipelineScheduler 管道定时调度器
type PipelineScheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	service  *pipeline.PipelineService
	executor *distributed_lock.LockExecutor
}

// NewPipelineScheduler 创建管道定时调度器
// lock为nil时任务直接执行，不做多实例防重
func NewPipelineScheduler(cfg *config.Config, service *pipeline.PipelineService,
	lock distributed_lock.DistributedLock) *PipelineScheduler {
	s := &PipelineScheduler{
		cron:    cron.New(cron.WithSeconds()),
		cfg:     cfg,
		service: service,
	}
	if lock != nil {
		s.executor = distributed_lock.NewLockExecutor(lock)
	}
	return s
}

// Start 注册并启动全部定时任务
func (s *PipelineScheduler) Start() error {
	jobs := []struct {
		name string
		expr string
		ttl  time.Duration
		fn   func(context.Context) error
	}{
		{
			name: "daily_quality_check",
			expr: s.cfg.QualityCheckCron,
			ttl:  qualityLockTTL,
			fn: func(ctx context.Context) error {
				_, err := s.service.Quality(ctx)
				return err
			},
		},
		{
			name: "daily_aggregate_refresh",
			expr: s.cfg.AggregateRefreshCron,
			ttl:  refreshLockTTL,
			fn: func(ctx context.Context) error {
				_, err := s.service.Refresh(ctx)
				return err
			},
		},
		{
			name: "weekly_full_pipeline",
			expr: s.cfg.FullPipelineCron,
			ttl:  pipelineLockTTL,
			fn: func(ctx context.Context) error {
				_, err := s.service.RunFull(ctx)
				return err
			},
		},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.expr, func() {
			s.execute(job.name, job.ttl, job.fn)
		})
		if err != nil {
			return err
		}
		slog.Info("定时任务已注册", "job", job.name, "cron", job.expr)
	}

	s.cron.Start()
	slog.Info("管道调度器已启动")
	return nil
}

// Stop 停止调度器，等待运行中的任务结束
func (s *PipelineScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("管道调度器已停止")
}

// execute 执行单个定时任务，配置了分布式锁时在锁保护下运行
func (s *PipelineScheduler) execute(name string, ttl time.Duration, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), ttl)
	defer cancel()

	run := func() error {
		start := time.Now()
		slog.Info("定时任务开始", "job", name)
		if err := fn(ctx); err != nil {
			slog.Error("定时任务失败", "job", name, "error", err)
			return err
		}
		slog.Info("定时任务完成", "job", name, "duration", time.Since(start))
		return nil
	}

	if s.executor != nil {
		if err := s.executor.ExecuteWithLock(ctx, name, ttl, run); err != nil {
			slog.Error("定时任务锁执行失败", "job", name, "error", err)
		}
		return
	}
	_ = run()
}
