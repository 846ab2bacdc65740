/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移、业务服务装配和调度器启动
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 数据库不可用时快速失败，Redis和Kafka为可选依赖，缺失时降级运行
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs main.go, api/routes.go
 */

package service

import (
	"context"
	"log"

	"ecommerce-pipeline/service/aggregation"
	"ecommerce-pipeline/service/config"
	"ecommerce-pipeline/service/distributed_lock"
	"ecommerce-pipeline/service/event"
	"ecommerce-pipeline/service/ingestion"
	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/service/pipeline"
	"ecommerce-pipeline/service/quality"
	"ecommerce-pipeline/service/report"
	"ecommerce-pipeline/service/scheduler"
	"ecommerce-pipeline/service/store"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                     *gorm.DB
	Config                 *config.Config
	AnalyticsStore         store.Store
	GlobalQualityService   *quality.QualityChecker
	GlobalPipelineService  *pipeline.PipelineService
	GlobalSchedulerService *scheduler.PipelineScheduler
	GlobalRedisLock        *distributed_lock.RedisLock
	GlobalEventPublisher   *event.KafkaPublisher
)

// Init 执行全部初始化流程
func Init() {
	Config = config.Load()
	if err := Config.Validate(); err != nil {
		log.Fatalf("配置校验失败: %v", err)
	}
	if err := Config.CreateDirectories(); err != nil {
		log.Fatalf("数据目录创建失败: %v", err)
	}

	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var err error
	DB, err = gorm.Open(postgres.Open(Config.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatalf("获取底层连接池失败: %v", err)
	}
	// 原生SQL查询与gorm共用一个连接池
	AnalyticsStore = store.NewPostgresStoreFromDB(sqlDB)

	ctx, cancel := context.WithTimeout(context.Background(), Config.DBTimeout)
	defer cancel()
	if err := AnalyticsStore.Ping(ctx); err != nil {
		log.Fatalf("数据库连接测试失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	err := DB.AutoMigrate(
		&models.Customer{},
		&models.Product{},
		&models.Order{},
		&models.QualityReportRecord{},
		&models.PipelineRunRecord{},
	)
	if err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	log.Println("数据库表结构迁移完成")
}

// initServices 初始化服务
func initServices() {
	GlobalQualityService = quality.NewQualityChecker(DB, AnalyticsStore, Config.ZScoreThreshold)
	GlobalQualityService.SetSink(report.NewFileSink(Config.DataProcessedDir))

	// Kafka为可选依赖，未配置时不发布报告事件
	if len(Config.KafkaBrokers) > 0 {
		GlobalEventPublisher = event.NewKafkaPublisher(Config.KafkaBrokers, Config.KafkaTopic)
		GlobalQualityService.SetPublisher(GlobalEventPublisher)
	}

	loader := ingestion.NewCSVLoader(DB, Config.DataRawDir, Config.BatchSize)
	aggregator := aggregation.NewAggregator(AnalyticsStore)
	GlobalPipelineService = pipeline.NewPipelineService(DB, Config, loader, aggregator, GlobalQualityService)

	// Redis为可选依赖，未配置时调度任务单实例直接执行
	var lock distributed_lock.DistributedLock
	if Config.RedisHost != "" {
		redisLock, err := distributed_lock.NewRedisLock(Config.RedisHost, Config.RedisPort)
		if err != nil {
			log.Printf("Redis分布式锁初始化失败，降级为单实例调度: %v", err)
		} else {
			GlobalRedisLock = redisLock
			lock = redisLock
		}
	}

	GlobalSchedulerService = scheduler.NewPipelineScheduler(Config, GlobalPipelineService, lock)
	if err := GlobalSchedulerService.Start(); err != nil {
		log.Printf("启动调度器服务失败: %v", err)
	}

	log.Println("服务初始化完成")
}

// Shutdown 释放外部资源
func Shutdown() {
	if GlobalSchedulerService != nil {
		GlobalSchedulerService.Stop()
	}
	if GlobalEventPublisher != nil {
		if err := GlobalEventPublisher.Close(); err != nil {
			log.Printf("Kafka发布器关闭失败: %v", err)
		}
	}
	if GlobalRedisLock != nil {
		if err := GlobalRedisLock.Close(); err != nil {
			log.Printf("Redis客户端关闭失败: %v", err)
		}
	}
}
