/*
 * @module service/config/config
 * @description 集中配置模块，从环境变量加载数据库、数据生成、质量检查和调度等配置
 * @architecture 分层架构 - 配置层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 应用启动时加载一次，之后以只读方式注入各服务
 * @rules 所有配置项必须有合理默认值，关键配置缺失时快速失败
 * @dependencies os, strconv, time
 * @refs service/init.go
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 集中配置结构，取代模块级可变全局变量
type Config struct {
	// 数据库配置
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DBTimeout  time.Duration

	// 数据目录
	DataRawDir       string
	DataProcessedDir string

	// 数据生成参数
	NumCustomers int
	NumProducts  int
	NumOrders    int
	RandomSeed   int64

	// 数据加载参数
	BatchSize int

	// 质量检查参数
	ZScoreThreshold float64

	// 调度配置（秒级cron表达式）
	QualityCheckCron     string
	AggregateRefreshCron string
	FullPipelineCron     string

	// Kafka配置（为空时禁用事件发布）
	KafkaBrokers []string
	KafkaTopic   string

	// Redis配置（为空时禁用分布式锁）
	RedisHost string
	RedisPort string
}

// Load 从环境变量加载配置
func Load() *Config {
	cfg := &Config{
		DBHost:     getEnvWithDefault("ECOMMERCE_DB_HOST", "localhost"),
		DBPort:     getEnvIntWithDefault("ECOMMERCE_DB_PORT", 5432),
		DBName:     getEnvWithDefault("ECOMMERCE_DB_NAME", "ecommerce_db"),
		DBUser:     getEnvWithDefault("ECOMMERCE_DB_USER", "dataeng"),
		DBPassword: getEnvWithDefault("ECOMMERCE_DB_PASSWORD", "pipeline123"),
		DBSSLMode:  getEnvWithDefault("ECOMMERCE_DB_SSLMODE", "disable"),
		DBTimeout:  time.Duration(getEnvIntWithDefault("ECOMMERCE_DB_TIMEOUT", 5)) * time.Second,

		DataRawDir:       getEnvWithDefault("DATA_RAW_DIR", "data/raw"),
		DataProcessedDir: getEnvWithDefault("DATA_PROCESSED_DIR", "data/processed"),

		NumCustomers: getEnvIntWithDefault("NUM_CUSTOMERS", 10000),
		NumProducts:  getEnvIntWithDefault("NUM_PRODUCTS", 500),
		NumOrders:    getEnvIntWithDefault("NUM_ORDERS", 50000),
		RandomSeed:   int64(getEnvIntWithDefault("RANDOM_SEED", 42)),

		BatchSize: getEnvIntWithDefault("BATCH_SIZE", 1000),

		ZScoreThreshold: getEnvFloatWithDefault("ANOMALY_ZSCORE_THRESHOLD", 3.0),

		QualityCheckCron:     getEnvWithDefault("QUALITY_CHECK_CRON", "0 0 6 * * *"),
		AggregateRefreshCron: getEnvWithDefault("AGGREGATE_REFRESH_CRON", "0 0 5 * * *"),
		FullPipelineCron:     getEnvWithDefault("FULL_PIPELINE_CRON", "0 0 2 * * 0"),

		KafkaTopic: getEnvWithDefault("KAFKA_QUALITY_TOPIC", "quality-reports"),

		RedisHost: os.Getenv("REDIS_HOST"),
		RedisPort: getEnvWithDefault("REDIS_PORT", "6379"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}

	return cfg
}

// DSN 构建PostgreSQL连接字符串（lib/pq格式）
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, int(c.DBTimeout.Seconds()))
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
		return fmt.Errorf("数据库配置不完整: host=%q dbname=%q user=%q", c.DBHost, c.DBName, c.DBUser)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("批量大小必须大于0: %d", c.BatchSize)
	}
	// 客户分层要求每个分层至少1人，商品目录要求每个子类至少1个商品
	if c.NumCustomers < 5 {
		return fmt.Errorf("客户数量至少为5: %d", c.NumCustomers)
	}
	if c.NumProducts < 15 {
		return fmt.Errorf("商品数量至少为15: %d", c.NumProducts)
	}
	if c.NumOrders < 0 {
		return fmt.Errorf("订单数量不能为负数: %d", c.NumOrders)
	}
	if c.ZScoreThreshold <= 0 {
		return fmt.Errorf("Z-score阈值必须大于0: %f", c.ZScoreThreshold)
	}
	return nil
}

// CreateDirectories 创建数据目录
func (c *Config) CreateDirectories() error {
	for _, dir := range []string{c.DataRawDir, c.DataProcessedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录失败 %s: %w", dir, err)
		}
	}
	return nil
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
