package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DBHost:          "localhost",
		DBName:          "ecommerce_db",
		DBUser:          "dataeng",
		NumCustomers:    10000,
		NumProducts:     500,
		NumOrders:       50000,
		BatchSize:       1000,
		ZScoreThreshold: 3.0,
	}
}

func TestConfig_ValidateDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing db host", func(c *Config) { c.DBHost = "" }},
		{"missing db name", func(c *Config) { c.DBName = "" }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero zscore threshold", func(c *Config) { c.ZScoreThreshold = 0 }},
		// 客户分层要求每层至少1人，3个客户无法覆盖三个分层
		{"too few customers", func(c *Config) { c.NumCustomers = 3 }},
		// 15个子类商品以下会产生空目录
		{"too few products", func(c *Config) { c.NumProducts = 10 }},
		{"negative orders", func(c *Config) { c.NumOrders = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := validConfig()
	cfg.DBPort = 5432
	cfg.DBPassword = "secret"
	cfg.DBSSLMode = "disable"

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=ecommerce_db")
	assert.Contains(t, dsn, "sslmode=disable")
}
