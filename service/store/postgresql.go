/*
 * @module service/store/postgresql
 * @description PostgreSQL分析库实现，支持连接池和SQL查询操作
 * @architecture 连接池模式 - 管理数据库连接的生命周期
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 初始化连接池 -> 获取连接 -> 执行SQL -> 归还连接 -> 关闭连接池
 * @rules 常驻连接池，标识符拼接前必须经过白名单校验
 * @dependencies database/sql, github.com/lib/pq, context
 * @refs store.go
 */

package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq" // PostgreSQL驱动
)

// 表名只允许小写字母、数字和下划线，防止拼接注入
var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresStore PostgreSQL分析库实现
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore 创建PostgreSQL分析库连接
func NewPostgresStore(dsn string, timeout time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("创建数据库连接失败: %v", err)
	}

	// 设置连接池参数
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %v", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB 基于已有连接池创建分析库实例，用于复用gorm底层连接
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// QueryScalar 执行返回单个标量的查询
func (s *PostgresStore) QueryScalar(ctx context.Context, query string, args ...interface{}) (interface{}, error) {
	var value interface{}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		return nil, fmt.Errorf("标量查询失败: %v", err)
	}
	return value, nil
}

// QueryRows 执行查询并返回列名与行数据
func (s *PostgresStore) QueryRows(ctx context.Context, query string, args ...interface{}) ([]string, [][]interface{}, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("查询执行失败: %v", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("获取列信息失败: %v", err)
	}

	var results [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanArgs := make([]interface{}, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, nil, fmt.Errorf("行扫描失败: %v", err)
		}
		results = append(results, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("行遍历失败: %v", err)
	}

	return columns, results, nil
}

// Exec 执行DDL或DML语句，返回受影响行数
func (s *PostgresStore) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("语句执行失败: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		// DDL语句不支持RowsAffected
		return 0, nil
	}
	return affected, nil
}

// TableCount 返回表行数，表不存在时返回错误
func (s *PostgresStore) TableCount(ctx context.Context, table string) (int64, error) {
	if !identifierPattern.MatchString(table) {
		return 0, fmt.Errorf("非法表名: %s", table)
	}

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("表行数查询失败 %s: %v", table, err)
	}
	return count, nil
}

// Ping 测试连接可用性
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭连接池
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
