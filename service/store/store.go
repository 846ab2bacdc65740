/*
 * @module service/store/store
 * @description 分析库访问接口，封装质量检查和聚合任务所需的原生SQL能力
 * @architecture 仓储模式 - 以窄接口隔离SQL执行与业务逻辑
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 打开连接池 -> 执行标量/行集查询或DDL -> 关闭连接池
 * @rules 接口方法必须接受context以支持超时控制，标量查询只取第一行第一列
 * @refs postgresql.go, service/quality/, service/aggregation/
 */

package store

import "context"

// Store 分析库访问接口
// 质量检查、聚合重建和数据加载只依赖该接口，便于在测试中用内存库替换
type Store interface {
	// QueryScalar 执行返回单个标量的查询
	QueryScalar(ctx context.Context, query string, args ...interface{}) (interface{}, error)

	// QueryRows 执行查询并返回列名与行数据
	QueryRows(ctx context.Context, query string, args ...interface{}) ([]string, [][]interface{}, error)

	// Exec 执行DDL或DML语句，返回受影响行数
	Exec(ctx context.Context, query string, args ...interface{}) (int64, error)

	// TableCount 返回表行数，表不存在时返回错误
	TableCount(ctx context.Context, table string) (int64, error)

	// Ping 测试连接可用性
	Ping(ctx context.Context) error

	// Close 关闭连接池
	Close() error
}
