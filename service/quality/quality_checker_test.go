package quality

import (
	"context"
	"testing"

	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 构造汇总表，使一致性检查和异常检测可以在内存库上运行
func createSummaryTables(t *testing.T, tdb *testutil.TestDB) {
	t.Helper()
	require.NoError(t, tdb.DB.Exec(
		`CREATE TABLE customer_summary (customer_id INTEGER, customer_name TEXT, total_orders INTEGER, total_spent REAL)`).Error)
	require.NoError(t, tdb.DB.Exec(
		`CREATE TABLE daily_sales_summary (sale_date TEXT, total_orders INTEGER, total_revenue REAL)`).Error)
	require.NoError(t, tdb.DB.Exec(
		`CREATE TABLE product_summary (product_id INTEGER, total_revenue REAL)`).Error)
	require.NoError(t, tdb.DB.Exec(
		`CREATE TABLE monthly_sales_summary (month_start TEXT, total_revenue REAL)`).Error)
}

func seedCleanData(t *testing.T, tdb *testutil.TestDB) {
	t.Helper()
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateCustomer(1001)
	factory.CreateCustomer(1002)
	price := 1000.0
	factory.CreateProduct(2001, testutil.WithPrice(&price))
	amount := 1000.0
	factory.CreateOrder(3001, 1001, 2001, amount)

	require.NoError(t, tdb.DB.Exec(
		`INSERT INTO customer_summary VALUES (1001, 'Test Customer1001', 1, 1000)`).Error)
}

func TestQualityChecker_CleanDataIsHealthy(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	createSummaryTables(t, tdb)
	seedCleanData(t, tdb)

	checker := NewQualityChecker(tdb.DB, tdb.Store, 3.0)
	report, err := checker.RunAllChecks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, report.TotalChecks)
	assert.Equal(t, 20, report.TotalPassed)
	assert.Equal(t, 0, report.TotalFailed)
	assert.Equal(t, 100.0, report.OverallScore)
	assert.Equal(t, "A+ (Excellent)", report.Grade)
	assert.True(t, report.Healthy)
	assert.Len(t, report.Dimensions, 4)
	assert.Empty(t, report.Issues)
	assert.NotEmpty(t, report.ReportID)

	// 行数快照覆盖全部7张表
	assert.Len(t, report.RowCounts, 7)
	assert.Equal(t, int64(2), report.RowCounts["customers"])
	assert.Equal(t, int64(1), report.RowCounts["orders"])
}

func TestQualityChecker_ErrorSeverityFailureMakesUnhealthy(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	createSummaryTables(t, tdb)
	seedCleanData(t, tdb)

	// 注入重复邮箱，唯一性检查失败
	factory := testutil.NewTestDataFactory(tdb.DB)
	email := "customer1001@gmail.com"
	factory.CreateCustomer(1003, testutil.WithEmail(&email))

	checker := NewQualityChecker(tdb.DB, tdb.Store, 3.0)
	report, err := checker.RunAllChecks(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Healthy)
	assert.Equal(t, 1, report.TotalFailed)
	assert.Less(t, report.OverallScore, 100.0)

	uniqueness := report.Dimensions[models.DimensionUniqueness]
	assert.Equal(t, 1, uniqueness.Failed)
	assert.Equal(t, 75.0, uniqueness.Score)
}

func TestQualityChecker_WarningOnlyFailureStaysHealthy(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	createSummaryTables(t, tdb)
	seedCleanData(t, tdb)

	// customer_summary行数与已交付客户数不一致，仅WARNING级失败
	require.NoError(t, tdb.DB.Exec(
		`INSERT INTO customer_summary VALUES (1002, 'Test Customer1002', 0, 0)`).Error)

	checker := NewQualityChecker(tdb.DB, tdb.Store, 3.0)
	report, err := checker.RunAllChecks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalFailed)
	assert.True(t, report.Healthy)
}

func TestQualityChecker_MissingTableCountsAsZero(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	// 不创建任何汇总表
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateCustomer(1001)

	checker := NewQualityChecker(tdb.DB, tdb.Store, 3.0)
	report, err := checker.RunAllChecks(context.Background())
	require.NoError(t, err)

	// 缺失的汇总表行数记为0，检查流程不中断
	assert.Equal(t, int64(0), report.RowCounts["customer_summary"])
	assert.Equal(t, int64(0), report.RowCounts["monthly_sales_summary"])
	assert.Equal(t, int64(1), report.RowCounts["customers"])
	assert.Equal(t, 20, report.TotalChecks)
}

func TestQualityChecker_PersistsReport(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	createSummaryTables(t, tdb)
	seedCleanData(t, tdb)

	checker := NewQualityChecker(tdb.DB, tdb.Store, 3.0)
	report, err := checker.RunAllChecks(context.Background())
	require.NoError(t, err)

	record, err := checker.GetReport(report.ReportID)
	require.NoError(t, err)
	assert.Equal(t, report.ReportID, record.ID)
	assert.Equal(t, report.TotalChecks, record.TotalChecks)
	assert.Equal(t, report.Grade, record.Grade)
	assert.True(t, record.Healthy)
	assert.NotNil(t, record.Dimensions)

	records, total, err := checker.GetReports(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, report.ReportID, records[0].ID)
}

func TestQualityChecker_BuildsIssuesFromFailedChecks(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	createSummaryTables(t, tdb)
	seedCleanData(t, tdb)

	// 缺失邮箱同时触发完整性检查和唯一性检查失败
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateCustomer(1003, testutil.WithEmail(nil))

	checker := NewQualityChecker(tdb.DB, tdb.Store, 3.0)
	report, err := checker.RunAllChecks(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Issues, 2)

	// 问题按维度执行顺序排列，完整性在前
	nullEmails := report.Issues[0]
	assert.Equal(t, "customers_no_null_emails", nullEmails.Type)
	assert.Equal(t, "customers", nullEmails.Table)
	assert.Equal(t, "email", nullEmails.Column)
	assert.Equal(t, int64(1), nullEmails.Count)
	assert.InDelta(t, 33.33, nullEmails.Percentage, 0.01)
	assert.Equal(t, models.SeverityError, nullEmails.Severity)
	assert.NotEmpty(t, nullEmails.RemediationHint)

	dupEmails := report.Issues[1]
	assert.Equal(t, "customers_no_duplicate_emails", dupEmails.Type)
	assert.Equal(t, int64(1), dupEmails.Count)

	// 问题清单随报告落库
	record, err := checker.GetReport(report.ReportID)
	require.NoError(t, err)
	assert.NotNil(t, record.Issues)
}

type stubSink struct {
	reports []*models.QualityReport
}

func (s *stubSink) Write(report *models.QualityReport) error {
	s.reports = append(s.reports, report)
	return nil
}

func TestQualityChecker_InvokesSink(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	createSummaryTables(t, tdb)
	seedCleanData(t, tdb)

	sink := &stubSink{}
	checker := NewQualityChecker(tdb.DB, tdb.Store, 3.0)
	checker.SetSink(sink)

	report, err := checker.RunAllChecks(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.reports, 1)
	assert.Equal(t, report.ReportID, sink.reports[0].ReportID)
}
