package pipeline

import (
	"context"
	"testing"

	"ecommerce-pipeline/service/aggregation"
	"ecommerce-pipeline/service/config"
	"ecommerce-pipeline/service/ingestion"
	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/service/quality"
	"ecommerce-pipeline/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, tdb *testutil.TestDB) *PipelineService {
	t.Helper()
	cfg := &config.Config{
		DataRawDir:   t.TempDir(),
		NumCustomers: 20,
		NumProducts:  15,
		NumOrders:    60,
		RandomSeed:   42,
		BatchSize:    50,
	}
	loader := ingestion.NewCSVLoader(tdb.DB, cfg.DataRawDir, cfg.BatchSize)
	aggregator := aggregation.NewAggregator(tdb.Store)
	checker := quality.NewQualityChecker(tdb.DB, tdb.Store, 3.0)
	return NewPipelineService(tdb.DB, cfg, loader, aggregator, checker)
}

func TestPipelineService_GenerateStage(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := newTestPipeline(t, tdb)

	record, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageGenerate, record.Stage)
	assert.Equal(t, "success", record.Status)
	assert.Equal(t, int64(95), record.RowsAffected)
	require.NotNil(t, record.EndTime)
	assert.NotNil(t, record.Details)
}

func TestPipelineService_GenerateThenLoad(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := newTestPipeline(t, tdb)

	_, err := svc.Generate(context.Background())
	require.NoError(t, err)

	record, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "success", record.Status)
	assert.Equal(t, int64(95), record.RowsAffected)

	var orders int64
	tdb.DB.Model(&models.Order{}).Count(&orders)
	assert.Equal(t, int64(60), orders)
}

func TestPipelineService_LoadWithoutDataFails(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := newTestPipeline(t, tdb)

	record, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, "failed", record.Status)
	assert.NotEmpty(t, record.ErrorMessage)
}

func TestPipelineService_QualityStageSucceedsWhenHealthy(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := newTestPipeline(t, tdb)

	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateCustomer(1001)
	factory.CreateProduct(2001)
	factory.CreateOrder(3001, 1001, 2001, 1000)

	report, err := svc.Quality(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.True(t, report.Healthy)

	records, _, err := svc.GetRuns(1, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "success", records[0].Status)
}

func TestPipelineService_QualityStageFailsWhenUnhealthy(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := newTestPipeline(t, tdb)

	// 重复邮箱触发ERROR级唯一性检查失败
	factory := testutil.NewTestDataFactory(tdb.DB)
	email := "shared@gmail.com"
	factory.CreateCustomer(1001, testutil.WithEmail(&email))
	factory.CreateCustomer(1002, testutil.WithEmail(&email))

	report, err := svc.Quality(context.Background())
	require.ErrorIs(t, err, ErrQualityUnhealthy)
	require.NotNil(t, report)
	assert.False(t, report.Healthy)

	// 运行记录标记为失败，报告本身仍已落库
	records, total, err := svc.GetRuns(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, StageQuality, records[0].Stage)
	assert.Equal(t, "failed", records[0].Status)
	assert.Equal(t, ErrQualityUnhealthy.Error(), records[0].ErrorMessage)

	var persisted models.QualityReportRecord
	require.NoError(t, tdb.DB.First(&persisted, "id = ?", report.ReportID).Error)
	assert.False(t, persisted.Healthy)
}

func TestPipelineService_RecordsRunHistory(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := newTestPipeline(t, tdb)

	_, err := svc.Generate(context.Background())
	require.NoError(t, err)
	_, _ = svc.Load(context.Background())

	records, total, err := svc.GetRuns(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 2)

	stages := map[string]bool{}
	for _, r := range records {
		stages[r.Stage] = true
		assert.NotEmpty(t, r.ID)
		assert.NotEqual(t, "running", r.Status)
	}
	assert.True(t, stages[StageGenerate])
	assert.True(t, stages[StageLoad])
}
