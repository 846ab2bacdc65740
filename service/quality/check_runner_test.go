package quality

import (
	"context"
	"testing"

	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRunner_PassAndFail(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)

	factory.CreateCustomer(1001)
	factory.CreateCustomer(1002, testutil.WithEmail(nil))

	runner := NewCheckRunner(tdb.Store)

	passed := runner.RunCheck(context.Background(), models.CheckDefinition{
		Name:      "customers_no_null_ids",
		Dimension: models.DimensionCompleteness,
		Query:     "SELECT COUNT(*) FROM customers WHERE customer_id IS NULL",
		Expected:  0,
		Severity:  models.SeverityError,
	})
	assert.Equal(t, models.StatusPassed, passed.Status)
	assert.Equal(t, int64(0), passed.Actual)

	failed := runner.RunCheck(context.Background(), models.CheckDefinition{
		Name:      "customers_no_null_emails",
		Dimension: models.DimensionCompleteness,
		Query:     "SELECT COUNT(*) FROM customers WHERE email IS NULL",
		Expected:  0,
		Severity:  models.SeverityError,
	})
	assert.Equal(t, models.StatusFailed, failed.Status)
	assert.Equal(t, int64(1), failed.Actual)
	assert.False(t, failed.Timestamp.IsZero())
}

func TestCheckRunner_QueryErrorDoesNotAbortBattery(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	factory.CreateCustomer(1001)

	runner := NewCheckRunner(tdb.Store)
	defs := []models.CheckDefinition{
		{
			Name:      "broken_check",
			Dimension: models.DimensionValidity,
			Query:     "SELECT COUNT(*) FROM nonexistent_table",
			Expected:  0,
			Severity:  models.SeverityError,
		},
		{
			Name:      "customers_present",
			Dimension: models.DimensionValidity,
			Query:     "SELECT COUNT(*) - 1 FROM customers",
			Expected:  0,
			Severity:  models.SeverityError,
		},
	}

	dr := runner.RunBattery(context.Background(), models.DimensionValidity, defs)

	// 第一项异常计入失败，第二项继续执行并通过
	require.Len(t, dr.Results, 2)
	assert.Equal(t, models.StatusError, dr.Results[0].Status)
	assert.NotEmpty(t, dr.Results[0].Error)
	assert.Equal(t, models.StatusPassed, dr.Results[1].Status)
	assert.Equal(t, 1, dr.Passed)
	assert.Equal(t, 1, dr.Failed)
	assert.Equal(t, 50.0, dr.Score)
}

func TestCheckRunner_CompletenessBatteryWithNulls(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)

	// 3个客户缺失邮箱，其余完整性检查全部通过
	factory.CreateCustomer(1001)
	factory.CreateCustomer(1002, testutil.WithEmail(nil))
	factory.CreateCustomer(1003, testutil.WithEmail(nil))
	factory.CreateCustomer(1004, testutil.WithEmail(nil))
	factory.CreateProduct(2001)
	factory.CreateOrder(3001, 1001, 2001, 1000)

	runner := NewCheckRunner(tdb.Store)
	dr := runner.RunBattery(context.Background(), models.DimensionCompleteness, CompletenessChecks())

	assert.Equal(t, 5, dr.Passed)
	assert.Equal(t, 1, dr.Failed)

	var emailResult *models.CheckResult
	for i := range dr.Results {
		if dr.Results[i].CheckName == "customers_no_null_emails" {
			emailResult = &dr.Results[i]
		}
	}
	require.NotNil(t, emailResult)
	assert.Equal(t, models.StatusFailed, emailResult.Status)
	assert.Equal(t, int64(3), emailResult.Actual)
}

func TestCheckRunner_ReferentialIntegrity(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)

	factory.CreateCustomer(1001)
	factory.CreateProduct(2001)
	factory.CreateOrder(3001, 1001, 2001, 1000)
	// 引用不存在客户的订单
	factory.CreateOrder(3002, 9999, 2001, 2000)

	runner := NewCheckRunner(tdb.Store)
	dr := runner.RunBattery(context.Background(), models.DimensionConsistency, ConsistencyChecks())

	var fkResult *models.CheckResult
	for i := range dr.Results {
		if dr.Results[i].CheckName == "orders_customer_fk_integrity" {
			fkResult = &dr.Results[i]
		}
	}
	require.NotNil(t, fkResult)
	assert.Equal(t, models.StatusFailed, fkResult.Status)
	assert.Equal(t, int64(1), fkResult.Actual)
	assert.Equal(t, models.SeverityError, fkResult.Severity)
}

func TestCheckCatalog_TwentyChecks(t *testing.T) {
	total := 0
	for _, defs := range AllBatteries() {
		total += len(defs)
	}
	assert.Equal(t, 20, total)

	assert.Len(t, CompletenessChecks(), 6)
	assert.Len(t, ValidityChecks(), 6)
	assert.Len(t, ConsistencyChecks(), 4)
	assert.Len(t, UniquenessChecks(), 4)

	// 全部检查的期望值都是0
	for dimension, defs := range AllBatteries() {
		for _, def := range defs {
			assert.Equal(t, int64(0), def.Expected, "%s/%s", dimension, def.Name)
			assert.Equal(t, dimension, def.Dimension)
		}
	}
}
