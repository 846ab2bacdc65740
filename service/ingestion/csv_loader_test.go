package ingestion

import (
	"context"
	"testing"

	"ecommerce-pipeline/service/generator"
	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 生成一小批数据并写入临时目录
func writeTestData(t *testing.T, dir string, nCustomers, nProducts, nOrders int) {
	t.Helper()
	g := generator.NewGenerator(42)
	customers := g.GenerateCustomers(nCustomers)
	products := g.GenerateProducts(nProducts)
	orders := g.GenerateOrders(customers, products, nOrders)
	require.NoError(t, generator.WriteAll(dir, customers, products, orders))
}

func TestCSVLoader_RoundTrip(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()

	dir := t.TempDir()
	writeTestData(t, dir, 50, 30, 200)

	loader := NewCSVLoader(tdb.DB, dir, 100)
	summary, err := loader.LoadAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(50), summary.Customers)
	assert.Equal(t, int64(30), summary.Products)
	assert.Equal(t, int64(200), summary.Orders)
	assert.Equal(t, int64(280), summary.Total())
	assert.True(t, summary.FKValid)
	assert.Greater(t, summary.Duration.Nanoseconds(), int64(0))

	var customerCount, productCount, orderCount int64
	tdb.DB.Model(&models.Customer{}).Count(&customerCount)
	tdb.DB.Model(&models.Product{}).Count(&productCount)
	tdb.DB.Model(&models.Order{}).Count(&orderCount)
	assert.Equal(t, int64(50), customerCount)
	assert.Equal(t, int64(30), productCount)
	assert.Equal(t, int64(200), orderCount)
}

func TestCSVLoader_PreservesFieldValues(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()

	dir := t.TempDir()
	writeTestData(t, dir, 10, 15, 20)

	loader := NewCSVLoader(tdb.DB, dir, 100)
	_, err := loader.LoadAll(context.Background())
	require.NoError(t, err)

	var customer models.Customer
	require.NoError(t, tdb.DB.First(&customer, "customer_id = ?", 1001).Error)
	require.NotNil(t, customer.Email)
	assert.Contains(t, *customer.Email, "@")
	require.NotNil(t, customer.Age)
	assert.GreaterOrEqual(t, *customer.Age, 18)

	var product models.Product
	require.NoError(t, tdb.DB.First(&product, "product_id = ?", 2001).Error)
	require.NotNil(t, product.Price)
	assert.Greater(t, *product.Price, 0.0)
	assert.NotEmpty(t, product.Supplier)

	var order models.Order
	require.NoError(t, tdb.DB.First(&order, "order_id = ?", 3001).Error)
	require.NotNil(t, order.TotalAmount)
	assert.Greater(t, *order.TotalAmount, 0.0)
	assert.GreaterOrEqual(t, order.Quantity, 1)
	assert.NotEmpty(t, order.PaymentMethod)
	assert.False(t, order.OrderDate.IsZero())
}

func TestCSVLoader_ReloadIsIdempotent(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()

	dir := t.TempDir()
	writeTestData(t, dir, 20, 15, 60)

	loader := NewCSVLoader(tdb.DB, dir, 50)
	_, err := loader.LoadAll(context.Background())
	require.NoError(t, err)

	// 重复加载先清空再导入，行数不翻倍
	summary, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), summary.Customers)

	var count int64
	tdb.DB.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(60), count)
}

func TestCSVLoader_MissingFilesFail(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()

	loader := NewCSVLoader(tdb.DB, t.TempDir(), 100)
	_, err := loader.LoadAll(context.Background())
	assert.Error(t, err)
}
