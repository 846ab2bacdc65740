package generator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCustomers_IDsAndFields(t *testing.T) {
	g := NewGenerator(42)
	customers := g.GenerateCustomers(100)
	require.Len(t, customers, 100)

	for i, c := range customers {
		assert.Equal(t, 1001+i, c.CustomerID)
		require.NotNil(t, c.Email)
		assert.Contains(t, *c.Email, "@")
		assert.Contains(t, *c.Email, ".")
		require.NotNil(t, c.Age)
		assert.GreaterOrEqual(t, *c.Age, 18)
		assert.LessOrEqual(t, *c.Age, 70)
		assert.True(t, strings.HasPrefix(c.Phone, "+91-"))
		assert.NotEmpty(t, c.City)
		assert.NotEmpty(t, c.State)
		assert.NotEmpty(t, c.Pincode)
		assert.False(t, c.RegistrationDate.After(time.Now()))
	}
}

func TestGenerateProducts_CategoriesAndPrices(t *testing.T) {
	g := NewGenerator(42)
	products := g.GenerateProducts(150)

	// 3大类 x 5子类，每个子类10个商品
	require.Len(t, products, 150)

	categories := make(map[string]int)
	for i, p := range products {
		assert.Equal(t, 2001+i, p.ProductID)
		require.NotNil(t, p.ProductName)
		assert.NotEmpty(t, *p.ProductName)
		require.NotNil(t, p.Price)
		assert.Greater(t, *p.Price, 0.0)
		assert.Greater(t, p.Cost, 0.0)
		// 成本为售价的70%-85%
		assert.GreaterOrEqual(t, p.Cost, *p.Price*0.70-0.01)
		assert.LessOrEqual(t, p.Cost, *p.Price*0.85+0.01)
		assert.Greater(t, p.StockQuantity, 0)
		assert.NotEmpty(t, p.Supplier)
		categories[p.Category]++
	}

	assert.Equal(t, 50, categories["Electronics"])
	assert.Equal(t, 50, categories["Fashion"])
	assert.Equal(t, 50, categories["Home & Kitchen"])
}

func TestGenerateOrders_ReferencesAndRanges(t *testing.T) {
	g := NewGenerator(42)
	customers := g.GenerateCustomers(100)
	products := g.GenerateProducts(150)
	orders := g.GenerateOrders(customers, products, 500)
	require.Len(t, orders, 500)

	customerIDs := make(map[int]bool, len(customers))
	for _, c := range customers {
		customerIDs[c.CustomerID] = true
	}
	productIDs := make(map[int]bool, len(products))
	for _, p := range products {
		productIDs[p.ProductID] = true
	}

	validStatuses := map[string]bool{
		"Delivered": true, "Shipped": true, "Processing": true, "Cancelled": true,
	}

	for i, o := range orders {
		assert.Equal(t, 3001+i, o.OrderID)
		assert.True(t, customerIDs[o.CustomerID], "order references unknown customer %d", o.CustomerID)
		assert.True(t, productIDs[o.ProductID], "order references unknown product %d", o.ProductID)
		assert.GreaterOrEqual(t, o.Quantity, 1)
		assert.LessOrEqual(t, o.Quantity, 5)
		require.NotNil(t, o.TotalAmount)
		assert.Greater(t, *o.TotalAmount, 0.0)
		assert.GreaterOrEqual(t, o.DiscountApplied, 0.0)
		assert.True(t, validStatuses[o.OrderStatus], "unexpected status %q", o.OrderStatus)
		assert.False(t, o.OrderDate.After(time.Now()))

		// 总额 = 数量x单价 - 折扣
		subtotal := o.UnitPrice * float64(o.Quantity)
		assert.InDelta(t, subtotal-o.DiscountApplied, *o.TotalAmount, 0.011)
	}
}

func TestGenerateOrders_DeliveredDominates(t *testing.T) {
	g := NewGenerator(42)
	customers := g.GenerateCustomers(50)
	products := g.GenerateProducts(30)
	orders := g.GenerateOrders(customers, products, 2000)

	delivered := 0
	for _, o := range orders {
		if o.OrderStatus == "Delivered" {
			delivered++
		}
	}
	// 权重75%，留足随机波动余量
	ratio := float64(delivered) / float64(len(orders))
	assert.Greater(t, ratio, 0.65)
	assert.Less(t, ratio, 0.85)
}

func TestGenerator_SameSeedIsDeterministic(t *testing.T) {
	g1 := NewGenerator(7)
	g2 := NewGenerator(7)

	c1 := g1.GenerateCustomers(20)
	c2 := g2.GenerateCustomers(20)
	require.Len(t, c2, len(c1))
	for i := range c1 {
		assert.Equal(t, *c1[i].Email, *c2[i].Email)
		assert.Equal(t, c1[i].FirstName, c2[i].FirstName)
		assert.Equal(t, c1[i].City, c2[i].City)
		assert.Equal(t, *c1[i].Age, *c2[i].Age)
	}

	p1 := g1.GenerateProducts(30)
	p2 := g2.GenerateProducts(30)
	for i := range p1 {
		assert.Equal(t, *p1[i].ProductName, *p2[i].ProductName)
		assert.Equal(t, *p1[i].Price, *p2[i].Price)
	}

	o1 := g1.GenerateOrders(c1, p1, 50)
	o2 := g2.GenerateOrders(c2, p2, 50)
	for i := range o1 {
		assert.Equal(t, o1[i].CustomerID, o2[i].CustomerID)
		assert.Equal(t, o1[i].ProductID, o2[i].ProductID)
		assert.Equal(t, o1[i].Quantity, o2[i].Quantity)
		assert.Equal(t, *o1[i].TotalAmount, *o2[i].TotalAmount)
	}
}

func TestGenerator_DifferentSeedsDiffer(t *testing.T) {
	c1 := NewGenerator(1).GenerateCustomers(50)
	c2 := NewGenerator(2).GenerateCustomers(50)

	same := 0
	for i := range c1 {
		if *c1[i].Email == *c2[i].Email {
			same++
		}
	}
	assert.Less(t, same, 50)
}
