/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, time
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"ecommerce-pipeline/service/models"
	"ecommerce-pipeline/service/store"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB    *gorm.DB
	Store store.Store
}

// NewTestDB 创建内存测试数据库并迁移全部模型
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	err = db.AutoMigrate(
		&models.Customer{},
		&models.Product{},
		&models.Order{},
		&models.QualityReportRecord{},
		&models.PipelineRunRecord{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to get underlying connection: %v", err))
	}

	return &TestDB{DB: db, Store: store.NewPostgresStoreFromDB(sqlDB)}
}

// CleanDB 清空所有表的数据
func (tdb *TestDB) CleanDB() {
	tables := []string{
		"orders",
		"products",
		"customers",
		"quality_report_records",
		"pipeline_run_records",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// CustomerOption 客户选项函数类型
type CustomerOption func(*models.Customer)

// CreateCustomer 创建测试客户
func (f *TestDataFactory) CreateCustomer(id int, opts ...CustomerOption) *models.Customer {
	email := fmt.Sprintf("customer%d@gmail.com", id)
	age := 30
	customer := &models.Customer{
		CustomerID:       id,
		FirstName:        "Test",
		LastName:         fmt.Sprintf("Customer%d", id),
		Email:            &email,
		Phone:            "+91-9999999999",
		City:             "Mumbai",
		State:            "Maharashtra",
		Pincode:          "400001",
		RegistrationDate: time.Now().AddDate(-1, 0, 0),
		Age:              &age,
		Gender:           "Other",
	}

	for _, opt := range opts {
		opt(customer)
	}

	if err := f.DB.Create(customer).Error; err != nil {
		panic(fmt.Sprintf("failed to create test customer: %v", err))
	}
	return customer
}

// WithEmail 设置客户邮箱，nil表示缺失
func WithEmail(email *string) CustomerOption {
	return func(c *models.Customer) {
		c.Email = email
	}
}

// WithAge 设置客户年龄，nil表示缺失
func WithAge(age *int) CustomerOption {
	return func(c *models.Customer) {
		c.Age = age
	}
}

// ProductOption 商品选项函数类型
type ProductOption func(*models.Product)

// CreateProduct 创建测试商品
func (f *TestDataFactory) CreateProduct(id int, opts ...ProductOption) *models.Product {
	name := fmt.Sprintf("Test Product %d", id)
	price := 1000.0
	product := &models.Product{
		ProductID:     id,
		ProductName:   &name,
		Category:      "Electronics",
		Subcategory:   "Smartphones",
		Brand:         "Test",
		Price:         &price,
		Cost:          800.0,
		StockQuantity: 100,
		Supplier:      "Tech Supplies India",
	}

	for _, opt := range opts {
		opt(product)
	}

	if err := f.DB.Create(product).Error; err != nil {
		panic(fmt.Sprintf("failed to create test product: %v", err))
	}
	return product
}

// WithPrice 设置商品价格，nil表示缺失
func WithPrice(price *float64) ProductOption {
	return func(p *models.Product) {
		p.Price = price
	}
}

// OrderOption 订单选项函数类型
type OrderOption func(*models.Order)

// CreateOrder 创建测试订单，默认状态为已交付
func (f *TestDataFactory) CreateOrder(id, customerID, productID int, amount float64, opts ...OrderOption) *models.Order {
	order := &models.Order{
		OrderID:       id,
		CustomerID:    customerID,
		ProductID:     productID,
		OrderDate:     time.Now().AddDate(0, 0, -7),
		Quantity:      1,
		UnitPrice:     amount,
		TotalAmount:   &amount,
		PaymentMethod: "UPI",
		OrderStatus:   "Delivered",
		ShippingCity:  "Mumbai",
	}

	for _, opt := range opts {
		opt(order)
	}

	if err := f.DB.Create(order).Error; err != nil {
		panic(fmt.Sprintf("failed to create test order: %v", err))
	}
	return order
}

// WithStatus 设置订单状态
func WithStatus(status string) OrderOption {
	return func(o *models.Order) {
		o.OrderStatus = status
	}
}

// WithQuantity 设置订单数量和单价
func WithQuantity(quantity int, unitPrice float64) OrderOption {
	return func(o *models.Order) {
		o.Quantity = quantity
		o.UnitPrice = unitPrice
	}
}

// WithTotalAmount 设置订单总额，nil表示缺失
func WithTotalAmount(amount *float64) OrderOption {
	return func(o *models.Order) {
		o.TotalAmount = amount
	}
}

// WithOrderDate 设置下单时间
func WithOrderDate(t time.Time) OrderOption {
	return func(o *models.Order) {
		o.OrderDate = t
	}
}
