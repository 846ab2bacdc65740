/*
 * @module service/models/ecommerce
 * @description 电商业务核心数据模型，包含客户、商品、订单三张基础表
 * @architecture 数据模型层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 数据生成 -> 批量加载 -> 质量检查 -> 汇总聚合
 * @rules 订单通过外键关联客户和商品，金额字段使用浮点类型与上游保持一致
 * @dependencies gorm.io/gorm, time
 * @refs service/generator/, service/ingestion/
 */

package models

import "time"

// Customer 客户模型
type Customer struct {
	CustomerID       int       `gorm:"primaryKey;autoIncrement:false" json:"customer_id"`
	FirstName        string    `gorm:"type:varchar(50)" json:"first_name"`
	LastName         string    `gorm:"type:varchar(50)" json:"last_name"`
	Email            *string   `gorm:"type:varchar(100)" json:"email,omitempty"`
	Phone            string    `gorm:"type:varchar(20)" json:"phone"`
	City             string    `gorm:"type:varchar(50)" json:"city"`
	State            string    `gorm:"type:varchar(50)" json:"state"`
	Pincode          string    `gorm:"type:varchar(10)" json:"pincode"`
	RegistrationDate time.Time `json:"registration_date"`
	Age              *int      `json:"age,omitempty"`
	Gender           string    `gorm:"type:varchar(10)" json:"gender"`
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}

// Product 商品模型
type Product struct {
	ProductID     int      `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	ProductName   *string  `gorm:"type:varchar(200)" json:"product_name,omitempty"`
	Category      string   `gorm:"type:varchar(50)" json:"category"`
	Subcategory   string   `gorm:"type:varchar(50)" json:"subcategory"`
	Brand         string   `gorm:"type:varchar(50)" json:"brand"`
	Price         *float64 `json:"price,omitempty"`
	Cost          float64  `json:"cost"`
	StockQuantity int      `json:"stock_quantity"`
	Supplier      string   `gorm:"type:varchar(100)" json:"supplier"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Order 订单模型
type Order struct {
	OrderID         int       `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	CustomerID      int       `gorm:"index" json:"customer_id"`
	ProductID       int       `gorm:"index" json:"product_id"`
	OrderDate       time.Time `gorm:"index" json:"order_date"`
	Quantity        int       `json:"quantity"`
	UnitPrice       float64   `json:"unit_price"`
	TotalAmount     *float64  `json:"total_amount,omitempty"`
	DiscountApplied float64   `json:"discount_applied"`
	PaymentMethod   string    `gorm:"type:varchar(30)" json:"payment_method"`
	OrderStatus     string    `gorm:"type:varchar(20);index" json:"order_status"`
	ShippingCity    string    `gorm:"type:varchar(50)" json:"shipping_city"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
