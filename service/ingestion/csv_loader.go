/*
 * @module service/ingestion/csv_loader
 * @description CSV数据加载器，清空目标表后分批导入客户、商品和订单数据并校验外键完整性
 * @architecture 分层架构 - 数据接入层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 按依赖顺序清空表 -> 解析CSV -> 分批插入 -> 外键校验
 * @rules 清空顺序为订单、商品、客户，加载顺序相反，批量大小可配置
 * @dependencies gorm.io/gorm, encoding/csv, github.com/spf13/cast
 * @refs service/generator/csv_writer.go
 */

package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ecommerce-pipeline/service/generator"
	"ecommerce-pipeline/service/models"

	"github.com/spf13/cast"
	"gorm.io/gorm"
)

// LoadSummary 单次加载结果汇总
type LoadSummary struct {
	Customers int64         `json:"customers"`
	Products  int64         `json:"products"`
	Orders    int64         `json:"orders"`
	Duration  time.Duration `json:"duration"`
	FKValid   bool          `json:"fk_valid"`
}

// Total 加载的总行数
func (s LoadSummary) Total() int64 {
	return s.Customers + s.Products + s.Orders
}

// CSVLoader CSV数据加载器
type CSVLoader struct {
	db        *gorm.DB
	dataDir   string
	batchSize int
}

// NewCSVLoader 创建CSV数据加载器
func NewCSVLoader(db *gorm.DB, dataDir string, batchSize int) *CSVLoader {
	return &CSVLoader{db: db, dataDir: dataDir, batchSize: batchSize}
}

// LoadAll 执行完整加载流程
func (l *CSVLoader) LoadAll(ctx context.Context) (*LoadSummary, error) {
	start := time.Now()
	summary := &LoadSummary{}
	db := l.db.WithContext(ctx)

	// 先清空订单再清空维表，避免悬挂引用
	for _, table := range []string{"orders", "products", "customers"} {
		if err := l.truncate(db, table); err != nil {
			return nil, err
		}
	}

	customers, err := l.readCustomers()
	if err != nil {
		return nil, err
	}
	if err := l.insertBatches(db, "customers", customers); err != nil {
		return nil, err
	}
	summary.Customers = int64(len(customers))

	products, err := l.readProducts()
	if err != nil {
		return nil, err
	}
	if err := l.insertBatches(db, "products", products); err != nil {
		return nil, err
	}
	summary.Products = int64(len(products))

	orders, err := l.readOrders()
	if err != nil {
		return nil, err
	}
	if err := l.insertBatches(db, "orders", orders); err != nil {
		return nil, err
	}
	summary.Orders = int64(len(orders))

	summary.FKValid, err = l.verifyForeignKeys(db)
	if err != nil {
		return nil, err
	}
	summary.Duration = time.Since(start)

	slog.Info("数据加载完成", "customers", summary.Customers,
		"products", summary.Products, "orders", summary.Orders,
		"fk_valid", summary.FKValid, "duration", summary.Duration)
	return summary, nil
}

// truncate 清空表，TRUNCATE不可用时退化为DELETE
func (l *CSVLoader) truncate(db *gorm.DB, table string) error {
	if err := db.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
		slog.Debug("TRUNCATE不可用，使用DELETE清空", "table", table)
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("清空表失败 %s: %v", table, err)
		}
	}
	slog.Info("表已清空", "table", table)
	return nil
}

func (l *CSVLoader) insertBatches(db *gorm.DB, table string, records interface{}) error {
	var count int
	switch v := records.(type) {
	case []models.Customer:
		count = len(v)
	case []models.Product:
		count = len(v)
	case []models.Order:
		count = len(v)
	}
	slog.Info("开始分批插入", "table", table, "rows", count, "batch_size", l.batchSize)

	if err := db.CreateInBatches(records, l.batchSize).Error; err != nil {
		return fmt.Errorf("批量插入失败 %s: %v", table, err)
	}
	return nil
}

// verifyForeignKeys 加载后校验订单外键引用完整性
func (l *CSVLoader) verifyForeignKeys(db *gorm.DB) (bool, error) {
	var orphanedCustomers, orphanedProducts int64

	err := db.Raw(`SELECT COUNT(*) FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.customer_id
		WHERE c.customer_id IS NULL`).Scan(&orphanedCustomers).Error
	if err != nil {
		return false, fmt.Errorf("外键校验失败: %v", err)
	}

	err = db.Raw(`SELECT COUNT(*) FROM orders o
		LEFT JOIN products p ON o.product_id = p.product_id
		WHERE p.product_id IS NULL`).Scan(&orphanedProducts).Error
	if err != nil {
		return false, fmt.Errorf("外键校验失败: %v", err)
	}

	if orphanedCustomers > 0 || orphanedProducts > 0 {
		slog.Warn("发现悬挂外键引用",
			"orphaned_customers", orphanedCustomers,
			"orphaned_products", orphanedProducts)
		return false, nil
	}
	return true, nil
}

func (l *CSVLoader) readCustomers() ([]models.Customer, error) {
	rows, err := l.readCSV(generator.CustomersFile)
	if err != nil {
		return nil, err
	}

	customers := make([]models.Customer, 0, len(rows))
	for _, row := range rows {
		regDate, _ := time.Parse(generator.DateLayout, row["registration_date"])
		customers = append(customers, models.Customer{
			CustomerID:       cast.ToInt(row["customer_id"]),
			FirstName:        row["first_name"],
			LastName:         row["last_name"],
			Email:            optionalString(row["email"]),
			Phone:            row["phone"],
			City:             row["city"],
			State:            row["state"],
			Pincode:          row["pincode"],
			RegistrationDate: regDate,
			Age:              optionalInt(row["age"]),
			Gender:           row["gender"],
		})
	}
	return customers, nil
}

func (l *CSVLoader) readProducts() ([]models.Product, error) {
	rows, err := l.readCSV(generator.ProductsFile)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, models.Product{
			ProductID:     cast.ToInt(row["product_id"]),
			ProductName:   optionalString(row["product_name"]),
			Category:      row["category"],
			Subcategory:   row["subcategory"],
			Brand:         row["brand"],
			Price:         optionalFloat(row["price"]),
			Cost:          cast.ToFloat64(row["cost"]),
			StockQuantity: cast.ToInt(row["stock_quantity"]),
			Supplier:      row["supplier"],
		})
	}
	return products, nil
}

func (l *CSVLoader) readOrders() ([]models.Order, error) {
	rows, err := l.readCSV(generator.OrdersFile)
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		orderDate, _ := time.Parse(generator.DateTimeLayout, row["order_date"])
		orders = append(orders, models.Order{
			OrderID:         cast.ToInt(row["order_id"]),
			CustomerID:      cast.ToInt(row["customer_id"]),
			ProductID:       cast.ToInt(row["product_id"]),
			OrderDate:       orderDate,
			Quantity:        cast.ToInt(row["quantity"]),
			UnitPrice:       cast.ToFloat64(row["unit_price"]),
			TotalAmount:     optionalFloat(row["total_amount"]),
			DiscountApplied: cast.ToFloat64(row["discount_applied"]),
			PaymentMethod:   row["payment_method"],
			OrderStatus:     row["order_status"],
			ShippingCity:    row["shipping_city"],
		})
	}
	return orders, nil
}

// readCSV 读取CSV文件并按表头构建字段映射
func (l *CSVLoader) readCSV(filename string) ([]map[string]string, error) {
	path := filepath.Join(l.dataDir, filename)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开CSV文件失败 %s: %v", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析CSV文件失败 %s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV文件为空 %s", path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	slog.Info("CSV文件已读取", "path", path, "rows", len(rows))
	return rows, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(s string) *int {
	if s == "" {
		return nil
	}
	n := cast.ToInt(s)
	return &n
}

func optionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f := cast.ToFloat64(s)
	return &f
}
