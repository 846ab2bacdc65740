/*
 * @module service/generator/csv_writer
 * @description 生成数据的CSV导出，与加载器约定列顺序和时间格式
 * @architecture 分层架构 - 数据生成层
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 接收生成的数据 -> 按表写入CSV文件
 * @rules 列顺序与数据库表结构一致，空值写为空字符串
 * @dependencies encoding/csv, service/models
 * @refs generator.go, service/ingestion/csv_loader.go
 */

package generator

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"ecommerce-pipeline/service/models"
)

// CSV文件名与时间格式，加载器按相同约定解析
const (
	CustomersFile = "customers.csv"
	ProductsFile  = "products.csv"
	OrdersFile    = "orders.csv"

	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// WriteAll 将生成的数据写入目标目录下的三个CSV文件
func WriteAll(dir string, customers []models.Customer, products []models.Product, orders []models.Order) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %v", err)
	}

	if err := writeCustomers(filepath.Join(dir, CustomersFile), customers); err != nil {
		return err
	}
	if err := writeProducts(filepath.Join(dir, ProductsFile), products); err != nil {
		return err
	}
	return writeOrders(filepath.Join(dir, OrdersFile), orders)
}

func writeCustomers(path string, customers []models.Customer) error {
	header := []string{
		"customer_id", "first_name", "last_name", "email", "phone",
		"city", "state", "pincode", "registration_date", "age", "gender",
	}
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{
			strconv.Itoa(c.CustomerID),
			c.FirstName,
			c.LastName,
			stringOrEmpty(c.Email),
			c.Phone,
			c.City,
			c.State,
			c.Pincode,
			c.RegistrationDate.Format(DateLayout),
			intOrEmpty(c.Age),
			c.Gender,
		})
	}
	return writeCSV(path, header, rows)
}

func writeProducts(path string, products []models.Product) error {
	header := []string{
		"product_id", "product_name", "category", "subcategory", "brand",
		"price", "cost", "stock_quantity", "supplier",
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			strconv.Itoa(p.ProductID),
			stringOrEmpty(p.ProductName),
			p.Category,
			p.Subcategory,
			p.Brand,
			floatOrEmpty(p.Price),
			strconv.FormatFloat(p.Cost, 'f', 2, 64),
			strconv.Itoa(p.StockQuantity),
			p.Supplier,
		})
	}
	return writeCSV(path, header, rows)
}

func writeOrders(path string, orders []models.Order) error {
	header := []string{
		"order_id", "customer_id", "product_id", "order_date", "quantity",
		"unit_price", "total_amount", "discount_applied", "payment_method",
		"order_status", "shipping_city",
	}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			strconv.Itoa(o.OrderID),
			strconv.Itoa(o.CustomerID),
			strconv.Itoa(o.ProductID),
			o.OrderDate.Format(DateTimeLayout),
			strconv.Itoa(o.Quantity),
			strconv.FormatFloat(o.UnitPrice, 'f', 2, 64),
			floatOrEmpty(o.TotalAmount),
			strconv.FormatFloat(o.DiscountApplied, 'f', 2, 64),
			o.PaymentMethod,
			o.OrderStatus,
			o.ShippingCity,
		})
	}
	return writeCSV(path, header, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建CSV文件失败 %s: %v", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("CSV表头写入失败: %v", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("CSV数据写入失败: %v", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV写入失败: %v", err)
	}

	slog.Info("CSV文件已写入", "path", path, "rows", len(rows))
	return nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}
