/*
 * @module service/generator/generator
 * @description 合成电商数据生成器，按可复现随机种子生成客户、商品和订单数据
 * @architecture 分层架构 - 数据生成层
 * @dependencies math/rand, encoding/csv, service/models
 * @documentReference dev_docs/pipeline_requirements.md
 * @stateFlow 生成客户 -> 生成商品目录 -> 按客户分层生成订单 -> 导出CSV
 * @rules 相同种子必须生成相同数据，订单只引用已生成的客户和商品
 * @refs service/ingestion/, service/config/
 */

package generator

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"ecommerce-pipeline/service/models"
)

// 客户分层：VIP占20%贡献50%订单，普通客户占50%贡献40%，偶发客户占30%贡献10%
const (
	vipCustomerRatio     = 0.2
	regularCustomerRatio = 0.5
	vipOrderRatio        = 0.5
	regularOrderRatio    = 0.4
	orderWindowDays      = 180
	registrationWindow   = 730
)

type cityInfo struct {
	city    string
	state   string
	pincode string
}

var indianCities = []cityInfo{
	{"Mumbai", "Maharashtra", "400001"},
	{"Delhi", "Delhi", "110001"},
	{"Bangalore", "Karnataka", "560001"},
	{"Hyderabad", "Telangana", "500001"},
	{"Chennai", "Tamil Nadu", "600001"},
	{"Kolkata", "West Bengal", "700001"},
	{"Pune", "Maharashtra", "411001"},
	{"Ahmedabad", "Gujarat", "380001"},
	{"Jaipur", "Rajasthan", "302001"},
	{"Lucknow", "Uttar Pradesh", "226001"},
}

var firstNames = []string{
	"Aarav", "Vivaan", "Aditya", "Arjun", "Rohan", "Karan", "Rahul", "Amit",
	"Priya", "Ananya", "Diya", "Ishita", "Kavya", "Meera", "Neha", "Pooja",
	"Raj", "Sanjay", "Vikram", "Suresh", "Deepa", "Lakshmi", "Sunita", "Anita",
}

var lastNames = []string{
	"Sharma", "Verma", "Patel", "Gupta", "Singh", "Kumar", "Reddy", "Nair",
	"Iyer", "Joshi", "Mehta", "Chopra", "Malhotra", "Banerjee", "Das", "Rao",
}

var emailDomains = []string{"gmail.com", "yahoo.com", "outlook.com", "hotmail.com"}

var genders = []string{"Male", "Female", "Other"}

type subcategoryInfo struct {
	name      string
	baseNames []string
	minPrice  float64
	maxPrice  float64
}

type categoryInfo struct {
	name          string
	subcategories []subcategoryInfo
	minStock      int
	maxStock      int
}

var productCatalog = []categoryInfo{
	{
		name:     "Electronics",
		minStock: 20, maxStock: 200,
		subcategories: []subcategoryInfo{
			{"Smartphones", []string{"Samsung Galaxy", "iPhone", "OnePlus", "Xiaomi Redmi", "Realme", "Vivo", "Oppo"}, 8000, 150000},
			{"Laptops", []string{"HP Pavilion", "Dell Inspiron", "Lenovo IdeaPad", "Asus VivoBook", "Acer Aspire", "MacBook"}, 25000, 120000},
			{"Tablets", []string{"iPad", "Samsung Galaxy Tab", "Lenovo Tab", "Amazon Fire", "Mi Pad"}, 10000, 80000},
			{"Headphones", []string{"Sony WH", "JBL", "boAt Rockerz", "OnePlus Buds", "Noise ColorFit", "Realme Buds"}, 500, 25000},
			{"Smart Watches", []string{"Apple Watch", "Samsung Galaxy Watch", "Fitbit", "Amazfit", "boAt Storm", "Noise ColorFit"}, 2000, 50000},
		},
	},
	{
		name:     "Fashion",
		minStock: 50, maxStock: 500,
		subcategories: []subcategoryInfo{
			{"Mens Clothing", []string{"Casual Shirt", "Formal Shirt", "T-Shirt", "Jeans", "Chinos", "Jacket", "Sweater"}, 500, 5000},
			{"Womens Clothing", []string{"Saree", "Kurti", "Dress", "Top", "Jeans", "Palazzo", "Lehenga"}, 600, 8000},
			{"Kids Clothing", []string{"Kids T-Shirt", "Kids Jeans", "Kids Dress", "Kids Shorts", "Kids Sweater"}, 300, 2000},
			{"Footwear", []string{"Sneakers", "Formal Shoes", "Sandals", "Boots", "Slippers", "Sports Shoes"}, 800, 8000},
			{"Accessories", []string{"Watch", "Belt", "Wallet", "Sunglasses", "Cap", "Bag", "Scarf"}, 300, 5000},
		},
	},
	{
		name:     "Home & Kitchen",
		minStock: 30, maxStock: 300,
		subcategories: []subcategoryInfo{
			{"Furniture", []string{"Sofa", "Bed", "Dining Table", "Wardrobe", "Study Table", "Chair", "Bookshelf"}, 3000, 50000},
			{"Kitchen Appliances", []string{"Mixer Grinder", "Microwave", "Refrigerator", "Induction Cooktop", "Electric Kettle", "Toaster"}, 1500, 40000},
			{"Home Decor", []string{"Wall Clock", "Photo Frame", "Curtain", "Carpet", "Vase", "Lamp", "Cushion"}, 200, 5000},
			{"Bedding", []string{"Bedsheet", "Pillow", "Comforter", "Blanket", "Mattress", "Quilt"}, 500, 8000},
			{"Storage", []string{"Storage Box", "Organizer", "Rack", "Cabinet", "Basket", "Drawer"}, 300, 5000},
		},
	},
}

var productVariants = []string{"", "Pro", "Max", "Plus", "Ultra", "Lite", "Classic", "Premium"}
var fashionSizes = []string{"S", "M", "L", "XL", "XXL"}
var fashionColors = []string{"Black", "White", "Blue", "Red", "Green", "Grey"}

var suppliers = []string{
	"Tech Supplies India", "Fashion Hub Pvt Ltd", "Home Essentials Co",
	"Elite Electronics", "Style Distributors", "Kitchen World",
	"Mega Suppliers", "Prime Products", "Smart Solutions Ltd",
}

var paymentMethods = []string{"UPI", "Credit Card", "Debit Card", "Cash on Delivery", "Net Banking"}
var paymentWeights = []int{50, 20, 15, 10, 5}

var orderStatuses = []string{"Delivered", "Shipped", "Processing", "Cancelled"}
var orderStatusWeights = []int{75, 15, 5, 5}

// 每小时下单权重，20点前后为高峰
var hourWeights = []int{
	2, 1, 1, 1, 2, 3, 5, 7,
	8, 10, 12, 15, 18, 20, 22, 24,
	20, 25, 30, 35, 30, 25, 20, 15,
}

var quantityWeights = []int{70, 20, 5, 3, 2}

// Generator 合成数据生成器
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// NewGenerator 创建指定种子的数据生成器
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now(),
	}
}

// GenerateCustomers 生成客户数据，客户ID从1001开始
func (g *Generator) GenerateCustomers(n int) []models.Customer {
	slog.Info("开始生成客户数据", "count", n)

	customers := make([]models.Customer, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[g.rng.Intn(len(firstNames))]
		last := lastNames[g.rng.Intn(len(lastNames))]
		email := fmt.Sprintf("%s.%s%d@%s",
			strings.ToLower(first), strings.ToLower(last), g.rng.Intn(999)+1,
			emailDomains[g.rng.Intn(len(emailDomains))])
		city := indianCities[g.rng.Intn(len(indianCities))]
		age := g.rng.Intn(53) + 18

		customers = append(customers, models.Customer{
			CustomerID:       1001 + i,
			FirstName:        first,
			LastName:         last,
			Email:            &email,
			Phone:            fmt.Sprintf("+91-%d", g.rng.Int63n(4000000000)+6000000000),
			City:             city.city,
			State:            city.state,
			Pincode:          city.pincode,
			RegistrationDate: g.now.AddDate(0, 0, -g.rng.Intn(registrationWindow+1)),
			Age:              &age,
			Gender:           genders[g.rng.Intn(len(genders))],
		})
	}

	slog.Info("客户数据生成完成", "count", len(customers))
	return customers
}

// GenerateProducts 生成商品目录，商品ID从2001开始，三个大类平均分配
func (g *Generator) GenerateProducts(n int) []models.Product {
	slog.Info("开始生成商品数据", "count", n)

	products := make([]models.Product, 0, n)
	productID := 2001
	perCategory := n / len(productCatalog)

	for _, category := range productCatalog {
		perSubcategory := perCategory / len(category.subcategories)
		for _, sub := range category.subcategories {
			for i := 0; i < perSubcategory; i++ {
				base := sub.baseNames[g.rng.Intn(len(sub.baseNames))]
				name := g.productName(category.name, base)
				price := round2(sub.minPrice + g.rng.Float64()*(sub.maxPrice-sub.minPrice))
				cost := round2(price * (0.70 + g.rng.Float64()*0.15))

				products = append(products, models.Product{
					ProductID:     productID,
					ProductName:   &name,
					Category:      category.name,
					Subcategory:   sub.name,
					Brand:         firstWord(base),
					Price:         &price,
					Cost:          cost,
					StockQuantity: category.minStock + g.rng.Intn(category.maxStock-category.minStock+1),
					Supplier:      suppliers[g.rng.Intn(len(suppliers))],
				})
				productID++
			}
		}
	}

	slog.Info("商品数据生成完成", "count", len(products))
	return products
}

// GenerateOrders 按客户分层生成订单，订单ID从3001开始
func (g *Generator) GenerateOrders(customers []models.Customer, products []models.Product, n int) []models.Order {
	slog.Info("开始生成订单数据", "count", n)

	vipEnd := int(float64(len(customers)) * vipCustomerRatio)
	regularEnd := int(float64(len(customers)) * (vipCustomerRatio + regularCustomerRatio))

	vipOrders := int(float64(n) * vipOrderRatio)
	regularOrders := int(float64(n) * regularOrderRatio)
	occasionalOrders := n - vipOrders - regularOrders

	// 按分层比例为每笔订单预分配客户
	assigned := make([]int, 0, n)
	for i := 0; i < vipOrders; i++ {
		assigned = append(assigned, customers[g.rng.Intn(vipEnd)].CustomerID)
	}
	for i := 0; i < regularOrders; i++ {
		assigned = append(assigned, customers[vipEnd+g.rng.Intn(regularEnd-vipEnd)].CustomerID)
	}
	for i := 0; i < occasionalOrders; i++ {
		assigned = append(assigned, customers[regularEnd+g.rng.Intn(len(customers)-regularEnd)].CustomerID)
	}
	g.rng.Shuffle(len(assigned), func(i, j int) {
		assigned[i], assigned[j] = assigned[j], assigned[i]
	})

	startDate := g.now.AddDate(0, 0, -orderWindowDays)
	orders := make([]models.Order, 0, n)

	for i := 0; i < n; i++ {
		customerID := assigned[i]
		orderDate := g.orderTimestamp(startDate)

		product := products[g.rng.Intn(len(products))]
		quantity := weightedChoice(g.rng, quantityWeights) + 1
		unitPrice := 0.0
		if product.Price != nil {
			unitPrice = *product.Price
		}
		subtotal := unitPrice * float64(quantity)

		// VIP客户折扣10-30%，普通5-15%，偶发0-10%
		var discountPct float64
		switch {
		case customerID < 1001+vipEnd:
			discountPct = 0.10 + g.rng.Float64()*0.20
		case customerID < 1001+regularEnd:
			discountPct = 0.05 + g.rng.Float64()*0.10
		default:
			discountPct = g.rng.Float64() * 0.10
		}
		discount := round2(subtotal * discountPct)
		total := round2(subtotal - discount)

		orders = append(orders, models.Order{
			OrderID:         3001 + i,
			CustomerID:      customerID,
			ProductID:       product.ProductID,
			OrderDate:       orderDate,
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			TotalAmount:     &total,
			DiscountApplied: discount,
			PaymentMethod:   paymentMethods[weightedChoice(g.rng, paymentWeights)],
			OrderStatus:     orderStatuses[weightedChoice(g.rng, orderStatusWeights)],
			ShippingCity:    indianCities[g.rng.Intn(len(indianCities))].city,
		})
	}

	slog.Info("订单数据生成完成", "count", len(orders))
	return orders
}

// orderTimestamp 在订单时间窗口内选取日期，小时服从高峰时段权重分布
func (g *Generator) orderTimestamp(startDate time.Time) time.Time {
	day := startDate.AddDate(0, 0, g.rng.Intn(orderWindowDays+1))
	hour := weightedChoice(g.rng, hourWeights)
	return time.Date(day.Year(), day.Month(), day.Day(),
		hour, g.rng.Intn(60), g.rng.Intn(60), 0, day.Location())
}

func (g *Generator) productName(category, base string) string {
	if category == "Fashion" {
		return fmt.Sprintf("%s - %s - %s", base,
			fashionColors[g.rng.Intn(len(fashionColors))],
			fashionSizes[g.rng.Intn(len(fashionSizes))])
	}
	if variant := productVariants[g.rng.Intn(len(productVariants))]; variant != "" {
		return base + " " + variant
	}
	return base
}

// weightedChoice 按权重随机返回索引
func weightedChoice(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := rng.Intn(total)
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
