// Package domain 包含商品目录的领域模型
package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus 商品状态
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusRemoved  ProductStatus = "removed"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrAlreadyReviewed 同一用户重复评价
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	// ErrInvalidProduct 商品字段不合法
	ErrInvalidProduct = errors.New("invalid product")
)

// Product 商品实体
// 库存的唯一扣减路径是下单事务内的条件更新，库存永不为负
type Product struct {
	gorm.Model
	Name        string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Brand       string          `gorm:"column:brand;type:varchar(100);index" json:"brand"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Image       string          `gorm:"column:image;type:varchar(512)" json:"image"`
	Category    string          `gorm:"column:category;type:varchar(100);index" json:"category"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	Discount    int             `gorm:"column:discount;not null;default:0" json:"discount"`
	Stock       int             `gorm:"column:stock;not null;default:0" json:"stock"`
	Sold        int             `gorm:"column:sold;not null;default:0" json:"sold"`
	Rating      float64         `gorm:"column:rating;type:decimal(3,1);not null;default:0" json:"rating"`
	ReviewCount int             `gorm:"column:review_count;not null;default:0" json:"review_count"`
	SellerEmail string          `gorm:"column:seller_email;type:varchar(255);index" json:"seller_email"`
	SellerID    string          `gorm:"column:seller_id;type:varchar(64);index" json:"seller_id"`
	Status      ProductStatus   `gorm:"column:status;type:varchar(20);index;not null;default:'active'" json:"status"`
}

func (Product) TableName() string { return "products" }

// Validate 校验商品字段
func (p *Product) Validate() error {
	if p.Name == "" || p.Category == "" {
		return ErrInvalidProduct
	}
	if p.Price.IsNegative() || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}

// Normalize 规范化可变字段（分类统一小写）
func (p *Product) Normalize() {
	p.Category = NormalizeCategory(p.Category)
	if p.Status == "" {
		p.Status = ProductStatusActive
	}
}

// Purchasable 商品是否可购买
func (p *Product) Purchasable() bool {
	return p.Status == ProductStatusActive
}

// HasStock 库存是否满足数量
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// LineDiscount 按商品折扣百分比计算一行的优惠金额（两位小数）。
// 优惠只从商品侧推导，下单请求不接受客户端报价。
func (p *Product) LineDiscount(quantity int) decimal.Decimal {
	if p.Discount <= 0 || quantity < 1 {
		return decimal.Zero
	}
	gross := p.Price.Mul(decimal.NewFromInt(int64(quantity)))
	return gross.Mul(decimal.NewFromInt(int64(p.Discount))).
		Div(decimal.NewFromInt(100)).Round(2)
}

// NormalizeCategory 分类名统一小写去空白
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// Category 商品分类
type Category struct {
	gorm.Model
	Name string `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (Category) TableName() string { return "categories" }

// Review 商品评价，每个用户对一个商品至多一条
type Review struct {
	gorm.Model
	ProductID uint   `gorm:"column:product_id;index;uniqueIndex:idx_product_user;not null" json:"product_id"`
	UserEmail string `gorm:"column:user_email;type:varchar(255);uniqueIndex:idx_product_user;not null" json:"user_email"`
	UserName  string `gorm:"column:user_name;type:varchar(100)" json:"user_name"`
	Rating    int    `gorm:"column:rating;not null" json:"rating"`
	Comment   string `gorm:"column:comment;type:text" json:"comment"`
}

func (Review) TableName() string { return "reviews" }

// Testimonial 首页展示的用户评价
type Testimonial struct {
	gorm.Model
	Author  string `gorm:"column:author;type:varchar(100)" json:"author"`
	Role    string `gorm:"column:role;type:varchar(100)" json:"role"`
	Quote   string `gorm:"column:quote;type:text" json:"quote"`
	Avatar  string `gorm:"column:avatar;type:varchar(512)" json:"avatar"`
	Rating  int    `gorm:"column:rating;not null;default:5" json:"rating"`
	Visible bool   `gorm:"column:visible;not null;default:true" json:"visible"`
}

func (Testimonial) TableName() string { return "testimonials" }
