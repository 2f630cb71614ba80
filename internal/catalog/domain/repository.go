package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// SortOrder 商品列表排序方式
type SortOrder string

const (
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortRatingDesc SortOrder = "rating_desc"
	SortNewest     SortOrder = "newest"
	SortSoldDesc   SortOrder = "sold_desc"
)

// ListFilter 商品列表过滤条件
type ListFilter struct {
	// 分类（已规范化）
	Category string
	// 模糊搜索：命中名称或品牌
	Search string
	// 价格区间，nil 表示不限制
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	// 最低评分
	RatingGte float64
	// 仅限有折扣的商品
	FlashOnly bool
	// 卖家 ID
	SellerID string
	// 排序
	Sort SortOrder
	// 分页
	Page  int
	Limit int
}

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	// Update 按字段更新，忽略零值以外由调用方控制
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uint, status ProductStatus) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ListFilter) ([]*Product, int64, error)
	// Featured 评分优先、最新在前
	Featured(ctx context.Context, limit int) ([]*Product, error)
	// FlashSale 折扣大于 0、最新在前
	FlashSale(ctx context.Context, limit int) ([]*Product, error)
	// Related 同分类下的其他商品
	Related(ctx context.Context, productID uint, limit int) ([]*Product, error)
	ListBySeller(ctx context.Context, sellerEmail string, page, limit int) ([]*Product, int64, error)
	CountBySeller(ctx context.Context, sellerEmail string) (int64, error)
	// UpdateRating 写回评分聚合
	UpdateRating(ctx context.Context, id uint, rating float64, reviewCount int) error
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	// EnsureExists 分类不存在则插入
	EnsureExists(ctx context.Context, name string) error
	List(ctx context.Context) ([]*Category, error)
}

// ReviewRepository 评价仓储接口
type ReviewRepository interface {
	// Save 插入评价；同一 (product, user) 已存在时返回 ErrAlreadyReviewed
	Save(ctx context.Context, review *Review) error
	ListByProduct(ctx context.Context, productID uint) ([]*Review, error)
	// Aggregate 返回某商品的平均评分与评价数
	Aggregate(ctx context.Context, productID uint) (avg float64, count int, err error)
}

// TestimonialRepository 首页评价仓储接口
type TestimonialRepository interface {
	ListVisible(ctx context.Context) ([]*Testimonial, error)
}

// EventPublisher 目录事件发布者接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
