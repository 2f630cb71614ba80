// Package application 商品目录的用例逻辑
package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/pkg/cache"
	"github.com/wyfcoding/vendersphere/pkg/logger"
)

const (
	productCacheTTL  = 5 * time.Minute
	featuredCacheTTL = time.Minute
	featuredLimit    = 12
	flashSaleLimit   = 12
	relatedLimit     = 8
)

// ErrInvalidReview 评价参数不合法
var ErrInvalidReview = errors.New("invalid review")

// AddProductRequest 新增商品请求 DTO
type AddProductRequest struct {
	Name        string
	Brand       string
	Description string
	Image       string
	Category    string
	Price       decimal.Decimal
	Discount    int
	Stock       int
	SellerEmail string
	SellerID    string
}

// CatalogApplicationService 商品目录应用服务
type CatalogApplicationService struct {
	products     domain.ProductRepository
	categories   domain.CategoryRepository
	reviews      domain.ReviewRepository
	testimonials domain.TestimonialRepository
	cache        *cache.RedisCache
	publisher    domain.EventPublisher
}

// NewCatalogApplicationService 创建商品目录应用服务实例
func NewCatalogApplicationService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	reviews domain.ReviewRepository,
	testimonials domain.TestimonialRepository,
	redisCache *cache.RedisCache,
	publisher domain.EventPublisher,
) *CatalogApplicationService {
	return &CatalogApplicationService{
		products:     products,
		categories:   categories,
		reviews:      reviews,
		testimonials: testimonials,
		cache:        redisCache,
		publisher:    publisher,
	}
}

// AddProduct 新增商品：规范化分类、建立分类行、发布创建事件
func (s *CatalogApplicationService) AddProduct(ctx context.Context, req AddProductRequest) (uint, error) {
	product := &domain.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		Price:       req.Price,
		Discount:    req.Discount,
		Stock:       req.Stock,
		SellerEmail: req.SellerEmail,
		SellerID:    req.SellerID,
		Status:      domain.ProductStatusActive,
	}
	product.Normalize()
	if err := product.Validate(); err != nil {
		return 0, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		return 0, fmt.Errorf("failed to save product: %w", err)
	}
	if err := s.categories.EnsureExists(ctx, product.Category); err != nil {
		logger.Warn(ctx, "Failed to upsert category", "category", product.Category, "error", err)
	}

	s.publishEvent(ctx, fmt.Sprintf("product-%d", product.ID), domain.ProductCreatedEvent{
		ProductID:   product.ID,
		Name:        product.Name,
		Category:    product.Category,
		Price:       product.Price.String(),
		Stock:       product.Stock,
		SellerEmail: product.SellerEmail,
		Timestamp:   time.Now(),
	})

	logger.Info(ctx, "Product created", "product_id", product.ID, "seller", product.SellerEmail)
	return product.ID, nil
}

// UpdateProduct 更新商品字段并使缓存失效
func (s *CatalogApplicationService) UpdateProduct(ctx context.Context, id uint, fields map[string]interface{}) error {
	if category, ok := fields["category"].(string); ok {
		fields["category"] = domain.NormalizeCategory(category)
	}
	if err := s.products.Update(ctx, id, fields); err != nil {
		return err
	}
	s.invalidateProduct(ctx, id)
	return nil
}

// SetProductStatus 切换商品状态
func (s *CatalogApplicationService) SetProductStatus(ctx context.Context, id uint, status domain.ProductStatus) error {
	switch status {
	case domain.ProductStatusActive, domain.ProductStatusInactive, domain.ProductStatusRemoved:
	default:
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidProduct, status)
	}
	if err := s.products.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidateProduct(ctx, id)
	s.publishEvent(ctx, fmt.Sprintf("product-%d", id), domain.ProductStatusChangedEvent{
		ProductID: id,
		Status:    string(status),
		Timestamp: time.Now(),
	})
	return nil
}

// DeleteProduct 删除商品
func (s *CatalogApplicationService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateProduct(ctx, id)
	return nil
}

// GetProduct 获取商品详情（cache-aside）
func (s *CatalogApplicationService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	key := productCacheKey(id)
	if s.cache != nil {
		var cached domain.Product
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, product, productCacheTTL); err != nil {
			logger.Warn(ctx, "Failed to cache product", "product_id", id, "error", err)
		}
	}
	return product, nil
}

// ListProducts 商品列表：过滤 + 排序 + 分页
func (s *CatalogApplicationService) ListProducts(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 12
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.products.List(ctx, filter)
}

// FeaturedProducts 精选商品（短缓存）
func (s *CatalogApplicationService) FeaturedProducts(ctx context.Context) ([]*domain.Product, error) {
	const key = "catalog:featured"
	if s.cache != nil {
		var cached []*domain.Product
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}
	products, err := s.products.Featured(ctx, featuredLimit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, products, featuredCacheTTL)
	}
	return products, nil
}

// FlashSaleProducts 限时折扣商品
func (s *CatalogApplicationService) FlashSaleProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.FlashSale(ctx, flashSaleLimit)
}

// RelatedProducts 同分类的相关商品
func (s *CatalogApplicationService) RelatedProducts(ctx context.Context, productID uint) ([]*domain.Product, error) {
	return s.products.Related(ctx, productID, relatedLimit)
}

// SellerProducts 卖家商品列表（分页）
func (s *CatalogApplicationService) SellerProducts(ctx context.Context, sellerEmail string, page, limit int) ([]*domain.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.products.ListBySeller(ctx, sellerEmail, page, limit)
}

// Categories 分类列表
func (s *CatalogApplicationService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

// AddReview 新增评价并重算商品评分聚合
func (s *CatalogApplicationService) AddReview(ctx context.Context, productID uint, userEmail, userName string, rating int, comment string) error {
	if userEmail == "" || rating < 1 || rating > 5 {
		return ErrInvalidReview
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}

	review := &domain.Review{
		ProductID: productID,
		UserEmail: userEmail,
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviews.Save(ctx, review); err != nil {
		return err
	}

	avg, count, err := s.reviews.Aggregate(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	rounded := math.Round(avg*10) / 10
	if err := s.products.UpdateRating(ctx, productID, rounded, count); err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}
	s.invalidateProduct(ctx, productID)

	logger.Info(ctx, "Review added", "product_id", productID, "rating", rating, "new_avg", rounded)
	return nil
}

// ProductReviews 商品评价列表
func (s *CatalogApplicationService) ProductReviews(ctx context.Context, productID uint) ([]*domain.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

// Testimonials 首页评价列表
func (s *CatalogApplicationService) Testimonials(ctx context.Context) ([]*domain.Testimonial, error) {
	return s.testimonials.ListVisible(ctx)
}

func (s *CatalogApplicationService) publishEvent(ctx context.Context, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, domain.TopicProducts, key, event); err != nil {
		logger.Warn(ctx, "Failed to publish catalog event", "key", key, "error", err)
	}
}

func (s *CatalogApplicationService) invalidateProduct(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productCacheKey(id), "catalog:featured"); err != nil {
		logger.Warn(ctx, "Failed to invalidate product cache", "product_id", id, "error", err)
	}
}

func productCacheKey(id uint) string {
	return fmt.Sprintf("catalog:product:%d", id)
}
