package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"gorm.io/gorm"
)

type productRepository struct{ db *gorm.DB }

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	// 防止覆盖主键
	delete(fields, "id")
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return domain.ErrProductNotFound
		}
	}
	return nil
}

func (r *productRepository) UpdateStatus(ctx context.Context, id uint, status domain.ProductStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).
		UpdateColumn("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", domain.NormalizeCategory(filter.Category))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR brand LIKE ?", pattern, pattern)
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", filter.PriceMax)
	}
	if filter.RatingGte > 0 {
		query = query.Where("rating >= ?", filter.RatingGte)
	}
	if filter.FlashOnly {
		query = query.Where("discount > 0")
	}
	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case domain.SortPriceAsc:
		query = query.Order("price ASC")
	case domain.SortPriceDesc:
		query = query.Order("price DESC")
	case domain.SortRatingDesc:
		query = query.Order("rating DESC")
	case domain.SortSoldDesc:
		query = query.Order("sold DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []*domain.Product
	offset := (filter.Page - 1) * filter.Limit
	err := query.Offset(offset).Limit(filter.Limit).Find(&products).Error
	return products, total, err
}

func (r *productRepository) Featured(ctx context.Context, limit int) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.ProductStatusActive).
		Order("rating DESC, created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) FlashSale(ctx context.Context, limit int) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Where("discount > 0 AND status = ?", domain.ProductStatusActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Related(ctx context.Context, productID uint, limit int) ([]*domain.Product, error) {
	product, err := r.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	var products []*domain.Product
	err = r.db.WithContext(ctx).
		Where("category = ? AND id != ?", product.Category, product.ID).
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) ListBySeller(ctx context.Context, sellerEmail string, page, limit int) ([]*domain.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{}).Where("seller_email = ?", sellerEmail)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*domain.Product
	err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepository) CountBySeller(ctx context.Context, sellerEmail string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("seller_email = ?", sellerEmail).Count(&count).Error
	return count, err
}

func (r *productRepository) UpdateRating(ctx context.Context, id uint, rating float64, reviewCount int) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"rating":       rating,
			"review_count": reviewCount,
		}).Error
}

type categoryRepository struct{ db *gorm.DB }

// NewCategoryRepository 创建分类仓储实例
func NewCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) EnsureExists(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).
		Where(domain.Category{Name: name}).
		FirstOrCreate(&domain.Category{Name: name}).Error
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

type reviewRepository struct{ db *gorm.DB }

// NewReviewRepository 创建评价仓储实例
func NewReviewRepository(db *gorm.DB) domain.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Save(ctx context.Context, review *domain.Review) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("product_id = ? AND user_email = ?", review.ProductID, review.UserEmail).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrAlreadyReviewed
	}
	err := r.db.WithContext(ctx).Create(review).Error
	// 并发下唯一索引兜底
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyReviewed
	}
	return err
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID uint) ([]*domain.Review, error) {
	var reviews []*domain.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) Aggregate(ctx context.Context, productID uint) (float64, int, error) {
	type agg struct {
		Avg   float64
		Count int
	}
	var result agg
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&result).Error
	return result.Avg, result.Count, err
}

type testimonialRepository struct{ db *gorm.DB }

// NewTestimonialRepository 创建首页评价仓储实例
func NewTestimonialRepository(db *gorm.DB) domain.TestimonialRepository {
	return &testimonialRepository{db: db}
}

func (r *testimonialRepository) ListVisible(ctx context.Context) ([]*domain.Testimonial, error) {
	var testimonials []*domain.Testimonial
	err := r.db.WithContext(ctx).Where("visible = ?", true).Find(&testimonials).Error
	return testimonials, err
}
