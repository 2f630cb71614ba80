// Package application 购物车的用例逻辑
package application

import (
	"context"
	"errors"
	"fmt"

	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/internal/cart/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/metrics"
)

// ErrProductUnavailable 商品不可加购（下架或已移除）
var ErrProductUnavailable = errors.New("product is not available")

// CartApplicationService 购物车应用服务
type CartApplicationService struct {
	carts    domain.CartRepository
	products catalogdomain.ProductRepository
	metrics  *metrics.Metrics
}

// NewCartApplicationService 创建购物车应用服务实例
func NewCartApplicationService(carts domain.CartRepository, products catalogdomain.ProductRepository, m *metrics.Metrics) *CartApplicationService {
	return &CartApplicationService{carts: carts, products: products, metrics: m}
}

// GetCart 获取购物车；不存在时返回空车
func (s *CartApplicationService) GetCart(ctx context.Context, userEmail string) (*domain.Cart, error) {
	cart, err := s.carts.GetByUserEmail(ctx, userEmail)
	if errors.Is(err, domain.ErrCartNotFound) {
		return &domain.Cart{UserEmail: userEmail}, nil
	}
	return cart, err
}

// AddItem 加购一件商品：已有同商品行则数量 +1，否则以实时商品快照追加新行
func (s *CartApplicationService) AddItem(ctx context.Context, userEmail string, productID uint) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Purchasable() {
		return ErrProductUnavailable
	}

	item := domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  1,
	}
	if err := s.mergeIntoCart(ctx, userEmail, []domain.CartItem{item}); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.CartItemsAdded.Inc()
	}
	return nil
}

// MergeItems 将一批行合并进购物车（再来一单复用此路径，带历史数量）
func (s *CartApplicationService) MergeItems(ctx context.Context, userEmail string, items []domain.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	return s.mergeIntoCart(ctx, userEmail, items)
}

// UpdateQuantity 设置某行数量
func (s *CartApplicationService) UpdateQuantity(ctx context.Context, userEmail string, productID uint, quantity int) error {
	return s.carts.Update(ctx, userEmail, false, func(cart *domain.Cart) error {
		return cart.SetQuantity(productID, quantity)
	})
}

// RemoveItem 移除某行
func (s *CartApplicationService) RemoveItem(ctx context.Context, userEmail string, productID uint) error {
	return s.carts.Update(ctx, userEmail, false, func(cart *domain.Cart) error {
		return cart.RemoveItem(productID)
	})
}

// ClearCart 清空购物车（删除整车）
func (s *CartApplicationService) ClearCart(ctx context.Context, userEmail string) error {
	err := s.carts.Delete(ctx, userEmail)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil
	}
	return err
}

func (s *CartApplicationService) mergeIntoCart(ctx context.Context, userEmail string, items []domain.CartItem) error {
	err := s.carts.Update(ctx, userEmail, true, func(cart *domain.Cart) error {
		cart.Merge(items)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	logger.Debug(ctx, "Cart merged", "user", userEmail, "incoming", len(items))
	return nil
}
