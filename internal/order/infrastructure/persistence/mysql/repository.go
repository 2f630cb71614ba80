package mysql

import (
	"context"
	"errors"
	"fmt"

	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/internal/order/domain"
	pkgdb "github.com/wyfcoding/vendersphere/pkg/db"
	"gorm.io/gorm"
)

type orderRepository struct{ db *pkgdb.DB }

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *pkgdb.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

// CreateWithStockDecrement 条件扣减库存并写入订单，全程单事务。
// 条件更新 `stock >= quantity` 是库存不变量的唯一守护：并发下单时
// 数据库行锁保证至多一个超卖请求会看到 0 行受影响并整体回滚。
func (r *orderRepository) CreateWithStockDecrement(ctx context.Context, order *domain.Order) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, item := range order.Items {
			res := tx.Model(&catalogdomain.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumns(map[string]interface{}{
					"stock": gorm.Expr("stock - ?", item.Quantity),
					"sold":  gorm.Expr("sold + ?", item.Quantity),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var count int64
				if err := tx.Model(&catalogdomain.Product{}).
					Where("id = ?", item.ProductID).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return fmt.Errorf("%w: product %d", catalogdomain.ErrProductNotFound, item.ProductID)
				}
				return fmt.Errorf("%w: product %d", catalogdomain.ErrInsufficientStock, item.ProductID)
			}
		}
		return tx.Create(order).Error
	})
}

func (r *orderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("order_no = ?", orderNo).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userEmail string, page, limit int) ([]*domain.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Order{}).Where("user_email = ?", userEmail)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*domain.Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) List(ctx context.Context, status domain.OrderStatus, page, limit int) ([]*domain.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*domain.Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) CancelWithRestock(ctx context.Context, orderNo string) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		var order domain.Order
		if err := tx.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		cancellable := []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusAwaitingPayment}
		res := tx.Model(&domain.Order{}).
			Where("order_no = ? AND status IN ?", orderNo, cancellable).
			UpdateColumn("status", domain.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotCancellable
		}

		for _, item := range order.Items {
			if err := tx.Model(&catalogdomain.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumns(map[string]interface{}{
					"stock": gorm.Expr("stock + ?", item.Quantity),
					"sold":  gorm.Expr("sold - ?", item.Quantity),
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) UpdateStatusFrom(ctx context.Context, orderNo string, from []domain.OrderStatus, to domain.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("order_no = ? AND status IN ?", orderNo, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Order{}).
			Where("order_no = ?", orderNo).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrOrderNotFound
		}
		return domain.ErrInvalidTransition
	}
	return nil
}
