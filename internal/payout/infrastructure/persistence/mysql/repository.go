package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	orderdomain "github.com/wyfcoding/vendersphere/internal/order/domain"
	"github.com/wyfcoding/vendersphere/internal/payout/domain"
	"gorm.io/gorm"
)

type payoutRepository struct{ db *gorm.DB }

// NewPayoutRepository 创建提现单仓储实例
func NewPayoutRepository(db *gorm.DB) domain.PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Save(ctx context.Context, payout *domain.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *payoutRepository) GetByPayoutNo(ctx context.Context, payoutNo string) (*domain.Payout, error) {
	var payout domain.Payout
	err := r.db.WithContext(ctx).Where("payout_no = ?", payoutNo).First(&payout).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPayoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepository) ListBySeller(ctx context.Context, sellerEmail string, page, limit int) ([]*domain.Payout, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Payout{}).Where("seller_email = ?", sellerEmail)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payouts []*domain.Payout
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&payouts).Error
	return payouts, total, err
}

func (r *payoutRepository) List(ctx context.Context, status domain.PayoutStatus, page, limit int) ([]*domain.Payout, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Payout{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payouts []*domain.Payout
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&payouts).Error
	return payouts, total, err
}

func (r *payoutRepository) UpdateStatusFrom(ctx context.Context, payoutNo string, from, to domain.PayoutStatus, note string) error {
	updates := map[string]interface{}{"status": to}
	if note != "" {
		updates["note"] = note
	}
	res := r.db.WithContext(ctx).Model(&domain.Payout{}).
		Where("payout_no = ? AND status = ?", payoutNo, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Payout{}).
			Where("payout_no = ?", payoutNo).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrPayoutNotFound
		}
		return domain.ErrInvalidPayoutTransition
	}
	return nil
}

func (r *payoutRepository) HeldAmount(ctx context.Context, sellerEmail string) (decimal.Decimal, error) {
	var held decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.Payout{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("seller_email = ? AND status IN ?", sellerEmail, domain.HoldingStatuses()).
		Scan(&held).Error
	return held, err
}

type ledgerRepository struct{ db *gorm.DB }

// NewLedgerRepository 创建卖家营收台账实例
func NewLedgerRepository(db *gorm.DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// DeliveredRevenue 已签收订单中该卖家行的营收合计（行单价 × 数量）
func (r *ledgerRepository) DeliveredRevenue(ctx context.Context, sellerEmail string) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.db.WithContext(ctx).Model(&orderdomain.OrderItem{}).
		Select("COALESCE(SUM(order_items.price * order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.seller_email = ? AND orders.status = ?", sellerEmail, orderdomain.OrderStatusDelivered).
		Scan(&revenue).Error
	return revenue, err
}
