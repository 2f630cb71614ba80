package mysql

import (
	"context"
	"errors"

	orderdomain "github.com/wyfcoding/vendersphere/internal/order/domain"
	"github.com/wyfcoding/vendersphere/internal/payment/domain"
	pkgdb "github.com/wyfcoding/vendersphere/pkg/db"
	"gorm.io/gorm"
)

type paymentRepository struct{ db *pkgdb.DB }

// NewPaymentRepository 创建支付仓储实例
func NewPaymentRepository(db *pkgdb.DB) domain.PaymentRepository {
	return &paymentRepository{db: db}
}

// RecordPayment 单事务内完成订单状态流转与支付落库。
// 状态条件更新与 order_no 唯一索引共同保证并发重复回调只入账一次。
func (r *paymentRepository) RecordPayment(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&orderdomain.Order{}).
			Where("order_no = ? AND status IN ?", payment.OrderNo, orderdomain.PayableStatuses()).
			UpdateColumn("status", orderdomain.OrderStatusPaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotPayable
		}

		if err := tx.Create(payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrAlreadyPaid
			}
			return err
		}
		return nil
	})
}

func (r *paymentRepository) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userEmail string, page, limit int) ([]*domain.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Payment{}).Where("user_email = ?", userEmail)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []*domain.Payment
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&payments).Error
	return payments, total, err
}
