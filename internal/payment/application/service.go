// Package application 支付对账的用例逻辑
package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	orderdomain "github.com/wyfcoding/vendersphere/internal/order/domain"
	"github.com/wyfcoding/vendersphere/internal/payment/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/metrics"
	"github.com/wyfcoding/vendersphere/pkg/utils"
)

// PaymentApplicationService 支付应用服务
type PaymentApplicationService struct {
	payments  domain.PaymentRepository
	orders    orderdomain.OrderRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewPaymentApplicationService 创建支付应用服务实例
func NewPaymentApplicationService(
	payments domain.PaymentRepository,
	orders orderdomain.OrderRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *PaymentApplicationService {
	return &PaymentApplicationService{payments: payments, orders: orders, publisher: publisher, metrics: m}
}

// Reconcile 支付对账：把网关确认的交易记到订单上。
// 幂等语义：同一交易号重复回调直接返回已有记录；
// 不同交易号打到已支付订单返回 ErrAlreadyPaid。
func (s *PaymentApplicationService) Reconcile(ctx context.Context, userEmail, role, orderNo, transactionID, method string, amount decimal.Decimal) (*domain.Payment, error) {
	order, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if role != "admin" && order.UserEmail != userEmail {
		return nil, orderdomain.ErrNotOwner
	}

	if existing, err := s.payments.GetByOrderNo(ctx, orderNo); err == nil {
		if existing.TransactionID == transactionID {
			return existing, nil
		}
		return nil, domain.ErrAlreadyPaid
	} else if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}

	if !amount.Equal(order.Total) {
		return nil, domain.ErrAmountMismatch
	}

	payment := &domain.Payment{
		OrderNo:       orderNo,
		UserEmail:     order.UserEmail,
		TransactionID: transactionID,
		Method:        method,
		Amount:        amount,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := s.payments.RecordPayment(ctx, payment); err != nil {
		// 并发回调撞了唯一索引：再查一次判定幂等
		if errors.Is(err, domain.ErrAlreadyPaid) {
			if existing, lookupErr := s.payments.GetByOrderNo(ctx, orderNo); lookupErr == nil && existing.TransactionID == transactionID {
				return existing, nil
			}
		}
		return nil, err
	}

	if s.publisher != nil {
		event := domain.PaymentRecordedEvent{
			OrderNo:       orderNo,
			TransactionID: transactionID,
			Method:        method,
			Amount:        amount.String(),
			Timestamp:     time.Now(),
		}
		if err := s.publisher.Publish(ctx, domain.TopicPayments, orderNo, event); err != nil {
			logger.Warn(ctx, "Failed to publish payment event", "order_no", orderNo, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.PaymentsTotal.Inc()
	}

	logger.Info(ctx, "Payment recorded", "order_no", orderNo,
		"transaction_id", transactionID, "amount", amount.String())
	return payment, nil
}

// GetByOrderNo 查询订单的支付记录；非管理员只能查自己的订单
func (s *PaymentApplicationService) GetByOrderNo(ctx context.Context, userEmail, role, orderNo string) (*domain.Payment, error) {
	order, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if role != "admin" && order.UserEmail != userEmail {
		return nil, orderdomain.ErrNotOwner
	}
	return s.payments.GetByOrderNo(ctx, orderNo)
}

// ListByUser 分页返回用户自己的支付记录
func (s *PaymentApplicationService) ListByUser(ctx context.Context, userEmail string, page, limit int) ([]*domain.Payment, int64, error) {
	p := utils.Pagination{Page: page, Limit: limit}.Normalize(10, 100)
	return s.payments.ListByUser(ctx, userEmail, p.Page, p.Limit)
}
