package domain

import "context"

// PaymentRepository 支付仓储接口
type PaymentRepository interface {
	// RecordPayment 在单个事务内把订单流转为 paid 并写入支付记录。
	// 订单状态不在可支付集合时返回 ErrOrderNotPayable；
	// 触发 order_no 唯一索引冲突时返回 ErrAlreadyPaid。
	RecordPayment(ctx context.Context, payment *Payment) error

	GetByOrderNo(ctx context.Context, orderNo string) (*Payment, error)

	// ListByUser 按创建时间倒序分页返回用户的支付记录
	ListByUser(ctx context.Context, userEmail string, page, limit int) ([]*Payment, int64, error)
}

// EventPublisher 支付事件发布者接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
