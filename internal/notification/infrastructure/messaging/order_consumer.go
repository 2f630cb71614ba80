// Package messaging 消费领域事件并触发通知
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	orderdomain "github.com/wyfcoding/vendersphere/internal/order/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/mq"
)

// Mailer 异步发信接口
type Mailer interface {
	SendAsync(ctx context.Context, to, subject, body string)
}

// OrderEventConsumer 消费订单事件，向买家发送下单确认邮件
type OrderEventConsumer struct {
	consumer *mq.KafkaConsumer
	mailer   Mailer
}

// NewOrderEventConsumer 创建订单事件消费者
func NewOrderEventConsumer(cfg mq.KafkaConfig, mailer Mailer) *OrderEventConsumer {
	return &OrderEventConsumer{
		consumer: mq.NewConsumer(cfg, orderdomain.TopicOrders),
		mailer:   mailer,
	}
}

// Start 循环消费直到 ctx 取消
func (c *OrderEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handle)
}

// Close 关闭底层消费者
func (c *OrderEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *OrderEventConsumer) handle(ctx context.Context, key, value []byte) error {
	var event orderdomain.OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to decode order event: %w", err)
	}
	// 取消与状态变更事件共用同一 topic，但没有支付方式字段，跳过
	if event.Method == "" || event.OrderNo == "" || event.UserEmail == "" {
		return nil
	}

	c.mailer.SendAsync(ctx, event.UserEmail,
		fmt.Sprintf("Order %s confirmed", event.OrderNo),
		fmt.Sprintf("Thanks for your order %s. Total: %s. We'll let you know once it ships.",
			event.OrderNo, event.Total))

	logger.Debug(ctx, "Order confirmation mail queued", "order_no", event.OrderNo)
	return nil
}
