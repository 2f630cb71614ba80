package domain

import "time"

// TopicOrders 订单事件 topic
const TopicOrders = "vendersphere.orders"

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	OrderNo   string    `json:"order_no"`
	UserEmail string    `json:"user_email"`
	Total     string    `json:"total"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	ItemCount int       `json:"item_count"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCancelledEvent 订单取消事件
type OrderCancelledEvent struct {
	OrderNo   string    `json:"order_no"`
	UserEmail string    `json:"user_email"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderNo   string    `json:"order_no"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}
