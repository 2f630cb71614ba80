package domain

import "time"

// TopicPayments 支付事件 topic
const TopicPayments = "vendersphere.payments"

// PaymentRecordedEvent 支付入账事件
type PaymentRecordedEvent struct {
	OrderNo       string    `json:"order_no"`
	TransactionID string    `json:"transaction_id"`
	Method        string    `json:"method"`
	Amount        string    `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}
