// Package domain 包含订单的领域模型
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus 订单状态，闭合枚举
type OrderStatus string

const (
	// OrderStatusPending 货到付款订单的初始状态
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusAwaitingPayment 预付订单的初始状态，等待网关确认
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// Prepaid 是否为预付方式
func (m PaymentMethod) Prepaid() bool {
	return m == PaymentMethodCard || m == PaymentMethodWallet
}

// Valid 是否为已知支付方式
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodWallet:
		return true
	}
	return false
}

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidOrderRequest 下单请求不合法
	ErrInvalidOrderRequest = errors.New("invalid order request")
	// ErrNotCancellable 订单状态不允许取消
	ErrNotCancellable = errors.New("order cannot be cancelled in its current status")
	// ErrCancelWindowExpired 超出取消窗口
	ErrCancelWindowExpired = errors.New("cancellation window has expired")
	// ErrInvalidTransition 非法状态流转
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrNotOwner 非订单所有者
	ErrNotOwner = errors.New("order does not belong to this user")
)

// ShippingAddress 收货地址
type ShippingAddress struct {
	Name   string `gorm:"column:ship_name;type:varchar(100)" json:"name"`
	Phone  string `gorm:"column:ship_phone;type:varchar(30)" json:"phone"`
	Street string `gorm:"column:ship_street;type:varchar(255)" json:"street"`
	City   string `gorm:"column:ship_city;type:varchar(100)" json:"city"`
	Region string `gorm:"column:ship_region;type:varchar(100)" json:"region"`
}

// Order 订单实体
// 创建后除状态与支付关联外逻辑不可变，永不物理删除
type Order struct {
	gorm.Model
	OrderNo       string          `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null" json:"order_no"`
	UserEmail     string          `gorm:"column:user_email;type:varchar(255);index;not null" json:"user_email"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Address       ShippingAddress `gorm:"embedded" json:"address"`
	PaymentMethod PaymentMethod   `gorm:"column:payment_method;type:varchar(20);not null" json:"payment_method"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:decimal(20,2);not null" json:"subtotal"`
	ShippingFee   decimal.Decimal `gorm:"column:shipping_fee;type:decimal(20,2);not null" json:"shipping_fee"`
	Discount      decimal.Decimal `gorm:"column:discount;type:decimal(20,2);not null" json:"discount"`
	Total         decimal.Decimal `gorm:"column:total;type:decimal(20,2);not null" json:"total"`
	Status        OrderStatus     `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	DeliveryDays  int             `gorm:"column:delivery_days;not null" json:"delivery_days"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 订单行，价格/名称/图片为下单时快照
type OrderItem struct {
	gorm.Model
	OrderID     uint            `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID   uint            `gorm:"column:product_id;index;not null" json:"product_id"`
	Name        string          `gorm:"column:name;type:varchar(255)" json:"name"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(20,2)" json:"price"`
	Image       string          `gorm:"column:image;type:varchar(512)" json:"image"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	SellerEmail string          `gorm:"column:seller_email;type:varchar(255);index" json:"seller_email"`
}

func (OrderItem) TableName() string { return "order_items" }

// NewOrder 组装订单：重算金额、推导初始状态与预计送达天数。
// 预付方式从 awaiting_payment 起步，支付确认由支付对账服务完成。
func NewOrder(orderNo, userEmail string, items []OrderItem, address ShippingAddress, method PaymentMethod, shippingFee, discount decimal.Decimal, deliveryDays int) (*Order, error) {
	if userEmail == "" || len(items) == 0 {
		return nil, ErrInvalidOrderRequest
	}
	if !method.Valid() {
		return nil, ErrInvalidOrderRequest
	}
	if shippingFee.IsNegative() || discount.IsNegative() {
		return nil, ErrInvalidOrderRequest
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidOrderRequest
		}
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total := subtotal.Add(shippingFee).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	status := OrderStatusPending
	if method.Prepaid() {
		status = OrderStatusAwaitingPayment
	}

	return &Order{
		OrderNo:       orderNo,
		UserEmail:     userEmail,
		Items:         items,
		Address:       address,
		PaymentMethod: method,
		Subtotal:      subtotal,
		ShippingFee:   shippingFee,
		Discount:      discount,
		Total:         total,
		Status:        status,
		DeliveryDays:  deliveryDays,
	}, nil
}

// EstimateDeliveryDays 按目的城市估算送达天数（快递优先城市走快车道）
func EstimateDeliveryDays(city, fastLaneCity string, fastDays, normalDays int) int {
	if strings.EqualFold(strings.TrimSpace(city), strings.TrimSpace(fastLaneCity)) {
		return fastDays
	}
	return normalDays
}

// CanBeCancelled 订单状态是否允许取消
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusAwaitingPayment
}

// WithinCancelWindow 是否处于取消窗口内
func (o *Order) WithinCancelWindow(now time.Time, window time.Duration) bool {
	return now.Sub(o.CreatedAt) <= window
}

// CanTransitionTo 校验状态流转是否合法
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[o.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:         {OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusAwaitingPayment: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:            {OrderStatusShipped},
	OrderStatusShipped:         {OrderStatusDelivered},
}

// PayableStatuses 允许记账为已支付的状态集合
func PayableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusAwaitingPayment}
}
