package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderItem(productID uint, price string, qty int) OrderItem {
	return OrderItem{
		ProductID: productID,
		Name:      "product",
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestNewOrderComputesTotals(t *testing.T) {
	items := []OrderItem{orderItem(1, "100.00", 2), orderItem(2, "49.50", 1)}

	order, err := NewOrder("ORD-1", "u@example.com", items, ShippingAddress{City: "Dhaka"},
		PaymentMethodCOD, decimal.RequireFromString("60"), decimal.RequireFromString("10"), 3)
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("249.50")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("299.50")))
	assert.Equal(t, 3, order.DeliveryDays)
}

func TestNewOrderTotalNeverNegative(t *testing.T) {
	items := []OrderItem{orderItem(1, "10.00", 1)}

	order, err := NewOrder("ORD-2", "u@example.com", items, ShippingAddress{},
		PaymentMethodCOD, decimal.Zero, decimal.RequireFromString("500"), 5)
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.Zero))
}

func TestNewOrderInitialStatus(t *testing.T) {
	tests := []struct {
		method PaymentMethod
		want   OrderStatus
	}{
		{PaymentMethodCOD, OrderStatusPending},
		{PaymentMethodCard, OrderStatusAwaitingPayment},
		{PaymentMethodWallet, OrderStatusAwaitingPayment},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			order, err := NewOrder("ORD-3", "u@example.com",
				[]OrderItem{orderItem(1, "10.00", 1)}, ShippingAddress{},
				tt.method, decimal.Zero, decimal.Zero, 5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, order.Status)
		})
	}
}

func TestNewOrderValidation(t *testing.T) {
	valid := []OrderItem{orderItem(1, "10.00", 1)}

	_, err := NewOrder("ORD-4", "", valid, ShippingAddress{}, PaymentMethodCOD, decimal.Zero, decimal.Zero, 5)
	assert.ErrorIs(t, err, ErrInvalidOrderRequest)

	_, err = NewOrder("ORD-4", "u@example.com", nil, ShippingAddress{}, PaymentMethodCOD, decimal.Zero, decimal.Zero, 5)
	assert.ErrorIs(t, err, ErrInvalidOrderRequest)

	_, err = NewOrder("ORD-4", "u@example.com", valid, ShippingAddress{}, "bitcoin", decimal.Zero, decimal.Zero, 5)
	assert.ErrorIs(t, err, ErrInvalidOrderRequest)

	_, err = NewOrder("ORD-4", "u@example.com", []OrderItem{orderItem(1, "10.00", 0)},
		ShippingAddress{}, PaymentMethodCOD, decimal.Zero, decimal.Zero, 5)
	assert.ErrorIs(t, err, ErrInvalidOrderRequest)
}

func TestEstimateDeliveryDays(t *testing.T) {
	assert.Equal(t, 3, EstimateDeliveryDays("Dhaka", "dhaka", 3, 5))
	assert.Equal(t, 3, EstimateDeliveryDays("  DHAKA ", "dhaka", 3, 5))
	assert.Equal(t, 5, EstimateDeliveryDays("Chittagong", "dhaka", 3, 5))
	assert.Equal(t, 5, EstimateDeliveryDays("", "dhaka", 3, 5))
}

func TestCancelWindow(t *testing.T) {
	window := 60 * time.Minute
	order := &Order{Status: OrderStatusPending}
	order.CreatedAt = time.Now().Add(-10 * time.Minute)
	assert.True(t, order.WithinCancelWindow(time.Now(), window))

	order.CreatedAt = time.Now().Add(-61 * time.Minute)
	assert.False(t, order.WithinCancelWindow(time.Now(), window))
}

func TestCanBeCancelled(t *testing.T) {
	for status, want := range map[OrderStatus]bool{
		OrderStatusPending:         true,
		OrderStatusAwaitingPayment: true,
		OrderStatusPaid:            false,
		OrderStatusShipped:         false,
		OrderStatusDelivered:       false,
		OrderStatusCancelled:       false,
	} {
		order := &Order{Status: status}
		assert.Equal(t, want, order.CanBeCancelled(), "status %s", status)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusAwaitingPayment, OrderStatusPaid, true},
		{OrderStatusAwaitingPayment, OrderStatusShipped, false},
		{OrderStatusPaid, OrderStatusShipped, true},
		{OrderStatusPaid, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		order := &Order{Status: tt.from}
		assert.Equal(t, tt.allowed, order.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
