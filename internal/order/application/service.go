// Package application 订单的用例逻辑：下单、取消、再来一单与履约流转
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	cartdomain "github.com/wyfcoding/vendersphere/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/internal/order/domain"
	"github.com/wyfcoding/vendersphere/pkg/config"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/metrics"
	"github.com/wyfcoding/vendersphere/pkg/utils"
)

// ErrEmptyCart 购物车为空时无法下单
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutPolicy 下单策略：送达估算、取消窗口与运费
type CheckoutPolicy struct {
	FastLaneCity       string
	FastDeliveryDays   int
	NormalDeliveryDays int
	CancelWindow       time.Duration
	FlatShippingFee    decimal.Decimal
}

// PolicyFromConfig 从配置构造下单策略
func PolicyFromConfig(cfg config.CheckoutConfig) (CheckoutPolicy, error) {
	fee, err := decimal.NewFromString(cfg.FlatShippingFee)
	if err != nil {
		return CheckoutPolicy{}, fmt.Errorf("invalid flat_shipping_fee %q: %w", cfg.FlatShippingFee, err)
	}
	return CheckoutPolicy{
		FastLaneCity:       cfg.FastLaneCity,
		FastDeliveryDays:   cfg.FastDeliveryDays,
		NormalDeliveryDays: cfg.NormalDeliveryDays,
		CancelWindow:       time.Duration(cfg.CancelWindowMinutes) * time.Minute,
		FlatShippingFee:    fee,
	}, nil
}

// CheckoutCommand 下单命令
type CheckoutCommand struct {
	UserEmail     string
	Address       domain.ShippingAddress
	PaymentMethod domain.PaymentMethod
}

// OrderApplicationService 订单应用服务
type OrderApplicationService struct {
	orders    domain.OrderRepository
	carts     cartdomain.CartRepository
	products  catalogdomain.ProductRepository
	publisher domain.EventPublisher
	policy    CheckoutPolicy
	metrics   *metrics.Metrics
}

// NewOrderApplicationService 创建订单应用服务实例
func NewOrderApplicationService(
	orders domain.OrderRepository,
	carts cartdomain.CartRepository,
	products catalogdomain.ProductRepository,
	publisher domain.EventPublisher,
	policy CheckoutPolicy,
	m *metrics.Metrics,
) *OrderApplicationService {
	return &OrderApplicationService{
		orders:    orders,
		carts:     carts,
		products:  products,
		publisher: publisher,
		policy:    policy,
		metrics:   m,
	}
}

// Checkout 提交下单：校验购物车每一行、组装订单、单事务扣减库存并落库。
// 任一行不可购买或库存不足则整单失败，不产生订单、不扣减任何库存。
func (s *OrderApplicationService) Checkout(ctx context.Context, cmd CheckoutCommand) (*domain.Order, error) {
	cart, err := s.carts.GetByUserEmail(ctx, cmd.UserEmail)
	if errors.Is(err, cartdomain.ErrCartNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items, discount, err := s.guardAndSnapshot(ctx, cart.Items)
	if err != nil {
		s.countCheckoutFailure()
		return nil, err
	}

	deliveryDays := domain.EstimateDeliveryDays(
		cmd.Address.City, s.policy.FastLaneCity,
		s.policy.FastDeliveryDays, s.policy.NormalDeliveryDays,
	)

	order, err := domain.NewOrder(
		utils.NewOrderNo(), cmd.UserEmail, items, cmd.Address,
		cmd.PaymentMethod, s.policy.FlatShippingFee, discount, deliveryDays,
	)
	if err != nil {
		s.countCheckoutFailure()
		return nil, err
	}

	if err := s.orders.CreateWithStockDecrement(ctx, order); err != nil {
		s.countCheckoutFailure()
		return nil, err
	}

	if err := s.carts.Delete(ctx, cmd.UserEmail); err != nil && !errors.Is(err, cartdomain.ErrCartNotFound) {
		logger.Warn(ctx, "Failed to clear cart after checkout", "user", cmd.UserEmail, "error", err)
	}

	s.publish(ctx, order.OrderNo, domain.OrderCreatedEvent{
		OrderNo:   order.OrderNo,
		UserEmail: order.UserEmail,
		Total:     order.Total.String(),
		Method:    string(order.PaymentMethod),
		Status:    string(order.Status),
		ItemCount: len(order.Items),
		Timestamp: time.Now(),
	})

	if s.metrics != nil {
		s.metrics.OrdersTotal.Inc()
	}
	logger.Info(ctx, "Order created", "order_no", order.OrderNo, "user", order.UserEmail,
		"total", order.Total.String(), "status", order.Status)
	return order, nil
}

// guardAndSnapshot 逐行复核商品可购性与库存，并按商品折扣累计整单优惠。
// 这里的库存检查只为尽早失败给出明确错误；最终不变量由条件扣减保证。
func (s *OrderApplicationService) guardAndSnapshot(ctx context.Context, lines []cartdomain.CartItem) ([]domain.OrderItem, decimal.Decimal, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	discount := decimal.Zero
	for _, line := range lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if !product.Purchasable() {
			return nil, decimal.Zero, fmt.Errorf("%w: product %d", catalogdomain.ErrProductNotFound, line.ProductID)
		}
		if !product.HasStock(line.Quantity) {
			return nil, decimal.Zero, fmt.Errorf("%w: product %d", catalogdomain.ErrInsufficientStock, line.ProductID)
		}
		discount = discount.Add(product.LineDiscount(line.Quantity))
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			Name:        line.Name,
			Price:       line.Price,
			Image:       line.Image,
			Quantity:    line.Quantity,
			SellerEmail: product.SellerEmail,
		})
	}
	return items, discount, nil
}

// Get 获取订单详情；非管理员只能查看自己的订单
func (s *OrderApplicationService) Get(ctx context.Context, userEmail, role, orderNo string) (*domain.Order, error) {
	order, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if role != "admin" && order.UserEmail != userEmail {
		return nil, domain.ErrNotOwner
	}
	return order, nil
}

// ListByUser 分页获取用户订单，按创建时间倒序
func (s *OrderApplicationService) ListByUser(ctx context.Context, userEmail string, page, limit int) ([]*domain.Order, int64, error) {
	p := utils.Pagination{Page: page, Limit: limit}.Normalize(10, 100)
	return s.orders.ListByUser(ctx, userEmail, p.Page, p.Limit)
}

// ListAll 管理端订单列表，可按状态筛选
func (s *OrderApplicationService) ListAll(ctx context.Context, status domain.OrderStatus, page, limit int) ([]*domain.Order, int64, error) {
	p := utils.Pagination{Page: page, Limit: limit}.Normalize(10, 100)
	return s.orders.List(ctx, status, p.Page, p.Limit)
}

// Cancel 取消订单：仅限本人、可取消状态、取消窗口内；同事务回补库存
func (s *OrderApplicationService) Cancel(ctx context.Context, userEmail, role, orderNo string) error {
	order, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return err
	}
	if role != "admin" && order.UserEmail != userEmail {
		return domain.ErrNotOwner
	}
	if !order.CanBeCancelled() {
		return domain.ErrNotCancellable
	}
	if !order.WithinCancelWindow(time.Now(), s.policy.CancelWindow) {
		return domain.ErrCancelWindowExpired
	}

	if err := s.orders.CancelWithRestock(ctx, orderNo); err != nil {
		return err
	}

	s.publish(ctx, orderNo, domain.OrderCancelledEvent{
		OrderNo:   orderNo,
		UserEmail: order.UserEmail,
		Timestamp: time.Now(),
	})
	logger.Info(ctx, "Order cancelled", "order_no", orderNo, "user", order.UserEmail)
	return nil
}

// Reorder 再来一单：将历史订单行（带历史数量）合并进当前购物车。
// 价格取商品当前快照，不沿用历史价。
func (s *OrderApplicationService) Reorder(ctx context.Context, userEmail, orderNo string) error {
	order, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return err
	}
	if order.UserEmail != userEmail {
		return domain.ErrNotOwner
	}

	incoming := make([]cartdomain.CartItem, 0, len(order.Items))
	for _, item := range order.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil || !product.Purchasable() {
			logger.Warn(ctx, "Skipping unavailable product on reorder",
				"order_no", orderNo, "product_id", item.ProductID)
			continue
		}
		incoming = append(incoming, cartdomain.CartItem{
			ProductID: item.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  item.Quantity,
		})
	}
	if len(incoming) == 0 {
		return ErrEmptyCart
	}

	return s.carts.Update(ctx, userEmail, true, func(cart *cartdomain.Cart) error {
		cart.Merge(incoming)
		return nil
	})
}

// MarkShipped 发货：pending/paid -> shipped
func (s *OrderApplicationService) MarkShipped(ctx context.Context, orderNo string) error {
	from := []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusPaid}
	if err := s.orders.UpdateStatusFrom(ctx, orderNo, from, domain.OrderStatusShipped); err != nil {
		return err
	}
	s.publishStatusChange(ctx, orderNo, domain.OrderStatusShipped)
	return nil
}

// MarkDelivered 签收：shipped -> delivered
func (s *OrderApplicationService) MarkDelivered(ctx context.Context, orderNo string) error {
	from := []domain.OrderStatus{domain.OrderStatusShipped}
	if err := s.orders.UpdateStatusFrom(ctx, orderNo, from, domain.OrderStatusDelivered); err != nil {
		return err
	}
	s.publishStatusChange(ctx, orderNo, domain.OrderStatusDelivered)
	return nil
}

func (s *OrderApplicationService) publishStatusChange(ctx context.Context, orderNo string, to domain.OrderStatus) {
	s.publish(ctx, orderNo, domain.OrderStatusChangedEvent{
		OrderNo:   orderNo,
		NewStatus: string(to),
		Timestamp: time.Now(),
	})
	logger.Info(ctx, "Order status changed", "order_no", orderNo, "status", to)
}

func (s *OrderApplicationService) publish(ctx context.Context, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, domain.TopicOrders, key, event); err != nil {
		logger.Warn(ctx, "Failed to publish order event", "key", key, "error", err)
	}
}

func (s *OrderApplicationService) countCheckoutFailure() {
	if s.metrics != nil {
		s.metrics.CheckoutFailuresTotal.Inc()
	}
}
