package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartdomain "github.com/wyfcoding/vendersphere/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/internal/order/domain"
)

type fakeProductRepo struct {
	catalogdomain.ProductRepository
	products map[uint]*catalogdomain.Product
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id uint) (*catalogdomain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	return product, nil
}

type fakeCartRepo struct {
	carts map[string]*cartdomain.Cart
}

func (f *fakeCartRepo) GetByUserEmail(ctx context.Context, userEmail string) (*cartdomain.Cart, error) {
	cart, ok := f.carts[userEmail]
	if !ok {
		return nil, cartdomain.ErrCartNotFound
	}
	return cart, nil
}

func (f *fakeCartRepo) Update(ctx context.Context, userEmail string, createIfAbsent bool, mutate func(*cartdomain.Cart) error) error {
	cart, ok := f.carts[userEmail]
	if !ok {
		if !createIfAbsent {
			return cartdomain.ErrCartNotFound
		}
		cart = &cartdomain.Cart{UserEmail: userEmail}
	}
	if err := mutate(cart); err != nil {
		return err
	}
	f.carts[userEmail] = cart
	return nil
}

func (f *fakeCartRepo) Delete(ctx context.Context, userEmail string) error {
	if _, ok := f.carts[userEmail]; !ok {
		return cartdomain.ErrCartNotFound
	}
	delete(f.carts, userEmail)
	return nil
}

type fakeOrderRepo struct {
	products map[uint]*catalogdomain.Product
	orders   map[string]*domain.Order
}

func (f *fakeOrderRepo) CreateWithStockDecrement(ctx context.Context, order *domain.Order) error {
	for _, item := range order.Items {
		product, ok := f.products[item.ProductID]
		if !ok {
			return fmt.Errorf("%w: product %d", catalogdomain.ErrProductNotFound, item.ProductID)
		}
		if product.Stock < item.Quantity {
			return fmt.Errorf("%w: product %d", catalogdomain.ErrInsufficientStock, item.ProductID)
		}
	}
	for _, item := range order.Items {
		f.products[item.ProductID].Stock -= item.Quantity
		f.products[item.ProductID].Sold += item.Quantity
	}
	order.CreatedAt = time.Now()
	f.orders[order.OrderNo] = order
	return nil
}

func (f *fakeOrderRepo) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	order, ok := f.orders[orderNo]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userEmail string, page, limit int) ([]*domain.Order, int64, error) {
	var result []*domain.Order
	for _, order := range f.orders {
		if order.UserEmail == userEmail {
			result = append(result, order)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeOrderRepo) List(ctx context.Context, status domain.OrderStatus, page, limit int) ([]*domain.Order, int64, error) {
	var result []*domain.Order
	for _, order := range f.orders {
		if status == "" || order.Status == status {
			result = append(result, order)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeOrderRepo) CancelWithRestock(ctx context.Context, orderNo string) error {
	order, ok := f.orders[orderNo]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if !order.CanBeCancelled() {
		return domain.ErrNotCancellable
	}
	order.Status = domain.OrderStatusCancelled
	for _, item := range order.Items {
		if product, ok := f.products[item.ProductID]; ok {
			product.Stock += item.Quantity
			product.Sold -= item.Quantity
		}
	}
	return nil
}

func (f *fakeOrderRepo) UpdateStatusFrom(ctx context.Context, orderNo string, from []domain.OrderStatus, to domain.OrderStatus) error {
	order, ok := f.orders[orderNo]
	if !ok {
		return domain.ErrOrderNotFound
	}
	for _, status := range from {
		if order.Status == status {
			order.Status = to
			return nil
		}
	}
	return domain.ErrInvalidTransition
}

func testPolicy() CheckoutPolicy {
	return CheckoutPolicy{
		FastLaneCity:       "dhaka",
		FastDeliveryDays:   3,
		NormalDeliveryDays: 5,
		CancelWindow:       60 * time.Minute,
		FlatShippingFee:    decimal.RequireFromString("60"),
	}
}

func activeProduct(id uint, price string, stock int, seller string) *catalogdomain.Product {
	product := &catalogdomain.Product{
		Name:        fmt.Sprintf("product-%d", id),
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Status:      catalogdomain.ProductStatusActive,
		SellerEmail: seller,
	}
	product.ID = id
	return product
}

func newFixture(products ...*catalogdomain.Product) (*OrderApplicationService, *fakeOrderRepo, *fakeCartRepo) {
	byID := make(map[uint]*catalogdomain.Product)
	for _, product := range products {
		byID[product.ID] = product
	}
	orderRepo := &fakeOrderRepo{products: byID, orders: make(map[string]*domain.Order)}
	cartRepo := &fakeCartRepo{carts: make(map[string]*cartdomain.Cart)}
	productRepo := &fakeProductRepo{products: byID}
	service := NewOrderApplicationService(orderRepo, cartRepo, productRepo, nil, testPolicy(), nil)
	return service, orderRepo, cartRepo
}

func seedCart(cartRepo *fakeCartRepo, userEmail string, items ...cartdomain.CartItem) {
	cartRepo.carts[userEmail] = &cartdomain.Cart{UserEmail: userEmail, Items: items}
}

func cartLine(productID uint, price string, qty int) cartdomain.CartItem {
	return cartdomain.CartItem{
		ProductID: productID,
		Name:      fmt.Sprintf("product-%d", productID),
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	service, orderRepo, cartRepo := newFixture(
		activeProduct(1, "100.00", 5, "seller@example.com"),
		activeProduct(2, "20.00", 10, "seller@example.com"),
	)
	seedCart(cartRepo, "buyer@example.com", cartLine(1, "100.00", 2), cartLine(2, "20.00", 1))

	order, err := service.Checkout(context.Background(), CheckoutCommand{
		UserEmail:     "buyer@example.com",
		Address:       domain.ShippingAddress{Name: "B", Phone: "1", Street: "S", City: "Dhaka"},
		PaymentMethod: domain.PaymentMethodCOD,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("220.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("280.00")))
	assert.Equal(t, 3, order.DeliveryDays)
	assert.Equal(t, "seller@example.com", order.Items[0].SellerEmail)

	assert.Equal(t, 3, orderRepo.products[1].Stock)
	assert.Equal(t, 9, orderRepo.products[2].Stock)
	_, hasCart := cartRepo.carts["buyer@example.com"]
	assert.False(t, hasCart, "cart should be cleared after checkout")
}

func TestCheckoutPrepaidStartsAwaitingPayment(t *testing.T) {
	service, _, cartRepo := newFixture(activeProduct(1, "50.00", 5, "s@example.com"))
	seedCart(cartRepo, "buyer@example.com", cartLine(1, "50.00", 1))

	order, err := service.Checkout(context.Background(), CheckoutCommand{
		UserEmail:     "buyer@example.com",
		Address:       domain.ShippingAddress{City: "Chittagong"},
		PaymentMethod: domain.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(t, 5, order.DeliveryDays)
}

func TestCheckoutDerivesDiscountFromProducts(t *testing.T) {
	discounted := activeProduct(1, "100.00", 5, "s@example.com")
	discounted.Discount = 10
	service, _, cartRepo := newFixture(
		discounted,
		activeProduct(2, "20.00", 10, "s@example.com"),
	)
	seedCart(cartRepo, "buyer@example.com", cartLine(1, "100.00", 2), cartLine(2, "20.00", 1))

	order, err := service.Checkout(context.Background(), CheckoutCommand{
		UserEmail:     "buyer@example.com",
		Address:       domain.ShippingAddress{Name: "B", Phone: "1", Street: "S", City: "Dhaka"},
		PaymentMethod: domain.PaymentMethodCOD,
	})
	require.NoError(t, err)

	// 优惠只从商品折扣推导：2×100 打 9 折优惠 20，无折扣行不参与
	assert.True(t, order.Discount.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("260.00")))
}

func TestCheckoutEmptyCart(t *testing.T) {
	service, _, _ := newFixture()

	_, err := service.Checkout(context.Background(), CheckoutCommand{
		UserEmail:     "buyer@example.com",
		PaymentMethod: domain.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutInsufficientStockIsAtomic(t *testing.T) {
	service, orderRepo, cartRepo := newFixture(
		activeProduct(1, "10.00", 5, "s@example.com"),
		activeProduct(2, "10.00", 1, "s@example.com"),
	)
	seedCart(cartRepo, "buyer@example.com", cartLine(1, "10.00", 2), cartLine(2, "10.00", 3))

	_, err := service.Checkout(context.Background(), CheckoutCommand{
		UserEmail:     "buyer@example.com",
		Address:       domain.ShippingAddress{City: "Dhaka"},
		PaymentMethod: domain.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)

	assert.Empty(t, orderRepo.orders, "no order may be created")
	assert.Equal(t, 5, orderRepo.products[1].Stock, "no stock may be touched")
	assert.Equal(t, 1, orderRepo.products[2].Stock)
	_, hasCart := cartRepo.carts["buyer@example.com"]
	assert.True(t, hasCart, "cart must survive a failed checkout")
}

func TestCheckoutInactiveProductRejected(t *testing.T) {
	product := activeProduct(1, "10.00", 5, "s@example.com")
	product.Status = catalogdomain.ProductStatusInactive
	service, _, cartRepo := newFixture(product)
	seedCart(cartRepo, "buyer@example.com", cartLine(1, "10.00", 1))

	_, err := service.Checkout(context.Background(), CheckoutCommand{
		UserEmail:     "buyer@example.com",
		PaymentMethod: domain.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, catalogdomain.ErrProductNotFound)
}

func TestCancelWithinWindowRestocks(t *testing.T) {
	service, orderRepo, cartRepo := newFixture(activeProduct(1, "10.00", 5, "s@example.com"))
	seedCart(cartRepo, "buyer@example.com", cartLine(1, "10.00", 2))

	order, err := service.Checkout(context.Background(), CheckoutCommand{
		UserEmail:     "buyer@example.com",
		PaymentMethod: domain.PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.Equal(t, 3, orderRepo.products[1].Stock)

	require.NoError(t, service.Cancel(context.Background(), "buyer@example.com", "customer", order.OrderNo))

	assert.Equal(t, domain.OrderStatusCancelled, orderRepo.orders[order.OrderNo].Status)
	assert.Equal(t, 5, orderRepo.products[1].Stock, "stock must be restored")
}

func TestCancelRejections(t *testing.T) {
	service, orderRepo, cartRepo := newFixture(activeProduct(1, "10.00", 5, "s@example.com"))
	seedCart(cartRepo, "buyer@example.com", cartLine(1, "10.00", 1))

	order, err := service.Checkout(context.Background(), CheckoutCommand{
		UserEmail:     "buyer@example.com",
		PaymentMethod: domain.PaymentMethodCOD,
	})
	require.NoError(t, err)

	err = service.Cancel(context.Background(), "other@example.com", "customer", order.OrderNo)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	stored := orderRepo.orders[order.OrderNo]
	stored.CreatedAt = time.Now().Add(-61 * time.Minute)
	err = service.Cancel(context.Background(), "buyer@example.com", "customer", order.OrderNo)
	assert.ErrorIs(t, err, domain.ErrCancelWindowExpired)

	stored.CreatedAt = time.Now()
	stored.Status = domain.OrderStatusShipped
	err = service.Cancel(context.Background(), "buyer@example.com", "customer", order.OrderNo)
	assert.ErrorIs(t, err, domain.ErrNotCancellable)
}

func TestReorderMergesHistoricalQuantities(t *testing.T) {
	service, orderRepo, cartRepo := newFixture(
		activeProduct(1, "12.00", 10, "s@example.com"),
		activeProduct(2, "8.00", 10, "s@example.com"),
	)
	order := &domain.Order{
		OrderNo:   "ORD-HIST",
		UserEmail: "buyer@example.com",
		Items: []domain.OrderItem{
			{ProductID: 1, Price: decimal.RequireFromString("10.00"), Quantity: 3},
			{ProductID: 2, Price: decimal.RequireFromString("8.00"), Quantity: 1},
		},
		Status: domain.OrderStatusDelivered,
	}
	orderRepo.orders[order.OrderNo] = order
	seedCart(cartRepo, "buyer@example.com", cartLine(1, "12.00", 1))

	require.NoError(t, service.Reorder(context.Background(), "buyer@example.com", order.OrderNo))

	cart := cartRepo.carts["buyer@example.com"]
	require.Len(t, cart.Items, 2)
	for _, line := range cart.Items {
		switch line.ProductID {
		case 1:
			assert.Equal(t, 4, line.Quantity, "historical quantity accumulates on existing line")
			assert.True(t, line.Price.Equal(decimal.RequireFromString("12.00")), "existing line keeps its snapshot price")
		case 2:
			assert.Equal(t, 1, line.Quantity)
			assert.True(t, line.Price.Equal(decimal.RequireFromString("8.00")))
		}
	}
}

func TestReorderSkipsUnavailableProducts(t *testing.T) {
	service, orderRepo, cartRepo := newFixture(activeProduct(2, "8.00", 10, "s@example.com"))
	order := &domain.Order{
		OrderNo:   "ORD-HIST",
		UserEmail: "buyer@example.com",
		Items: []domain.OrderItem{
			{ProductID: 99, Price: decimal.RequireFromString("1.00"), Quantity: 1},
			{ProductID: 2, Price: decimal.RequireFromString("8.00"), Quantity: 2},
		},
		Status: domain.OrderStatusDelivered,
	}
	orderRepo.orders[order.OrderNo] = order

	require.NoError(t, service.Reorder(context.Background(), "buyer@example.com", order.OrderNo))

	cart := cartRepo.carts["buyer@example.com"]
	require.Len(t, cart.Items, 1)
	assert.Equal(t, uint(2), cart.Items[0].ProductID)
}

func TestFulfillmentTransitions(t *testing.T) {
	service, orderRepo, cartRepo := newFixture(activeProduct(1, "10.00", 5, "s@example.com"))
	seedCart(cartRepo, "buyer@example.com", cartLine(1, "10.00", 1))

	order, err := service.Checkout(context.Background(), CheckoutCommand{
		UserEmail:     "buyer@example.com",
		PaymentMethod: domain.PaymentMethodCOD,
	})
	require.NoError(t, err)

	require.NoError(t, service.MarkShipped(context.Background(), order.OrderNo))
	assert.Equal(t, domain.OrderStatusShipped, orderRepo.orders[order.OrderNo].Status)

	err = service.MarkShipped(context.Background(), order.OrderNo)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, service.MarkDelivered(context.Background(), order.OrderNo))
	assert.Equal(t, domain.OrderStatusDelivered, orderRepo.orders[order.OrderNo].Status)
}

func TestGetEnforcesOwnership(t *testing.T) {
	service, orderRepo, _ := newFixture()
	orderRepo.orders["ORD-X"] = &domain.Order{OrderNo: "ORD-X", UserEmail: "buyer@example.com"}

	_, err := service.Get(context.Background(), "other@example.com", "customer", "ORD-X")
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	order, err := service.Get(context.Background(), "other@example.com", "admin", "ORD-X")
	require.NoError(t, err)
	assert.Equal(t, "ORD-X", order.OrderNo)
}
