package application

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/internal/cart/domain"
)

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func (f *fakeCartRepo) GetByUserEmail(ctx context.Context, userEmail string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userEmail]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return cart, nil
}

// Update 持锁执行读-改-写，模拟仓储的事务串行化语义
func (f *fakeCartRepo) Update(ctx context.Context, userEmail string, createIfAbsent bool, mutate func(*domain.Cart) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userEmail]
	if !ok {
		if !createIfAbsent {
			return domain.ErrCartNotFound
		}
		cart = &domain.Cart{UserEmail: userEmail}
	}
	if err := mutate(cart); err != nil {
		return err
	}
	f.carts[userEmail] = cart
	return nil
}

func (f *fakeCartRepo) Delete(ctx context.Context, userEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.carts[userEmail]; !ok {
		return domain.ErrCartNotFound
	}
	delete(f.carts, userEmail)
	return nil
}

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

func newFixture() (*CartApplicationService, *fakeCartRepo) {
	active := &catalogdomain.Product{
		Name:   "widget",
		Price:  decimal.RequireFromString("25.00"),
		Image:  "widget.png",
		Stock:  10,
		Status: catalogdomain.ProductStatusActive,
	}
	active.ID = 1

	inactive := &catalogdomain.Product{Name: "retired", Status: catalogdomain.ProductStatusInactive}
	inactive.ID = 2

	carts := &fakeCartRepo{carts: make(map[string]*domain.Cart)}
	products := &fakeProductRepo{products: map[uint]*catalogdomain.Product{1: active, 2: inactive}}
	return NewCartApplicationService(carts, products, nil), carts
}

func TestAddItemCreatesCartWithSnapshot(t *testing.T) {
	service, carts := newFixture()

	require.NoError(t, service.AddItem(context.Background(), "u@example.com", 1))

	cart := carts.carts["u@example.com"]
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1)
	line := cart.Items[0]
	assert.Equal(t, "widget", line.Name)
	assert.Equal(t, "widget.png", line.Image)
	assert.True(t, line.Price.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, 1, line.Quantity)
}

func TestAddItemTwiceAccumulates(t *testing.T) {
	service, carts := newFixture()

	require.NoError(t, service.AddItem(context.Background(), "u@example.com", 1))
	require.NoError(t, service.AddItem(context.Background(), "u@example.com", 1))

	cart := carts.carts["u@example.com"]
	require.Len(t, cart.Items, 1, "same product must stay on one line")
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddItemRejectsUnavailableProduct(t *testing.T) {
	service, _ := newFixture()

	err := service.AddItem(context.Background(), "u@example.com", 2)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	err = service.AddItem(context.Background(), "u@example.com", 99)
	assert.ErrorIs(t, err, catalogdomain.ErrProductNotFound)
}

func TestGetCartReturnsEmptyWhenAbsent(t *testing.T) {
	service, _ := newFixture()

	cart, err := service.GetCart(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "nobody@example.com", cart.UserEmail)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	service, carts := newFixture()
	require.NoError(t, service.AddItem(context.Background(), "u@example.com", 1))

	require.NoError(t, service.UpdateQuantity(context.Background(), "u@example.com", 1, 5))
	assert.Equal(t, 5, carts.carts["u@example.com"].Items[0].Quantity)

	assert.ErrorIs(t, service.UpdateQuantity(context.Background(), "u@example.com", 1, 0), domain.ErrInvalidQuantity)

	require.NoError(t, service.RemoveItem(context.Background(), "u@example.com", 1))
	assert.Empty(t, carts.carts["u@example.com"].Items)
}

func TestClearCartIsIdempotent(t *testing.T) {
	service, carts := newFixture()
	require.NoError(t, service.AddItem(context.Background(), "u@example.com", 1))

	require.NoError(t, service.ClearCart(context.Background(), "u@example.com"))
	_, ok := carts.carts["u@example.com"]
	assert.False(t, ok)

	// 购物车已不存在也不报错
	assert.NoError(t, service.ClearCart(context.Background(), "u@example.com"))
}

func TestConcurrentAddsOfSameProductAccumulate(t *testing.T) {
	service, carts := newFixture()
	const adders = 16

	errs := make(chan error, adders)
	var wg sync.WaitGroup
	wg.Add(adders)
	for i := 0; i < adders; i++ {
		go func() {
			defer wg.Done()
			errs <- service.AddItem(context.Background(), "u@example.com", 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// 并发加购不丢增量：仍是单行，数量等于加购次数
	cart := carts.carts["u@example.com"]
	require.Len(t, cart.Items, 1)
	assert.Equal(t, adders, cart.Items[0].Quantity)
}
