package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/internal/user/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	if existing, ok := f.users[user.Email]; ok {
		existing.Name = user.Name
		existing.Photo = user.Photo
		return nil
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, email, role string) error {
	user, ok := f.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Role = role
	return nil
}

func (f *fakeUserRepo) UpdateShop(ctx context.Context, email, shopName string) error {
	user, ok := f.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.ShopName = shopName
	return nil
}

func (f *fakeUserRepo) TopSellers(ctx context.Context, limit int) ([]*domain.User, error) {
	var sellers []*domain.User
	for _, user := range f.users {
		if user.Role == domain.RoleSeller {
			sellers = append(sellers, user)
		}
	}
	if len(sellers) > limit {
		sellers = sellers[:limit]
	}
	return sellers, nil
}

type fakeRequestRepo struct {
	requests map[string]*domain.SellerRequest
}

func (f *fakeRequestRepo) Save(ctx context.Context, request *domain.SellerRequest) error {
	if _, ok := f.requests[request.UserEmail]; ok {
		return domain.ErrSellerRequestExists
	}
	f.requests[request.UserEmail] = request
	return nil
}

func (f *fakeRequestRepo) GetByUserEmail(ctx context.Context, userEmail string) (*domain.SellerRequest, error) {
	request, ok := f.requests[userEmail]
	if !ok {
		return nil, domain.ErrSellerRequestNotFound
	}
	return request, nil
}

func (f *fakeRequestRepo) List(ctx context.Context, status domain.SellerRequestStatus, page, limit int) ([]*domain.SellerRequest, int64, error) {
	var result []*domain.SellerRequest
	for _, request := range f.requests {
		if status == "" || request.Status == status {
			result = append(result, request)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeRequestRepo) UpdateStatusFrom(ctx context.Context, userEmail string, from, to domain.SellerRequestStatus) error {
	request, ok := f.requests[userEmail]
	if !ok {
		return domain.ErrSellerRequestNotFound
	}
	if request.Status != from {
		return domain.ErrInvalidRequestTransition
	}
	request.Status = to
	return nil
}

func (f *fakeRequestRepo) CountPending(ctx context.Context) (int64, error) {
	var count int64
	for _, request := range f.requests {
		if request.Status == domain.SellerRequestPending {
			count++
		}
	}
	return count, nil
}

type fakeProductCounter struct {
	catalogdomain.ProductRepository
	counts map[string]int64
}

func (f *fakeProductCounter) CountBySeller(ctx context.Context, sellerEmail string) (int64, error) {
	return f.counts[sellerEmail], nil
}

func newFixture() (*UserApplicationService, *fakeUserRepo, *fakeRequestRepo) {
	users := &fakeUserRepo{users: make(map[string]*domain.User)}
	requests := &fakeRequestRepo{requests: make(map[string]*domain.SellerRequest)}
	products := &fakeProductCounter{counts: map[string]int64{"s1@example.com": 12}}
	service := NewUserApplicationService(users, requests, products, nil)
	return service, users, requests
}

func TestSyncProfileKeepsExistingRole(t *testing.T) {
	service, users, _ := newFixture()
	ctx := context.Background()

	user, err := service.SyncProfile(ctx, "u@example.com", "User", "u.png")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, user.Role)

	users.users["u@example.com"].Role = domain.RoleSeller
	user, err = service.SyncProfile(ctx, "u@example.com", "Renamed", "new.png")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, user.Role, "role survives profile sync")
	assert.Equal(t, "Renamed", user.Name)
}

func TestRequestSellerFlow(t *testing.T) {
	service, users, requests := newFixture()
	ctx := context.Background()

	_, err := service.SyncProfile(ctx, "u@example.com", "User", "")
	require.NoError(t, err)

	request, err := service.RequestSeller(ctx, "u@example.com", "My Shop", "handmade goods")
	require.NoError(t, err)
	assert.Equal(t, domain.SellerRequestPending, request.Status)

	// 重复申请被拒
	_, err = service.RequestSeller(ctx, "u@example.com", "My Shop", "")
	assert.ErrorIs(t, err, domain.ErrSellerRequestExists)

	// 已是卖家不能再申请
	users.users["u@example.com"].Role = domain.RoleSeller
	delete(requests.requests, "u@example.com")
	_, err = service.RequestSeller(ctx, "u@example.com", "Another Shop", "")
	assert.ErrorIs(t, err, domain.ErrAlreadySeller)
}

func TestApproveSellerPromotesRole(t *testing.T) {
	service, users, requests := newFixture()
	ctx := context.Background()

	_, err := service.SyncProfile(ctx, "u@example.com", "User", "")
	require.NoError(t, err)
	_, err = service.RequestSeller(ctx, "u@example.com", "My Shop", "")
	require.NoError(t, err)

	require.NoError(t, service.ApproveSeller(ctx, "u@example.com"))

	assert.Equal(t, domain.SellerRequestApproved, requests.requests["u@example.com"].Status)
	assert.Equal(t, domain.RoleSeller, users.users["u@example.com"].Role)
	assert.Equal(t, "My Shop", users.users["u@example.com"].ShopName)

	// 二次审批拒绝
	assert.ErrorIs(t, service.ApproveSeller(ctx, "u@example.com"), domain.ErrInvalidRequestTransition)
}

func TestRejectSeller(t *testing.T) {
	service, users, requests := newFixture()
	ctx := context.Background()

	_, err := service.SyncProfile(ctx, "u@example.com", "User", "")
	require.NoError(t, err)
	_, err = service.RequestSeller(ctx, "u@example.com", "My Shop", "")
	require.NoError(t, err)

	require.NoError(t, service.RejectSeller(ctx, "u@example.com"))
	assert.Equal(t, domain.SellerRequestRejected, requests.requests["u@example.com"].Status)
	assert.Equal(t, domain.RoleCustomer, users.users["u@example.com"].Role)
}

func TestTopSellersIncludeProductCounts(t *testing.T) {
	service, users, _ := newFixture()
	users.users["s1@example.com"] = &domain.User{
		Email: "s1@example.com", Name: "Seller One",
		Role: domain.RoleSeller, Rating: 4.8, ShopName: "Shop One",
	}

	sellers, err := service.TopSellers(context.Background())
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, int64(12), sellers[0].ProductCount)
	assert.Equal(t, "Shop One", sellers[0].ShopName)
}
