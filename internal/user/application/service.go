// Package application 用户资料与卖家入驻的用例逻辑
package application

import (
	"context"
	"errors"
	"fmt"

	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	notifyapp "github.com/wyfcoding/vendersphere/internal/notification/application"
	"github.com/wyfcoding/vendersphere/internal/user/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/utils"
)

const topSellerLimit = 8

// TopSeller 首页卖家榜单条目
type TopSeller struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Photo        string  `json:"photo"`
	ShopName     string  `json:"shop_name"`
	Rating       float64 `json:"rating"`
	ProductCount int64   `json:"product_count"`
}

// UserApplicationService 用户应用服务
type UserApplicationService struct {
	users    domain.UserRepository
	requests domain.SellerRequestRepository
	products catalogdomain.ProductRepository
	notify   *notifyapp.NotificationApplicationService
}

// NewUserApplicationService 创建用户应用服务实例
func NewUserApplicationService(
	users domain.UserRepository,
	requests domain.SellerRequestRepository,
	products catalogdomain.ProductRepository,
	notify *notifyapp.NotificationApplicationService,
) *UserApplicationService {
	return &UserApplicationService{users: users, requests: requests, products: products, notify: notify}
}

// SyncProfile 登录同步：按 JWT 中的邮箱 upsert 资料影子记录。
// 新用户默认 customer 角色，已有角色不被覆盖。
func (s *UserApplicationService) SyncProfile(ctx context.Context, email, name, photo string) (*domain.User, error) {
	if err := s.users.Upsert(ctx, &domain.User{
		Email: email,
		Name:  name,
		Photo: photo,
		Role:  domain.RoleCustomer,
	}); err != nil {
		return nil, err
	}
	return s.users.GetByEmail(ctx, email)
}

// GetProfile 查询用户资料
func (s *UserApplicationService) GetProfile(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// RequestSeller 提交卖家入驻申请；已是卖家或已有申请则拒绝
func (s *UserApplicationService) RequestSeller(ctx context.Context, email, shopName, description string) (*domain.SellerRequest, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsSeller() {
		return nil, domain.ErrAlreadySeller
	}

	request := &domain.SellerRequest{
		UserEmail:   email,
		ShopName:    shopName,
		Description: description,
		Status:      domain.SellerRequestPending,
	}
	if err := s.requests.Save(ctx, request); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Seller request submitted", "user", email, "shop", shopName)
	return request, nil
}

// ListSellerRequests 管理端申请列表
func (s *UserApplicationService) ListSellerRequests(ctx context.Context, status domain.SellerRequestStatus, page, limit int) ([]*domain.SellerRequest, int64, error) {
	p := utils.Pagination{Page: page, Limit: limit}.Normalize(10, 100)
	return s.requests.List(ctx, status, p.Page, p.Limit)
}

// ApproveSeller 审批通过：申请流转为 approved、用户晋升为卖家并通知
func (s *UserApplicationService) ApproveSeller(ctx context.Context, userEmail string) error {
	request, err := s.requests.GetByUserEmail(ctx, userEmail)
	if err != nil {
		return err
	}

	if err := s.requests.UpdateStatusFrom(ctx, userEmail, domain.SellerRequestPending, domain.SellerRequestApproved); err != nil {
		return err
	}
	if err := s.users.UpdateRole(ctx, userEmail, domain.RoleSeller); err != nil {
		return err
	}
	if err := s.users.UpdateShop(ctx, userEmail, request.ShopName); err != nil {
		logger.Warn(ctx, "Failed to set shop name on approval", "user", userEmail, "error", err)
	}

	if s.notify != nil {
		s.notify.SendAsync(ctx, userEmail, "Your seller account is approved",
			fmt.Sprintf("Congratulations! Your shop %q is now live on VenderSphere. You can start listing products right away.", request.ShopName))
	}

	logger.Info(ctx, "Seller request approved", "user", userEmail, "shop", request.ShopName)
	return nil
}

// RejectSeller 驳回申请并通知
func (s *UserApplicationService) RejectSeller(ctx context.Context, userEmail string) error {
	if err := s.requests.UpdateStatusFrom(ctx, userEmail, domain.SellerRequestPending, domain.SellerRequestRejected); err != nil {
		return err
	}

	if s.notify != nil {
		s.notify.SendAsync(ctx, userEmail, "About your seller application",
			"Thanks for your interest in selling on VenderSphere. We can't approve your application at this time.")
	}

	logger.Info(ctx, "Seller request rejected", "user", userEmail)
	return nil
}

// TopSellers 首页卖家榜单：按评分取前八位并附在售商品数
func (s *UserApplicationService) TopSellers(ctx context.Context) ([]TopSeller, error) {
	sellers, err := s.users.TopSellers(ctx, topSellerLimit)
	if err != nil {
		return nil, err
	}

	result := make([]TopSeller, 0, len(sellers))
	for _, seller := range sellers {
		count, err := s.products.CountBySeller(ctx, seller.Email)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			logger.Warn(ctx, "Failed to count seller products", "seller", seller.Email, "error", err)
		}
		result = append(result, TopSeller{
			Email:        seller.Email,
			Name:         seller.Name,
			Photo:        seller.Photo,
			ShopName:     seller.ShopName,
			Rating:       seller.Rating,
			ProductCount: count,
		})
	}
	return result, nil
}
