package domain

import "context"

// UserRepository 用户仓储接口
type UserRepository interface {
	// Upsert 按邮箱写入或更新资料字段，不覆盖已有角色
	Upsert(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateRole(ctx context.Context, email, role string) error
	UpdateShop(ctx context.Context, email, shopName string) error
	// TopSellers 按评分倒序返回前 limit 位卖家
	TopSellers(ctx context.Context, limit int) ([]*User, error)
}

// SellerRequestRepository 卖家申请仓储接口
type SellerRequestRepository interface {
	// Save 写入申请，用户已有申请时返回 ErrSellerRequestExists
	Save(ctx context.Context, request *SellerRequest) error
	GetByUserEmail(ctx context.Context, userEmail string) (*SellerRequest, error)
	List(ctx context.Context, status SellerRequestStatus, page, limit int) ([]*SellerRequest, int64, error)
	// UpdateStatusFrom 条件化状态流转，不匹配时返回 ErrInvalidRequestTransition
	UpdateStatusFrom(ctx context.Context, userEmail string, from, to SellerRequestStatus) error
	CountPending(ctx context.Context) (int64, error)
}
