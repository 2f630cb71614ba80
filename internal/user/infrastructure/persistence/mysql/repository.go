package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/vendersphere/internal/user/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct{ db *gorm.DB }

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Upsert 按邮箱落资料；冲突时只刷新资料字段，角色由审批流程单独维护
func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "photo", "updated_at"}),
	}).Create(user).Error
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, email, role string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", email).
		UpdateColumn("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateShop(ctx context.Context, email, shopName string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", email).
		UpdateColumn("shop_name", shopName)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) TopSellers(ctx context.Context, limit int) ([]*domain.User, error) {
	var sellers []*domain.User
	err := r.db.WithContext(ctx).
		Where("role = ?", domain.RoleSeller).
		Order("rating DESC, created_at DESC").
		Limit(limit).
		Find(&sellers).Error
	return sellers, err
}

type sellerRequestRepository struct{ db *gorm.DB }

// NewSellerRequestRepository 创建卖家申请仓储实例
func NewSellerRequestRepository(db *gorm.DB) domain.SellerRequestRepository {
	return &sellerRequestRepository{db: db}
}

func (r *sellerRequestRepository) Save(ctx context.Context, request *domain.SellerRequest) error {
	err := r.db.WithContext(ctx).Create(request).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrSellerRequestExists
	}
	return err
}

func (r *sellerRequestRepository) GetByUserEmail(ctx context.Context, userEmail string) (*domain.SellerRequest, error) {
	var request domain.SellerRequest
	err := r.db.WithContext(ctx).Where("user_email = ?", userEmail).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSellerRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *sellerRequestRepository) List(ctx context.Context, status domain.SellerRequestStatus, page, limit int) ([]*domain.SellerRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.SellerRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []*domain.SellerRequest
	err := query.Order("created_at ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&requests).Error
	return requests, total, err
}

func (r *sellerRequestRepository) UpdateStatusFrom(ctx context.Context, userEmail string, from, to domain.SellerRequestStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.SellerRequest{}).
		Where("user_email = ? AND status = ?", userEmail, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.SellerRequest{}).
			Where("user_email = ?", userEmail).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrSellerRequestNotFound
		}
		return domain.ErrInvalidRequestTransition
	}
	return nil
}

func (r *sellerRequestRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.SellerRequest{}).
		Where("status = ?", domain.SellerRequestPending).
		Count(&count).Error
	return count, err
}
