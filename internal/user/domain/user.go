// Package domain 包含用户与卖家申请的领域模型
package domain

import (
	"errors"

	"gorm.io/gorm"
)

// 角色常量。身份认证由外部身份源签发的 JWT 承载，
// 这里只维护角色与资料的本地影子记录。
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// SellerRequestStatus 卖家申请状态
type SellerRequestStatus string

const (
	SellerRequestPending  SellerRequestStatus = "pending"
	SellerRequestApproved SellerRequestStatus = "approved"
	SellerRequestRejected SellerRequestStatus = "rejected"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrSellerRequestNotFound 卖家申请不存在
	ErrSellerRequestNotFound = errors.New("seller request not found")
	// ErrSellerRequestExists 已有卖家申请
	ErrSellerRequestExists = errors.New("seller request already exists")
	// ErrAlreadySeller 用户已是卖家
	ErrAlreadySeller = errors.New("user is already a seller")
	// ErrInvalidRequestTransition 非法申请状态流转
	ErrInvalidRequestTransition = errors.New("invalid seller request status transition")
)

// User 用户资料影子记录，登录时按邮箱 upsert
type User struct {
	gorm.Model
	Email    string  `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Name     string  `gorm:"column:name;type:varchar(100)" json:"name"`
	Photo    string  `gorm:"column:photo;type:varchar(512)" json:"photo"`
	Role     string  `gorm:"column:role;type:varchar(20);not null;default:customer" json:"role"`
	ShopName string  `gorm:"column:shop_name;type:varchar(255)" json:"shop_name,omitempty"`
	Rating   float64 `gorm:"column:rating;not null;default:0" json:"rating"`
}

func (User) TableName() string { return "users" }

// IsSeller 是否具备卖家身份
func (u *User) IsSeller() bool {
	return u.Role == RoleSeller || u.Role == RoleAdmin
}

// SellerRequest 卖家入驻申请，每个用户至多一条
type SellerRequest struct {
	gorm.Model
	UserEmail   string              `gorm:"column:user_email;type:varchar(255);uniqueIndex;not null" json:"user_email"`
	ShopName    string              `gorm:"column:shop_name;type:varchar(255);not null" json:"shop_name"`
	Description string              `gorm:"column:description;type:varchar(1000)" json:"description"`
	Status      SellerRequestStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
}

func (SellerRequest) TableName() string { return "seller_requests" }
