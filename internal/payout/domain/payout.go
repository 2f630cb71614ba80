// Package domain 包含卖家提现的领域模型
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutStatus 提现单状态
type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusApproved PayoutStatus = "approved"
	PayoutStatusRejected PayoutStatus = "rejected"
	PayoutStatusPaid     PayoutStatus = "paid"
)

var (
	// ErrPayoutNotFound 提现单不存在
	ErrPayoutNotFound = errors.New("payout not found")
	// ErrInvalidPayoutAmount 提现金额不合法
	ErrInvalidPayoutAmount = errors.New("invalid payout amount")
	// ErrInsufficientBalance 可提余额不足
	ErrInsufficientBalance = errors.New("insufficient balance for payout")
	// ErrInvalidPayoutTransition 非法提现单状态流转
	ErrInvalidPayoutTransition = errors.New("invalid payout status transition")
)

// Payout 提现单。pending 与 approved 金额视同已占用余额，
// rejected 释放占用，paid 为终态。
type Payout struct {
	gorm.Model
	PayoutNo    string          `gorm:"column:payout_no;type:varchar(32);uniqueIndex;not null" json:"payout_no"`
	SellerEmail string          `gorm:"column:seller_email;type:varchar(255);index;not null" json:"seller_email"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Status      PayoutStatus    `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	Note        string          `gorm:"column:note;type:varchar(500)" json:"note"`
}

func (Payout) TableName() string { return "payouts" }

// HoldingStatuses 占用卖家余额的状态集合
func HoldingStatuses() []PayoutStatus {
	return []PayoutStatus{PayoutStatusPending, PayoutStatusApproved, PayoutStatusPaid}
}

var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutStatusPending:  {PayoutStatusApproved, PayoutStatusRejected},
	PayoutStatusApproved: {PayoutStatusPaid},
}

// CanTransitionTo 校验提现单状态流转是否合法
func (p *Payout) CanTransitionTo(next PayoutStatus) bool {
	for _, allowed := range payoutTransitions[p.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}
