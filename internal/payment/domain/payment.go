// Package domain 包含支付记录的领域模型
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrPaymentNotFound 支付记录不存在
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrAlreadyPaid 订单已有不同交易号的支付记录
	ErrAlreadyPaid = errors.New("order has already been paid")
	// ErrOrderNotPayable 订单状态不允许记账支付
	ErrOrderNotPayable = errors.New("order is not in a payable status")
	// ErrAmountMismatch 支付金额与订单总额不符
	ErrAmountMismatch = errors.New("payment amount does not match order total")
	// ErrInvalidPayment 支付参数不合法
	ErrInvalidPayment = errors.New("invalid payment")
)

// Payment 支付记录，订单与网关交易的对账凭证。
// 每个订单至多一条，order_no 唯一索引兜底并发重复记账。
type Payment struct {
	gorm.Model
	OrderNo       string          `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null" json:"order_no"`
	UserEmail     string          `gorm:"column:user_email;type:varchar(255);index;not null" json:"user_email"`
	TransactionID string          `gorm:"column:transaction_id;type:varchar(128);index;not null" json:"transaction_id"`
	Method        string          `gorm:"column:method;type:varchar(20);not null" json:"method"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
}

func (Payment) TableName() string { return "payments" }

// Validate 校验支付记录的基本约束
func (p *Payment) Validate() error {
	if p.OrderNo == "" || p.TransactionID == "" {
		return ErrInvalidPayment
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidPayment
	}
	return nil
}
