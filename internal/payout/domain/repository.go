package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PayoutRepository 提现单仓储接口
type PayoutRepository interface {
	Save(ctx context.Context, payout *Payout) error
	GetByPayoutNo(ctx context.Context, payoutNo string) (*Payout, error)
	ListBySeller(ctx context.Context, sellerEmail string, page, limit int) ([]*Payout, int64, error)
	// List 管理端列表，status 为空表示全部
	List(ctx context.Context, status PayoutStatus, page, limit int) ([]*Payout, int64, error)
	// UpdateStatusFrom 条件化状态流转，当前状态不匹配时返回 ErrInvalidPayoutTransition
	UpdateStatusFrom(ctx context.Context, payoutNo string, from, to PayoutStatus, note string) error
	// HeldAmount 统计某卖家处于占用状态的提现总额
	HeldAmount(ctx context.Context, sellerEmail string) (decimal.Decimal, error)
}

// LedgerRepository 卖家营收台账：从订单流水推导可提余额的读模型
type LedgerRepository interface {
	// DeliveredRevenue 已签收订单中该卖家行的营收合计
	DeliveredRevenue(ctx context.Context, sellerEmail string) (decimal.Decimal, error)
}
