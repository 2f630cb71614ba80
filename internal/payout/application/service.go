// Package application 卖家提现的用例逻辑
package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/vendersphere/internal/payout/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/metrics"
	"github.com/wyfcoding/vendersphere/pkg/utils"
)

// Balance 卖家余额快照
type Balance struct {
	SellerEmail string          `json:"seller_email"`
	Revenue     decimal.Decimal `json:"revenue"`
	Held        decimal.Decimal `json:"held"`
	Available   decimal.Decimal `json:"available"`
}

// PayoutApplicationService 提现应用服务
type PayoutApplicationService struct {
	payouts domain.PayoutRepository
	ledger  domain.LedgerRepository
	metrics *metrics.Metrics
}

// NewPayoutApplicationService 创建提现应用服务实例
func NewPayoutApplicationService(payouts domain.PayoutRepository, ledger domain.LedgerRepository, m *metrics.Metrics) *PayoutApplicationService {
	return &PayoutApplicationService{payouts: payouts, ledger: ledger, metrics: m}
}

// GetBalance 计算卖家可提余额：已签收营收减去占用中的提现总额。
// 余额不落独立账户表，始终按流水重算，避免双写漂移。
func (s *PayoutApplicationService) GetBalance(ctx context.Context, sellerEmail string) (*Balance, error) {
	revenue, err := s.ledger.DeliveredRevenue(ctx, sellerEmail)
	if err != nil {
		return nil, err
	}
	held, err := s.payouts.HeldAmount(ctx, sellerEmail)
	if err != nil {
		return nil, err
	}
	return &Balance{
		SellerEmail: sellerEmail,
		Revenue:     revenue,
		Held:        held,
		Available:   revenue.Sub(held),
	}, nil
}

// RequestPayout 发起提现：金额为正且不超过可提余额
func (s *PayoutApplicationService) RequestPayout(ctx context.Context, sellerEmail string, amount decimal.Decimal) (*domain.Payout, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidPayoutAmount
	}

	balance, err := s.GetBalance(ctx, sellerEmail)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(balance.Available) {
		return nil, domain.ErrInsufficientBalance
	}

	payout := &domain.Payout{
		PayoutNo:    utils.NewPayoutNo(),
		SellerEmail: sellerEmail,
		Amount:      amount,
		Status:      domain.PayoutStatusPending,
	}
	if err := s.payouts.Save(ctx, payout); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PayoutRequestsTotal.Inc()
	}
	logger.Info(ctx, "Payout requested", "payout_no", payout.PayoutNo,
		"seller", sellerEmail, "amount", amount.String())
	return payout, nil
}

// ListBySeller 卖家自己的提现历史
func (s *PayoutApplicationService) ListBySeller(ctx context.Context, sellerEmail string, page, limit int) ([]*domain.Payout, int64, error) {
	p := utils.Pagination{Page: page, Limit: limit}.Normalize(10, 100)
	return s.payouts.ListBySeller(ctx, sellerEmail, p.Page, p.Limit)
}

// ListAll 管理端提现单列表，可按状态筛选
func (s *PayoutApplicationService) ListAll(ctx context.Context, status domain.PayoutStatus, page, limit int) ([]*domain.Payout, int64, error) {
	p := utils.Pagination{Page: page, Limit: limit}.Normalize(10, 100)
	return s.payouts.List(ctx, status, p.Page, p.Limit)
}

// Approve 审核通过：pending -> approved
func (s *PayoutApplicationService) Approve(ctx context.Context, payoutNo, note string) error {
	if err := s.payouts.UpdateStatusFrom(ctx, payoutNo, domain.PayoutStatusPending, domain.PayoutStatusApproved, note); err != nil {
		return err
	}
	logger.Info(ctx, "Payout approved", "payout_no", payoutNo)
	return nil
}

// Reject 驳回：pending -> rejected，释放余额占用
func (s *PayoutApplicationService) Reject(ctx context.Context, payoutNo, note string) error {
	if err := s.payouts.UpdateStatusFrom(ctx, payoutNo, domain.PayoutStatusPending, domain.PayoutStatusRejected, note); err != nil {
		return err
	}
	logger.Info(ctx, "Payout rejected", "payout_no", payoutNo)
	return nil
}

// MarkPaid 打款完成：approved -> paid
func (s *PayoutApplicationService) MarkPaid(ctx context.Context, payoutNo string) error {
	if err := s.payouts.UpdateStatusFrom(ctx, payoutNo, domain.PayoutStatusApproved, domain.PayoutStatusPaid, ""); err != nil {
		return err
	}
	logger.Info(ctx, "Payout paid", "payout_no", payoutNo)
	return nil
}
