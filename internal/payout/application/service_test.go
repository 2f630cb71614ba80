package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/vendersphere/internal/payout/domain"
)

type fakePayoutRepo struct {
	payouts []*domain.Payout
}

func (f *fakePayoutRepo) Save(ctx context.Context, payout *domain.Payout) error {
	f.payouts = append(f.payouts, payout)
	return nil
}

func (f *fakePayoutRepo) GetByPayoutNo(ctx context.Context, payoutNo string) (*domain.Payout, error) {
	for _, payout := range f.payouts {
		if payout.PayoutNo == payoutNo {
			return payout, nil
		}
	}
	return nil, domain.ErrPayoutNotFound
}

func (f *fakePayoutRepo) ListBySeller(ctx context.Context, sellerEmail string, page, limit int) ([]*domain.Payout, int64, error) {
	var result []*domain.Payout
	for _, payout := range f.payouts {
		if payout.SellerEmail == sellerEmail {
			result = append(result, payout)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakePayoutRepo) List(ctx context.Context, status domain.PayoutStatus, page, limit int) ([]*domain.Payout, int64, error) {
	var result []*domain.Payout
	for _, payout := range f.payouts {
		if status == "" || payout.Status == status {
			result = append(result, payout)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakePayoutRepo) UpdateStatusFrom(ctx context.Context, payoutNo string, from, to domain.PayoutStatus, note string) error {
	for _, payout := range f.payouts {
		if payout.PayoutNo != payoutNo {
			continue
		}
		if payout.Status != from {
			return domain.ErrInvalidPayoutTransition
		}
		payout.Status = to
		if note != "" {
			payout.Note = note
		}
		return nil
	}
	return domain.ErrPayoutNotFound
}

func (f *fakePayoutRepo) HeldAmount(ctx context.Context, sellerEmail string) (decimal.Decimal, error) {
	held := decimal.Zero
	holding := map[domain.PayoutStatus]bool{}
	for _, status := range domain.HoldingStatuses() {
		holding[status] = true
	}
	for _, payout := range f.payouts {
		if payout.SellerEmail == sellerEmail && holding[payout.Status] {
			held = held.Add(payout.Amount)
		}
	}
	return held, nil
}

type fakeLedger struct {
	revenue map[string]decimal.Decimal
}

func (f *fakeLedger) DeliveredRevenue(ctx context.Context, sellerEmail string) (decimal.Decimal, error) {
	if revenue, ok := f.revenue[sellerEmail]; ok {
		return revenue, nil
	}
	return decimal.Zero, nil
}

func newFixture(revenue string) (*PayoutApplicationService, *fakePayoutRepo) {
	repo := &fakePayoutRepo{}
	ledger := &fakeLedger{revenue: map[string]decimal.Decimal{
		"seller@example.com": decimal.RequireFromString(revenue),
	}}
	return NewPayoutApplicationService(repo, ledger, nil), repo
}

func TestBalanceDeductsHeldPayouts(t *testing.T) {
	service, repo := newFixture("1000.00")
	repo.payouts = []*domain.Payout{
		{PayoutNo: "PO-1", SellerEmail: "seller@example.com", Amount: decimal.RequireFromString("200.00"), Status: domain.PayoutStatusPending},
		{PayoutNo: "PO-2", SellerEmail: "seller@example.com", Amount: decimal.RequireFromString("100.00"), Status: domain.PayoutStatusPaid},
		{PayoutNo: "PO-3", SellerEmail: "seller@example.com", Amount: decimal.RequireFromString("300.00"), Status: domain.PayoutStatusRejected},
	}

	balance, err := service.GetBalance(context.Background(), "seller@example.com")
	require.NoError(t, err)

	assert.True(t, balance.Revenue.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, balance.Held.Equal(decimal.RequireFromString("300.00")), "rejected payouts release their hold")
	assert.True(t, balance.Available.Equal(decimal.RequireFromString("700.00")))
}

func TestRequestPayoutWithinBalance(t *testing.T) {
	service, repo := newFixture("500.00")

	payout, err := service.RequestPayout(context.Background(), "seller@example.com",
		decimal.RequireFromString("200.00"))
	require.NoError(t, err)

	assert.Equal(t, domain.PayoutStatusPending, payout.Status)
	assert.NotEmpty(t, payout.PayoutNo)
	require.Len(t, repo.payouts, 1)
}

func TestRequestPayoutExceedingBalance(t *testing.T) {
	service, _ := newFixture("500.00")

	_, err := service.RequestPayout(context.Background(), "seller@example.com",
		decimal.RequireFromString("200.00"))
	require.NoError(t, err)

	// 第二笔叠加占用后超过可提余额
	_, err = service.RequestPayout(context.Background(), "seller@example.com",
		decimal.RequireFromString("350.00"))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestRequestPayoutRejectsNonPositiveAmount(t *testing.T) {
	service, _ := newFixture("500.00")

	_, err := service.RequestPayout(context.Background(), "seller@example.com", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidPayoutAmount)

	_, err = service.RequestPayout(context.Background(), "seller@example.com",
		decimal.RequireFromString("-5"))
	assert.ErrorIs(t, err, domain.ErrInvalidPayoutAmount)
}

func TestPayoutLifecycle(t *testing.T) {
	service, repo := newFixture("500.00")
	payout, err := service.RequestPayout(context.Background(), "seller@example.com",
		decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	// approved 之前不能打款
	assert.ErrorIs(t, service.MarkPaid(context.Background(), payout.PayoutNo), domain.ErrInvalidPayoutTransition)

	require.NoError(t, service.Approve(context.Background(), payout.PayoutNo, "ok"))
	assert.Equal(t, domain.PayoutStatusApproved, repo.payouts[0].Status)

	// 已审批不能再驳回
	assert.ErrorIs(t, service.Reject(context.Background(), payout.PayoutNo, ""), domain.ErrInvalidPayoutTransition)

	require.NoError(t, service.MarkPaid(context.Background(), payout.PayoutNo))
	assert.Equal(t, domain.PayoutStatusPaid, repo.payouts[0].Status)
}

func TestRejectReleasesHold(t *testing.T) {
	service, _ := newFixture("500.00")
	payout, err := service.RequestPayout(context.Background(), "seller@example.com",
		decimal.RequireFromString("400.00"))
	require.NoError(t, err)

	_, err = service.RequestPayout(context.Background(), "seller@example.com",
		decimal.RequireFromString("300.00"))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	require.NoError(t, service.Reject(context.Background(), payout.PayoutNo, "bank details invalid"))

	_, err = service.RequestPayout(context.Background(), "seller@example.com",
		decimal.RequireFromString("300.00"))
	assert.NoError(t, err)
}
