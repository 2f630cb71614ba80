// Package domain 管理端看板的读模型
package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CategoryCount 分类商品数
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Dashboard 管理端看板聚合，全部按数据库流水实时计算
type Dashboard struct {
	Users                 int64            `json:"users"`
	Sellers               int64            `json:"sellers"`
	Products              int64            `json:"products"`
	Orders                int64            `json:"orders"`
	OrdersByStatus        map[string]int64 `json:"orders_by_status"`
	GrossRevenue          decimal.Decimal  `json:"gross_revenue"`
	UnitsSold             int64            `json:"units_sold"`
	PendingSellerRequests int64            `json:"pending_seller_requests"`
	PendingPayouts        int64            `json:"pending_payouts"`
	NewsletterSubscribers int64            `json:"newsletter_subscribers"`
	TopCategories         []CategoryCount  `json:"top_categories"`
}

// DashboardRepository 看板聚合查询接口
type DashboardRepository interface {
	Snapshot(ctx context.Context) (*Dashboard, error)
}
