package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/vendersphere/internal/admin/domain"
	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	notifydomain "github.com/wyfcoding/vendersphere/internal/notification/domain"
	orderdomain "github.com/wyfcoding/vendersphere/internal/order/domain"
	payoutdomain "github.com/wyfcoding/vendersphere/internal/payout/domain"
	userdomain "github.com/wyfcoding/vendersphere/internal/user/domain"
	"gorm.io/gorm"
)

const topCategoryLimit = 5

// 计入营收的订单状态
var revenueStatuses = []orderdomain.OrderStatus{
	orderdomain.OrderStatusPaid,
	orderdomain.OrderStatusShipped,
	orderdomain.OrderStatusDelivered,
}

type dashboardRepository struct{ db *gorm.DB }

// NewDashboardRepository 创建看板聚合查询实例
func NewDashboardRepository(db *gorm.DB) domain.DashboardRepository {
	return &dashboardRepository{db: db}
}

// Snapshot 全量聚合一次看板数据。查询串行执行，量级上管理端低频调用可接受。
func (r *dashboardRepository) Snapshot(ctx context.Context) (*domain.Dashboard, error) {
	db := r.db.WithContext(ctx)
	dashboard := &domain.Dashboard{OrdersByStatus: make(map[string]int64)}

	if err := db.Model(&userdomain.User{}).Count(&dashboard.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&userdomain.User{}).
		Where("role = ?", userdomain.RoleSeller).
		Count(&dashboard.Sellers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&catalogdomain.Product{}).Count(&dashboard.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&orderdomain.Order{}).Count(&dashboard.Orders).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var byStatus []statusCount
	if err := db.Model(&orderdomain.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		dashboard.OrdersByStatus[row.Status] = row.Count
	}

	var revenue decimal.Decimal
	if err := db.Model(&orderdomain.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("status IN ?", revenueStatuses).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	dashboard.GrossRevenue = revenue

	if err := db.Model(&orderdomain.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", revenueStatuses).
		Scan(&dashboard.UnitsSold).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&userdomain.SellerRequest{}).
		Where("status = ?", userdomain.SellerRequestPending).
		Count(&dashboard.PendingSellerRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&payoutdomain.Payout{}).
		Where("status = ?", payoutdomain.PayoutStatusPending).
		Count(&dashboard.PendingPayouts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&notifydomain.Subscriber{}).
		Count(&dashboard.NewsletterSubscribers).Error; err != nil {
		return nil, err
	}

	var categories []domain.CategoryCount
	if err := db.Model(&catalogdomain.Product{}).
		Select("category, COUNT(*) AS count").
		Where("status = ?", catalogdomain.ProductStatusActive).
		Group("category").
		Order("count DESC").
		Limit(topCategoryLimit).
		Scan(&categories).Error; err != nil {
		return nil, err
	}
	dashboard.TopCategories = categories

	return dashboard, nil
}
