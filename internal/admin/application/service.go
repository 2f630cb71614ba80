// Package application 管理端看板的用例逻辑
package application

import (
	"context"
	"time"

	"github.com/wyfcoding/vendersphere/internal/admin/domain"
	"github.com/wyfcoding/vendersphere/pkg/cache"
	"github.com/wyfcoding/vendersphere/pkg/logger"
)

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

// AdminApplicationService 管理端应用服务
type AdminApplicationService struct {
	dashboard domain.DashboardRepository
	cache     *cache.RedisCache
}

// NewAdminApplicationService 创建管理端应用服务实例
func NewAdminApplicationService(dashboard domain.DashboardRepository, c *cache.RedisCache) *AdminApplicationService {
	return &AdminApplicationService{dashboard: dashboard, cache: c}
}

// Dashboard 看板快照（短缓存削峰）
func (s *AdminApplicationService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	if s.cache != nil {
		var cached domain.Dashboard
		if hit, err := s.cache.GetJSON(ctx, dashboardCacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	snapshot, err := s.dashboard.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, dashboardCacheKey, snapshot, dashboardCacheTTL); err != nil {
			logger.Warn(ctx, "Failed to cache dashboard snapshot", "error", err)
		}
	}
	return snapshot, nil
}
