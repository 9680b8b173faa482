package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vale-cashback/api/internal/cache"
	"github.com/vale-cashback/api/internal/repository"
)

const (
	dashboardCacheTTL     = time.Minute
	dashboardMaxRangeDays = 90
	dashboardDefaultDays  = 7
)

// DashboardService 后台仪表盘服务
// 聚合查询结果短缓存，force_refresh 可绕过。
type DashboardService struct {
	repo repository.DashboardRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DashboardSummary 仪表盘总览响应
type DashboardSummary struct {
	RangeDays   int                                  `json:"range_days"`
	Overview    repository.DashboardOverviewRow      `json:"overview"`
	DailyVolume []repository.DashboardVolumeTrendRow `json:"daily_volume"`
	GeneratedAt time.Time                            `json:"generated_at"`
}

// GetSummary 获取仪表盘总览（近 N 天）
func (s *DashboardService) GetSummary(ctx context.Context, days int, forceRefresh bool) (*DashboardSummary, error) {
	if days == 0 {
		days = dashboardDefaultDays
	}
	if days < 1 || days > dashboardMaxRangeDays {
		return nil, ErrDashboardRangeInvalid
	}

	cacheKey := fmt.Sprintf("dashboard:summary:%dd", days)
	if !forceRefresh {
		var cached DashboardSummary
		if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	now := time.Now()
	endAt := now.Add(time.Second)
	startAt := now.AddDate(0, 0, -days)

	overview, err := s.repo.GetOverview(startAt, endAt)
	if err != nil {
		return nil, err
	}
	trend, err := s.repo.GetDailyVolume(startAt, endAt)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		RangeDays:   days,
		Overview:    overview,
		DailyVolume: trend,
		GeneratedAt: now,
	}
	_ = cache.SetJSON(ctx, cacheKey, summary, dashboardCacheTTL)
	return summary, nil
}
