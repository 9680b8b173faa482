package repository

import (
	"fmt"
	"time"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetDailyVolume(startAt, endAt time.Time) ([]DashboardVolumeTrendRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	UsersTotal              int64        `json:"users_total"`
	NewUsers                int64        `json:"new_users"`
	MerchantsTotal          int64        `json:"merchants_total"`
	PendingMerchants        int64        `json:"pending_merchants"`
	Transactions            int64        `json:"transactions"`
	Volume                  models.Money `json:"volume"`
	PlatformFees            models.Money `json:"platform_fees"`
	CashbackPaid            models.Money `json:"cashback_paid"`
	ReferralBonuses         models.Money `json:"referral_bonuses"`
	PendingWithdrawals      int64        `json:"pending_withdrawals"`
	PendingWithdrawalAmount models.Money `json:"pending_withdrawal_amount"`
}

// DashboardVolumeTrendRow 每日交易量统计
type DashboardVolumeTrendRow struct {
	Day          string       `json:"day"`
	Transactions int64        `json:"transactions"`
	Volume       models.Money `json:"volume"`
	CashbackPaid models.Money `json:"cashback_paid"`
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓储
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	if err := r.db.Model(&models.User{}).Count(&result.UsersTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.MerchantProfile{}).Count(&result.MerchantsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.MerchantProfile{}).
		Where("approved = ?", false).
		Count(&result.PendingMerchants).Error; err != nil {
		return result, err
	}

	txnBase := func() *gorm.DB {
		return r.db.Model(&models.Transaction{}).
			Where("status = ? AND created_at >= ? AND created_at < ?",
				constants.TransactionStatusCompleted, startAt, endAt)
	}
	if err := txnBase().Count(&result.Transactions).Error; err != nil {
		return result, err
	}

	var sums struct {
		Volume          models.Money
		PlatformFees    models.Money
		CashbackPaid    models.Money
		ReferralBonuses models.Money
	}
	if err := txnBase().
		Select(`
			COALESCE(SUM(amount), 0) AS volume,
			COALESCE(SUM(platform_fee), 0) AS platform_fees,
			COALESCE(SUM(cashback_amount), 0) AS cashback_paid,
			COALESCE(SUM(referral_bonus), 0) AS referral_bonuses
		`).
		Scan(&sums).Error; err != nil {
		return result, err
	}
	result.Volume = sums.Volume
	result.PlatformFees = sums.PlatformFees
	result.CashbackPaid = sums.CashbackPaid
	result.ReferralBonuses = sums.ReferralBonuses

	if err := r.db.Model(&models.WithdrawalRequest{}).
		Where("status = ?", constants.WithdrawalStatusPending).
		Count(&result.PendingWithdrawals).Error; err != nil {
		return result, err
	}
	var pendingAmount struct {
		Total models.Money
	}
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", constants.WithdrawalStatusPending).
		Scan(&pendingAmount).Error; err != nil {
		return result, err
	}
	result.PendingWithdrawalAmount = pendingAmount.Total

	return result, nil
}

// GetDailyVolume 获取每日交易量趋势
func (r *GormDashboardRepository) GetDailyVolume(startAt, endAt time.Time) ([]DashboardVolumeTrendRow, error) {
	dayExpr := "CAST(date(created_at) AS TEXT)"
	rows := make([]DashboardVolumeTrendRow, 0)
	if err := r.db.Model(&models.Transaction{}).
		Select(fmt.Sprintf(`
			%s AS day,
			COUNT(*) AS transactions,
			COALESCE(SUM(amount), 0) AS volume,
			COALESCE(SUM(cashback_amount), 0) AS cashback_paid
		`, dayExpr)).
		Where("status = ? AND created_at >= ? AND created_at < ?",
			constants.TransactionStatusCompleted, startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
