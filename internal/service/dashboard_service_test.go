package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDashboardServiceTest(t *testing.T) (*DashboardService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "dashboard_service_test")
	return NewDashboardService(repository.NewDashboardRepository(db)), db
}

func createDashboardTestTxn(t *testing.T, db *gorm.DB, status, amount, fee, cashback, bonus string) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		ClientID:       1,
		MerchantID:     2,
		Type:           constants.TransactionTypePurchase,
		Status:         status,
		Amount:         models.NewMoneyFromDecimal(decimal.RequireFromString(amount)),
		PlatformFee:    models.NewMoneyFromDecimal(decimal.RequireFromString(fee)),
		CashbackAmount: models.NewMoneyFromDecimal(decimal.RequireFromString(cashback)),
		ReferralBonus:  models.NewMoneyFromDecimal(decimal.RequireFromString(bonus)),
		Reference:      fmt.Sprintf("txn:dash:%d", time.Now().UnixNano()),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	return txn
}

func TestDashboardSummaryAggregates(t *testing.T) {
	svc, db := setupDashboardServiceTest(t)
	createCashbackTestUser(t, db, 1, constants.RoleClient)
	createCashbackTestUser(t, db, 2, constants.RoleMerchant)
	pending := createCashbackTestUser(t, db, 3, constants.RoleMerchant)
	if err := db.Model(&models.MerchantProfile{}).Where("user_id = ?", pending.ID).Update("approved", false).Error; err != nil {
		t.Fatalf("revoke approval failed: %v", err)
	}

	createDashboardTestTxn(t, db, constants.TransactionStatusCompleted, "100.00", "5.00", "2.00", "0")
	createDashboardTestTxn(t, db, constants.TransactionStatusCompleted, "50.00", "2.50", "1.00", "0.50")
	// 未完成交易不计入统计
	createDashboardTestTxn(t, db, constants.TransactionStatusPending, "999.00", "0", "0", "0")

	withdrawal := &models.WithdrawalRequest{
		UserID:    2,
		Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("40.00")),
		Status:    constants.WithdrawalStatusPending,
		Method:    constants.WithdrawalMethodPix,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(withdrawal).Error; err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}

	summary, err := svc.GetSummary(context.Background(), 0, true)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.RangeDays != 7 {
		t.Fatalf("expected default range of 7 days, got %d", summary.RangeDays)
	}

	ov := summary.Overview
	if ov.UsersTotal != 3 || ov.NewUsers != 3 {
		t.Fatalf("unexpected user counts: %+v", ov)
	}
	if ov.MerchantsTotal != 2 || ov.PendingMerchants != 1 {
		t.Fatalf("unexpected merchant counts: %+v", ov)
	}
	if ov.Transactions != 2 {
		t.Fatalf("expected 2 completed transactions, got %d", ov.Transactions)
	}
	if !ov.Volume.Decimal.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("unexpected volume: %s", ov.Volume.String())
	}
	if !ov.PlatformFees.Decimal.Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("unexpected fees: %s", ov.PlatformFees.String())
	}
	if !ov.CashbackPaid.Decimal.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("unexpected cashback: %s", ov.CashbackPaid.String())
	}
	if !ov.ReferralBonuses.Decimal.Equal(decimal.RequireFromString("0.50")) {
		t.Fatalf("unexpected referral bonuses: %s", ov.ReferralBonuses.String())
	}
	if ov.PendingWithdrawals != 1 || !ov.PendingWithdrawalAmount.Decimal.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("unexpected pending withdrawals: %+v", ov)
	}

	if len(summary.DailyVolume) != 1 {
		t.Fatalf("expected 1 trend row, got %d", len(summary.DailyVolume))
	}
	day := summary.DailyVolume[0]
	if day.Transactions != 2 || !day.Volume.Decimal.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("unexpected trend row: %+v", day)
	}
}

func TestDashboardSummaryRejectsInvalidRange(t *testing.T) {
	svc, _ := setupDashboardServiceTest(t)

	if _, err := svc.GetSummary(context.Background(), 91, true); err != ErrDashboardRangeInvalid {
		t.Fatalf("expected range invalid, got: %v", err)
	}
	if _, err := svc.GetSummary(context.Background(), -1, true); err != ErrDashboardRangeInvalid {
		t.Fatalf("expected range invalid, got: %v", err)
	}
}
