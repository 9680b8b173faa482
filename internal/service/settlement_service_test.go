package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupSettlementServiceTest(t *testing.T) (*SettlementService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "settlement_service_test")
	txnRepo := repository.NewTransactionRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	userRepo := repository.NewUserRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	balanceSvc := NewBalanceService(repository.NewBalanceRepository(db))
	settingSvc := NewSettingService(repository.NewSettingRepository(db))
	notificationSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return NewSettlementService(txnRepo, referralRepo, userRepo, merchantRepo, balanceSvc, settingSvc, notificationSvc), db
}

func openServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserLoginLog{},
		&models.MerchantProfile{},
		&models.CashbackBalance{},
		&models.BalanceEntry{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.Transfer{},
		&models.Referral{},
		&models.QRCode{},
		&models.WithdrawalRequest{},
		&models.Notification{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func createCashbackTestUser(t *testing.T, db *gorm.DB, id uint, role string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           id,
		Email:        fmt.Sprintf("user_%d@example.com", id),
		PasswordHash: "hash",
		DisplayName:  fmt.Sprintf("User %d", id),
		Role:         role,
		ReferralCode: fmt.Sprintf("CODE%04d", id),
		Status:       constants.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if role == constants.RoleMerchant {
		createApprovedMerchantProfile(t, db, id)
	}
	return user
}

func createApprovedMerchantProfile(t *testing.T, db *gorm.DB, userID uint) *models.MerchantProfile {
	t.Helper()
	now := time.Now()
	reviewer := uint(1)
	profile := &models.MerchantProfile{
		UserID:     userID,
		StoreName:  fmt.Sprintf("Loja %d", userID),
		Approved:   true,
		ApprovedBy: &reviewer,
		ApprovedAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create merchant profile failed: %v", err)
	}
	return profile
}

func createTestReferral(t *testing.T, db *gorm.DB, referrerID, referredID uint) *models.Referral {
	t.Helper()
	referral := &models.Referral{
		ReferrerID: referrerID,
		ReferredID: referredID,
		Status:     constants.ReferralStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Create(referral).Error; err != nil {
		t.Fatalf("create referral failed: %v", err)
	}
	return referral
}

func balanceOf(t *testing.T, db *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()
	var balance models.CashbackBalance
	if err := db.Where("user_id = ?", userID).First(&balance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero
		}
		t.Fatalf("load balance failed: %v", err)
	}
	return balance.Balance.Decimal
}

func TestSettlementSplitsAmount(t *testing.T) {
	svc, db := setupSettlementServiceTest(t)
	createCashbackTestUser(t, db, 1, constants.RoleClient)
	createCashbackTestUser(t, db, 2, constants.RoleMerchant)

	txn, err := svc.Settle(SettleInput{
		ClientID:   1,
		MerchantID: 2,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Reference:  "txn:split",
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	if !txn.PlatformFee.Decimal.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("unexpected platform fee: %s", txn.PlatformFee.String())
	}
	if !txn.CashbackAmount.Decimal.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("unexpected cashback: %s", txn.CashbackAmount.String())
	}
	if !txn.MerchantNet.Decimal.Equal(decimal.RequireFromString("95.00")) {
		t.Fatalf("unexpected merchant net: %s", txn.MerchantNet.String())
	}
	if !txn.PlatformFee.Decimal.Add(txn.MerchantNet.Decimal).Equal(txn.Amount.Decimal) {
		t.Fatalf("fee + net must equal amount")
	}
	if txn.Status != constants.TransactionStatusCompleted {
		t.Fatalf("unexpected status: %s", txn.Status)
	}

	if got := balanceOf(t, db, 1); !got.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("unexpected client balance: %s", got)
	}
	if got := balanceOf(t, db, 2); !got.Equal(decimal.RequireFromString("95.00")) {
		t.Fatalf("unexpected merchant balance: %s", got)
	}

	// 拆分审计行：平台费与返现各一条
	var legs []models.TransactionItem
	if err := db.Where("transaction_id = ?", txn.ID).Order("item_type").Find(&legs).Error; err != nil {
		t.Fatalf("load split legs failed: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 split legs, got %d", len(legs))
	}
	if legs[0].ItemType != constants.TransactionItemTypeCashback || !legs[0].Subtotal.Decimal.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("unexpected cashback leg: %s %s", legs[0].ItemType, legs[0].Subtotal.String())
	}
	if legs[1].ItemType != constants.TransactionItemTypePlatformFee || !legs[1].Subtotal.Decimal.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("unexpected fee leg: %s %s", legs[1].ItemType, legs[1].Subtotal.String())
	}
}

func TestSettlementReplayIsIdempotent(t *testing.T) {
	svc, db := setupSettlementServiceTest(t)
	createCashbackTestUser(t, db, 11, constants.RoleClient)
	createCashbackTestUser(t, db, 12, constants.RoleMerchant)

	first, err := svc.Settle(SettleInput{
		ClientID:   11,
		MerchantID: 12,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		Reference:  "txn:replay",
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	second, err := svc.Settle(SettleInput{
		ClientID:   11,
		MerchantID: 12,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		Reference:  "txn:replay",
	})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("replay returned a different transaction: %d != %d", first.ID, second.ID)
	}

	var txnCount int64
	db.Model(&models.Transaction{}).Count(&txnCount)
	if txnCount != 1 {
		t.Fatalf("expected 1 transaction, got %d", txnCount)
	}
	if got := balanceOf(t, db, 11); !got.Equal(decimal.RequireFromString("1.60")) {
		t.Fatalf("client balance changed on replay: %s", got)
	}
}

func TestSettlementReferralBonusPaidOnce(t *testing.T) {
	svc, db := setupSettlementServiceTest(t)
	createCashbackTestUser(t, db, 21, constants.RoleClient)
	createCashbackTestUser(t, db, 22, constants.RoleMerchant)
	referrer := createCashbackTestUser(t, db, 23, constants.RoleClient)
	createTestReferral(t, db, referrer.ID, 21)

	txn, err := svc.Settle(SettleInput{
		ClientID:   21,
		MerchantID: 22,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Reference:  "txn:referral:1",
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if !txn.ReferralBonus.Decimal.Equal(decimal.RequireFromString("1.00")) {
		t.Fatalf("unexpected referral bonus: %s", txn.ReferralBonus.String())
	}
	if got := balanceOf(t, db, referrer.ID); !got.Equal(decimal.RequireFromString("1.00")) {
		t.Fatalf("unexpected referrer balance: %s", got)
	}

	var referral models.Referral
	if err := db.Where("referred_id = ?", 21).First(&referral).Error; err != nil {
		t.Fatalf("load referral failed: %v", err)
	}
	if referral.Status != constants.ReferralStatusQualified {
		t.Fatalf("referral not qualified: %s", referral.Status)
	}
	if referral.QualifiedAt == nil || referral.TransactionID == nil {
		t.Fatalf("referral missing qualification metadata")
	}

	var bonusLegs int64
	db.Model(&models.TransactionItem{}).
		Where("transaction_id = ? AND item_type = ?", txn.ID, constants.TransactionItemTypeReferralBonus).
		Count(&bonusLegs)
	if bonusLegs != 1 {
		t.Fatalf("expected 1 referral bonus leg, got %d", bonusLegs)
	}

	// 第二笔交易不再触发奖励
	if _, err := svc.Settle(SettleInput{
		ClientID:   21,
		MerchantID: 22,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Reference:  "txn:referral:2",
	}); err != nil {
		t.Fatalf("second settle failed: %v", err)
	}
	if got := balanceOf(t, db, referrer.ID); !got.Equal(decimal.RequireFromString("1.00")) {
		t.Fatalf("referral bonus paid twice: %s", got)
	}
}

func TestSettlementReferralBelowMinimum(t *testing.T) {
	svc, db := setupSettlementServiceTest(t)
	createCashbackTestUser(t, db, 31, constants.RoleClient)
	createCashbackTestUser(t, db, 32, constants.RoleMerchant)
	referrer := createCashbackTestUser(t, db, 33, constants.RoleClient)
	createTestReferral(t, db, referrer.ID, 31)

	settingSvc := NewSettingService(repository.NewSettingRepository(db))
	if _, err := settingSvc.UpdateReferralSetting(ReferralSetting{
		MinTransactionAmount: decimal.NewFromInt(50),
	}); err != nil {
		t.Fatalf("update referral setting failed: %v", err)
	}

	if _, err := svc.Settle(SettleInput{
		ClientID:   31,
		MerchantID: 32,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Reference:  "txn:below-min",
	}); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	var referral models.Referral
	if err := db.Where("referred_id = ?", 31).First(&referral).Error; err != nil {
		t.Fatalf("load referral failed: %v", err)
	}
	if referral.Status != constants.ReferralStatusPending {
		t.Fatalf("referral should stay pending below minimum, got %s", referral.Status)
	}
	if got := balanceOf(t, db, referrer.ID); !got.IsZero() {
		t.Fatalf("referrer should not be paid below minimum: %s", got)
	}
}

func TestSettlementRejectsInvalidParties(t *testing.T) {
	svc, db := setupSettlementServiceTest(t)
	client := createCashbackTestUser(t, db, 41, constants.RoleClient)
	createCashbackTestUser(t, db, 42, constants.RoleMerchant)

	if _, err := svc.Settle(SettleInput{
		ClientID:   41,
		MerchantID: 999,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}); err != ErrMerchantNotFound {
		t.Fatalf("expected merchant not found, got: %v", err)
	}

	client.Status = constants.UserStatusDisabled
	if err := db.Save(client).Error; err != nil {
		t.Fatalf("disable client failed: %v", err)
	}
	if _, err := svc.Settle(SettleInput{
		ClientID:   41,
		MerchantID: 42,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}); err != ErrUserDisabled {
		t.Fatalf("expected user disabled, got: %v", err)
	}
}

func TestSettlementRejectsNonPositiveAmount(t *testing.T) {
	svc, db := setupSettlementServiceTest(t)
	createCashbackTestUser(t, db, 51, constants.RoleClient)
	createCashbackTestUser(t, db, 52, constants.RoleMerchant)

	if _, err := svc.Settle(SettleInput{
		ClientID:   51,
		MerchantID: 52,
		Amount:     models.NewMoneyFromDecimal(decimal.Zero),
	}); err != ErrInvalidAmount {
		t.Fatalf("expected invalid amount, got: %v", err)
	}
}

func TestSettlementRejectsUnapprovedMerchant(t *testing.T) {
	svc, db := setupSettlementServiceTest(t)
	createCashbackTestUser(t, db, 61, constants.RoleClient)
	createCashbackTestUser(t, db, 62, constants.RoleMerchant)
	if err := db.Model(&models.MerchantProfile{}).Where("user_id = ?", 62).Update("approved", false).Error; err != nil {
		t.Fatalf("revoke approval failed: %v", err)
	}

	if _, err := svc.Settle(SettleInput{
		ClientID:   61,
		MerchantID: 62,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Reference:  "txn:unapproved",
	}); err != ErrMerchantNotApproved {
		t.Fatalf("expected merchant not approved, got: %v", err)
	}
	if got := balanceOf(t, db, 62); !got.Equal(decimal.Zero) {
		t.Fatalf("merchant balance changed without approval: %s", got)
	}

	if err := db.Model(&models.MerchantProfile{}).Where("user_id = ?", 62).Update("approved", true).Error; err != nil {
		t.Fatalf("approve merchant failed: %v", err)
	}
	txn, err := svc.Settle(SettleInput{
		ClientID:   61,
		MerchantID: 62,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Reference:  "txn:unapproved",
	})
	if err != nil {
		t.Fatalf("settle after approval failed: %v", err)
	}
	if txn.Status != constants.TransactionStatusCompleted {
		t.Fatalf("unexpected status: %s", txn.Status)
	}
}
