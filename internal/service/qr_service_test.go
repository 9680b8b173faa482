package service

import (
	"testing"
	"time"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupQRServiceTest(t *testing.T) (*QRService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "qr_service_test")
	qrRepo := repository.NewQRCodeRepository(db)
	userRepo := repository.NewUserRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	balanceSvc := NewBalanceService(repository.NewBalanceRepository(db))
	settingSvc := NewSettingService(repository.NewSettingRepository(db))
	notificationSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	settlementSvc := NewSettlementService(
		repository.NewTransactionRepository(db),
		repository.NewReferralRepository(db),
		userRepo,
		merchantRepo,
		balanceSvc,
		settingSvc,
		notificationSvc,
	)
	return NewQRService(qrRepo, userRepo, merchantRepo, settlementSvc, nil, 15, 128), db
}

func TestQRGenerateAndVerify(t *testing.T) {
	svc, db := setupQRServiceTest(t)
	createCashbackTestUser(t, db, 1, constants.RoleMerchant)

	result, err := svc.Generate(QRGenerateInput{
		MerchantID:  1,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Description: "Pedido 42",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if result.QRCode.Status != constants.QRCodeStatusActive {
		t.Fatalf("unexpected status: %s", result.QRCode.Status)
	}
	if result.QRCode.Code == "" || result.ImagePNG == "" {
		t.Fatalf("expected code and image to be rendered")
	}

	qr, err := svc.Verify(result.QRCode.Code)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if qr.ID != result.QRCode.ID {
		t.Fatalf("verify returned wrong code")
	}
}

func TestQRGenerateRejectsNonMerchant(t *testing.T) {
	svc, db := setupQRServiceTest(t)
	createCashbackTestUser(t, db, 2, constants.RoleClient)

	if _, err := svc.Generate(QRGenerateInput{
		MerchantID: 2,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}); err != ErrMerchantNotFound {
		t.Fatalf("expected merchant not found, got: %v", err)
	}
}

func TestQRGenerateRejectsUnapprovedMerchant(t *testing.T) {
	svc, db := setupQRServiceTest(t)
	createCashbackTestUser(t, db, 3, constants.RoleMerchant)
	if err := db.Model(&models.MerchantProfile{}).Where("user_id = ?", 3).Update("approved", false).Error; err != nil {
		t.Fatalf("revoke approval failed: %v", err)
	}

	if _, err := svc.Generate(QRGenerateInput{
		MerchantID: 3,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}); err != ErrMerchantNotApproved {
		t.Fatalf("expected merchant not approved, got: %v", err)
	}

	if err := db.Model(&models.MerchantProfile{}).Where("user_id = ?", 3).Update("approved", true).Error; err != nil {
		t.Fatalf("approve merchant failed: %v", err)
	}
	if _, err := svc.Generate(QRGenerateInput{
		MerchantID: 3,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}); err != nil {
		t.Fatalf("generate after approval failed: %v", err)
	}
}

func TestQRPayConsumesCode(t *testing.T) {
	svc, db := setupQRServiceTest(t)
	createCashbackTestUser(t, db, 11, constants.RoleMerchant)
	createCashbackTestUser(t, db, 12, constants.RoleClient)

	result, err := svc.Generate(QRGenerateInput{
		MerchantID: 11,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	txn, err := svc.Pay(12, result.QRCode.Code)
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if txn.Type != constants.TransactionTypeQRPayment {
		t.Fatalf("unexpected transaction type: %s", txn.Type)
	}
	if txn.QRCodeID == nil || *txn.QRCodeID != result.QRCode.ID {
		t.Fatalf("transaction not linked to qr code")
	}
	if !txn.MerchantNet.Decimal.Equal(decimal.RequireFromString("95.00")) {
		t.Fatalf("unexpected merchant net: %s", txn.MerchantNet.String())
	}

	var qr models.QRCode
	if err := db.First(&qr, result.QRCode.ID).Error; err != nil {
		t.Fatalf("load qr failed: %v", err)
	}
	if qr.Status != constants.QRCodeStatusUsed {
		t.Fatalf("qr code not marked used: %s", qr.Status)
	}
	if qr.UsedByID == nil || *qr.UsedByID != 12 {
		t.Fatalf("qr code missing payer")
	}

	// 二次支付同一码必须失败
	if _, err := svc.Pay(12, result.QRCode.Code); err != ErrQRCodeAlreadyUsed {
		t.Fatalf("expected already used, got: %v", err)
	}
}

func TestQRPayExpiredCode(t *testing.T) {
	svc, db := setupQRServiceTest(t)
	createCashbackTestUser(t, db, 21, constants.RoleMerchant)
	createCashbackTestUser(t, db, 22, constants.RoleClient)

	result, err := svc.Generate(QRGenerateInput{
		MerchantID: 21,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := db.Model(&models.QRCode{}).Where("id = ?", result.QRCode.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire qr failed: %v", err)
	}

	if _, err := svc.Pay(22, result.QRCode.Code); err != ErrQRCodeExpired {
		t.Fatalf("expected expired, got: %v", err)
	}
	if _, err := svc.Verify(result.QRCode.Code); err != ErrQRCodeExpired {
		t.Fatalf("expected expired on verify, got: %v", err)
	}

	var qr models.QRCode
	if err := db.First(&qr, result.QRCode.ID).Error; err != nil {
		t.Fatalf("load qr failed: %v", err)
	}
	if qr.Status != constants.QRCodeStatusExpired {
		t.Fatalf("qr code not lazily expired: %s", qr.Status)
	}
}

func TestQRVerifyNotFound(t *testing.T) {
	svc, _ := setupQRServiceTest(t)
	if _, err := svc.Verify("missing-code"); err != ErrQRCodeNotFound {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestQRExpireSweep(t *testing.T) {
	svc, db := setupQRServiceTest(t)
	createCashbackTestUser(t, db, 31, constants.RoleMerchant)

	result, err := svc.Generate(QRGenerateInput{
		MerchantID: 31,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := db.Model(&models.QRCode{}).Where("id = ?", result.QRCode.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire qr failed: %v", err)
	}

	expired, err := svc.ExpireSweep(0)
	if err != nil {
		t.Fatalf("expire sweep failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired, got %d", expired)
	}

	var qr models.QRCode
	if err := db.First(&qr, result.QRCode.ID).Error; err != nil {
		t.Fatalf("load qr failed: %v", err)
	}
	if qr.Status != constants.QRCodeStatusExpired {
		t.Fatalf("qr code not expired by sweep: %s", qr.Status)
	}
}

func TestQRGetForMerchantOwnership(t *testing.T) {
	svc, db := setupQRServiceTest(t)
	createCashbackTestUser(t, db, 41, constants.RoleMerchant)
	createCashbackTestUser(t, db, 42, constants.RoleMerchant)

	result, err := svc.Generate(QRGenerateInput{
		MerchantID: 41,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := svc.GetForMerchant(42, result.QRCode.ID); err != ErrQRCodeNotFound {
		t.Fatalf("expected not found for another merchant, got: %v", err)
	}
	qr, err := svc.GetForMerchant(41, result.QRCode.ID)
	if err != nil || qr == nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
}
