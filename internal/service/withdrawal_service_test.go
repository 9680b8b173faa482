package service

import (
	"testing"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWithdrawalServiceTest(t *testing.T) (*WithdrawalService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "withdrawal_service_test")
	balanceRepo := repository.NewBalanceRepository(db)
	balanceSvc := NewBalanceService(balanceRepo)
	settingSvc := NewSettingService(repository.NewSettingRepository(db))
	notificationSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return NewWithdrawalService(
		repository.NewWithdrawalRepository(db),
		balanceRepo,
		balanceSvc,
		settingSvc,
		notificationSvc,
	), db
}

func seedTestBalance(t *testing.T, db *gorm.DB, userID uint, amount string) {
	t.Helper()
	value := models.NewMoneyFromDecimal(decimal.RequireFromString(amount))
	if err := db.Create(&models.CashbackBalance{
		UserID:      userID,
		Balance:     value,
		TotalEarned: value,
	}).Error; err != nil {
		t.Fatalf("seed balance failed: %v", err)
	}
}

func TestWithdrawalApplyValidations(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createCashbackTestUser(t, db, 1, constants.RoleClient)
	seedTestBalance(t, db, 1, "100.00")

	if _, err := svc.Apply(ApplyWithdrawalInput{
		UserID: 1,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Method: "cheque",
	}); err != ErrWithdrawalInvalidAction {
		t.Fatalf("expected invalid method, got: %v", err)
	}

	// 默认最低提现金额 20.00
	if _, err := svc.Apply(ApplyWithdrawalInput{
		UserID: 1,
		Amount: models.NewMoneyFromDecimal(decimal.RequireFromString("19.99")),
		Method: constants.WithdrawalMethodPix,
	}); err != ErrWithdrawalBelowMinimum {
		t.Fatalf("expected below minimum, got: %v", err)
	}

	if _, err := svc.Apply(ApplyWithdrawalInput{
		UserID: 1,
		Amount: models.NewMoneyFromDecimal(decimal.RequireFromString("100.01")),
		Method: constants.WithdrawalMethodPix,
	}); err != ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}
}

func TestWithdrawalApplyCountsOutstanding(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createCashbackTestUser(t, db, 2, constants.RoleClient)
	seedTestBalance(t, db, 2, "100.00")

	first, err := svc.Apply(ApplyWithdrawalInput{
		UserID: 2,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(60)),
		Method: constants.WithdrawalMethodPix,
		AccountDetail: models.JSON{
			"pix_key": "maria@vale-cashback.local",
		},
	})
	if err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	if first.Status != constants.WithdrawalStatusPending {
		t.Fatalf("unexpected status: %s", first.Status)
	}

	// 60 已被占用，可用只剩 40
	if _, err := svc.Apply(ApplyWithdrawalInput{
		UserID: 2,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Method: constants.WithdrawalMethodPix,
	}); err != ErrInsufficientBalance {
		t.Fatalf("expected insufficient with outstanding, got: %v", err)
	}

	available, err := svc.AvailableBalance(2)
	if err != nil {
		t.Fatalf("available balance failed: %v", err)
	}
	if !available.Decimal.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("unexpected available: %s", available.String())
	}
}

func TestWithdrawalReviewLifecycle(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createCashbackTestUser(t, db, 3, constants.RoleClient)
	seedTestBalance(t, db, 3, "100.00")

	request, err := svc.Apply(ApplyWithdrawalInput{
		UserID: 3,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Method: constants.WithdrawalMethodBank,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// pending 状态不允许直接 complete
	if _, err := svc.Review(ReviewWithdrawalInput{
		RequestID:  request.ID,
		ReviewerID: 99,
		Action:     constants.WithdrawalActionComplete,
	}); err != ErrWithdrawalNotPending {
		t.Fatalf("expected not pending for early complete, got: %v", err)
	}

	approved, err := svc.Review(ReviewWithdrawalInput{
		RequestID:  request.ID,
		ReviewerID: 99,
		Action:     constants.WithdrawalActionApprove,
		Note:       "documentos ok",
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.WithdrawalStatusApproved {
		t.Fatalf("unexpected status: %s", approved.Status)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != 99 {
		t.Fatalf("reviewer not recorded")
	}
	// 审批不出账
	if got := balanceOf(t, db, 3); !got.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("balance changed on approve: %s", got)
	}

	completed, err := svc.Review(ReviewWithdrawalInput{
		RequestID:  request.ID,
		ReviewerID: 99,
		Action:     constants.WithdrawalActionComplete,
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != constants.WithdrawalStatusCompleted {
		t.Fatalf("unexpected status: %s", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Fatalf("completed_at not set")
	}
	if got := balanceOf(t, db, 3); !got.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("balance not debited on complete: %s", got)
	}

	// 终态不允许再次流转
	if _, err := svc.Review(ReviewWithdrawalInput{
		RequestID:  request.ID,
		ReviewerID: 99,
		Action:     constants.WithdrawalActionReject,
	}); err != ErrWithdrawalTerminal {
		t.Fatalf("expected terminal, got: %v", err)
	}
}

func TestWithdrawalReject(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createCashbackTestUser(t, db, 4, constants.RoleClient)
	seedTestBalance(t, db, 4, "50.00")

	request, err := svc.Apply(ApplyWithdrawalInput{
		UserID: 4,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Method: constants.WithdrawalMethodPix,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	rejected, err := svc.Review(ReviewWithdrawalInput{
		RequestID:  request.ID,
		ReviewerID: 99,
		Action:     constants.WithdrawalActionReject,
		Note:       "chave pix inválida",
	})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.WithdrawalStatusRejected {
		t.Fatalf("unexpected status: %s", rejected.Status)
	}
	if got := balanceOf(t, db, 4); !got.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("balance changed on reject: %s", got)
	}

	// 拒绝后额度立即释放
	available, err := svc.AvailableBalance(4)
	if err != nil {
		t.Fatalf("available balance failed: %v", err)
	}
	if !available.Decimal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("unexpected available after reject: %s", available.String())
	}
}

func TestWithdrawalCancel(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createCashbackTestUser(t, db, 5, constants.RoleClient)
	seedTestBalance(t, db, 5, "60.00")

	request, err := svc.Apply(ApplyWithdrawalInput{
		UserID: 5,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
		Method: constants.WithdrawalMethodPix,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// 非本人不可取消
	if _, err := svc.Cancel(6, request.ID); err != ErrWithdrawalNotFound {
		t.Fatalf("expected not found for other user, got: %v", err)
	}

	canceled, err := svc.Cancel(5, request.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.WithdrawalStatusCanceled {
		t.Fatalf("unexpected status: %s", canceled.Status)
	}
	if got := balanceOf(t, db, 5); !got.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("balance changed on cancel: %s", got)
	}

	// 取消后额度立即释放
	available, err := svc.AvailableBalance(5)
	if err != nil {
		t.Fatalf("available balance failed: %v", err)
	}
	if !available.Decimal.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("unexpected available after cancel: %s", available.String())
	}

	// 终态不允许重复取消
	if _, err := svc.Cancel(5, request.ID); err != ErrWithdrawalTerminal {
		t.Fatalf("expected terminal on repeat cancel, got: %v", err)
	}
}

func TestWithdrawalCancelNotPending(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createCashbackTestUser(t, db, 7, constants.RoleClient)
	seedTestBalance(t, db, 7, "80.00")

	request, err := svc.Apply(ApplyWithdrawalInput{
		UserID: 7,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
		Method: constants.WithdrawalMethodBank,
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.Review(ReviewWithdrawalInput{
		RequestID:  request.ID,
		ReviewerID: 99,
		Action:     constants.WithdrawalActionApprove,
	}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// 已批准待打款的申请不可由用户取消
	if _, err := svc.Cancel(7, request.ID); err != ErrWithdrawalNotPending {
		t.Fatalf("expected not pending, got: %v", err)
	}
}

func TestWithdrawalReviewInvalidAction(t *testing.T) {
	svc, _ := setupWithdrawalServiceTest(t)
	if _, err := svc.Review(ReviewWithdrawalInput{
		RequestID:  1,
		ReviewerID: 99,
		Action:     "cancel",
	}); err != ErrWithdrawalInvalidAction {
		t.Fatalf("expected invalid action, got: %v", err)
	}
	if _, err := svc.Review(ReviewWithdrawalInput{
		RequestID:  404,
		ReviewerID: 99,
		Action:     constants.WithdrawalActionApprove,
	}); err != ErrWithdrawalNotFound {
		t.Fatalf("expected not found, got: %v", err)
	}
}
