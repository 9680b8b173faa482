package service

import (
	"testing"

	"github.com/vale-cashback/api/internal/constants"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"

	"gorm.io/gorm"
)

func setupNotificationServiceTest(t *testing.T) (*NotificationService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t, "notification_service_test")
	return NewNotificationService(repository.NewNotificationRepository(db), nil), db
}

func TestNotificationDispatchFallsBackToCreate(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	createCashbackTestUser(t, db, 1, constants.RoleClient)

	// 队列未启用时同步落库
	svc.Dispatch(NotificationInput{
		UserID: 1,
		Type:   constants.NotificationTypeCashbackReceived,
		Title:  "Cashback recebido",
		Body:   "Você recebeu R$ 2,00 de cashback.",
		Payload: models.JSON{
			"amount": "2.00",
		},
	})

	var notifications []models.Notification
	if err := db.Where("user_id = ?", 1).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Type != constants.NotificationTypeCashbackReceived {
		t.Fatalf("unexpected type: %s", notifications[0].Type)
	}

	// UserID 为空的通知被丢弃
	svc.Dispatch(NotificationInput{Type: constants.NotificationTypeCashbackReceived})
	var count int64
	if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 notification, got %d", count)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	createCashbackTestUser(t, db, 2, constants.RoleClient)
	createCashbackTestUser(t, db, 3, constants.RoleClient)

	first, err := svc.Create(NotificationInput{UserID: 2, Type: constants.NotificationTypeTransferReceived, Title: "a"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(NotificationInput{UserID: 2, Type: constants.NotificationTypeReferralBonus, Title: "b"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	unread, err := svc.CountUnread(2)
	if err != nil {
		t.Fatalf("count unread failed: %v", err)
	}
	if unread != 2 {
		t.Fatalf("expected 2 unread, got %d", unread)
	}

	// 他人的通知不可标记
	if err := svc.MarkRead(first.ID, 3); err != ErrNotificationNotFound {
		t.Fatalf("expected not found for other user, got: %v", err)
	}
	if err := svc.MarkRead(first.ID, 2); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	// 重复标记幂等
	if err := svc.MarkRead(first.ID, 2); err != nil {
		t.Fatalf("repeat mark read failed: %v", err)
	}

	unread, err = svc.CountUnread(2)
	if err != nil {
		t.Fatalf("count unread failed: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected 1 unread, got %d", unread)
	}

	marked, err := svc.MarkAllRead(2)
	if err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	if marked != 1 {
		t.Fatalf("expected 1 marked, got %d", marked)
	}
	unread, err = svc.CountUnread(2)
	if err != nil {
		t.Fatalf("count unread failed: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}
}
