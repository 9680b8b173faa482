package service

import (
	"strings"
	"time"

	"github.com/vale-cashback/api/internal/logger"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/queue"
	"github.com/vale-cashback/api/internal/repository"
)

// NotificationService 站内通知服务
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	queueClient      *queue.Client
}

// NotificationInput 通知输入
type NotificationInput struct {
	UserID  uint
	Type    string
	Title   string
	Body    string
	Payload models.JSON
}

// NewNotificationService 创建通知服务
func NewNotificationService(notificationRepo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		queueClient:      queueClient,
	}
}

// Dispatch 分发通知：队列可用时异步投递，否则同步落库。
// 通知失败不阻断主流程，只记录日志。
func (s *NotificationService) Dispatch(input NotificationInput) {
	if s == nil || input.UserID == 0 {
		return
	}
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueNotificationDispatch(queue.NotificationDispatchPayload{
			UserID:  input.UserID,
			Type:    input.Type,
			Title:   input.Title,
			Body:    input.Body,
			Payload: input.Payload,
		})
		if err == nil {
			return
		}
		logger.Warnw("notification_enqueue_failed",
			"user_id", input.UserID,
			"type", input.Type,
			"error", err,
		)
	}
	if _, err := s.Create(input); err != nil {
		logger.Warnw("notification_create_failed",
			"user_id", input.UserID,
			"type", input.Type,
			"error", err,
		)
	}
}

// Create 同步写入通知
func (s *NotificationService) Create(input NotificationInput) (*models.Notification, error) {
	if input.UserID == 0 {
		return nil, ErrNotificationNotFound
	}
	notification := &models.Notification{
		UserID:  input.UserID,
		Type:    strings.TrimSpace(input.Type),
		Title:   strings.TrimSpace(input.Title),
		Body:    input.Body,
		Payload: input.Payload,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// List 查询用户通知
func (s *NotificationService) List(filter repository.NotificationListFilter) ([]models.Notification, int64, error) {
	return s.notificationRepo.List(filter)
}

// CountUnread 统计未读通知
func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

// MarkRead 将单条通知置为已读
func (s *NotificationService) MarkRead(id uint, userID uint) error {
	affected, err := s.notificationRepo.MarkRead(id, userID, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		// 已读或不属于该用户时区分提示
		notification, getErr := s.notificationRepo.GetByID(id)
		if getErr != nil {
			return getErr
		}
		if notification == nil || notification.UserID != userID {
			return ErrNotificationNotFound
		}
	}
	return nil
}

// MarkAllRead 将用户全部通知置为已读
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	return s.notificationRepo.MarkAllRead(userID, time.Now())
}
