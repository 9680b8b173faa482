package queue

import (
	"encoding/json"

	"github.com/vale-cashback/api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 站内通知分发任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
	// TaskQRCodeExpireSweep 二维码过期清理任务
	TaskQRCodeExpireSweep = constants.TaskQRCodeExpireSweep
)

// NotificationDispatchPayload 站内通知分发任务载荷
type NotificationDispatchPayload struct {
	UserID  uint                   `json:"user_id"`
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Body    string                 `json:"body"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// QRCodeExpireSweepPayload 二维码过期清理任务载荷
type QRCodeExpireSweepPayload struct {
	QRCodeID uint `json:"qr_code_id"`
}

// NewNotificationDispatchTask 创建通知分发任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}

// NewQRCodeExpireSweepTask 创建二维码过期清理任务
func NewQRCodeExpireSweepTask(payload QRCodeExpireSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQRCodeExpireSweep, body), nil
}
