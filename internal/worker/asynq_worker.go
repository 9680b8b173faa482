package worker

import (
	"context"
	"encoding/json"

	"github.com/vale-cashback/api/internal/logger"
	"github.com/vale-cashback/api/internal/provider"
	"github.com/vale-cashback/api/internal/queue"
	"github.com/vale-cashback/api/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
	mux.HandleFunc(queue.TaskQRCodeExpireSweep, c.handleQRCodeExpireSweep)
}

func (c *Consumer) handleNotificationDispatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_notification_dispatch_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_dispatch_skip_service_nil", "user_id", payload.UserID)
		return nil
	}
	_, err := c.NotificationService.Create(service.NotificationInput{
		UserID:  payload.UserID,
		Type:    payload.Type,
		Title:   payload.Title,
		Body:    payload.Body,
		Payload: payload.Payload,
	})
	if err != nil {
		logger.Warnw("worker_notification_dispatch_failed",
			"user_id", payload.UserID,
			"type", payload.Type,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleQRCodeExpireSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_qr_expire_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.QRCodeExpireSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_qr_expire_sweep_unmarshal_failed", "error", err)
		return err
	}
	if c.QRService == nil {
		logger.Warnw("worker_qr_expire_sweep_skip_service_nil", "qr_code_id", payload.QRCodeID)
		return nil
	}
	expired, err := c.QRService.ExpireSweep(payload.QRCodeID)
	if err != nil {
		logger.Warnw("worker_qr_expire_sweep_failed", "qr_code_id", payload.QRCodeID, "error", err)
		return err
	}
	if expired > 0 {
		logger.Infow("worker_qr_expire_sweep_done", "qr_code_id", payload.QRCodeID, "expired", expired)
	}
	return nil
}
