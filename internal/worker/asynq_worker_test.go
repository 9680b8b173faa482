package worker

import (
	"context"
	"testing"

	"github.com/vale-cashback/api/internal/provider"
	"github.com/vale-cashback/api/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleNotificationDispatchBadPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskNotificationDispatch, []byte("not-json"))
	if err := consumer.handleNotificationDispatch(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestHandleNotificationDispatchSkipsEmptyUser(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskNotificationDispatch, []byte(`{"user_id":0,"type":"cashback_received"}`))
	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("empty user payload should be dropped, got: %v", err)
	}
}

func TestHandleQRCodeExpireSweepSkipsWithoutService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskQRCodeExpireSweep, []byte(`{"qr_code_id":7}`))
	if err := consumer.handleQRCodeExpireSweep(context.Background(), task); err != nil {
		t.Fatalf("missing service should be skipped, got: %v", err)
	}
}
