package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campuspay/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypePaymentReceipt is the asynq task type for queued receipt delivery.
const TypePaymentReceipt = "payment:receipt"

// QueueNotifier enqueues receipt notifications for the background worker so
// settlement never waits on SMS delivery.
type QueueNotifier struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// SendPaymentReceipt enqueues the receipt for asynchronous delivery.
func (n *QueueNotifier) SendPaymentReceipt(ctx context.Context, receipt models.ReceiptNotification) error {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("failed to encode receipt payload: %w", err)
	}

	task := asynq.NewTask(TypePaymentReceipt, payload)
	info, err := n.Client.EnqueueContext(ctx, task,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue receipt notification: %w", err)
	}

	n.Logger.Debug("receipt notification enqueued",
		zap.String("task", info.ID),
		zap.String("receiptNo", receipt.ReceiptNo))
	return nil
}
