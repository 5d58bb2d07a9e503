package notification

import (
	"context"

	"campuspay/models"
)

// Notifier dispatches payer-facing notifications. Delivery is best effort;
// callers log failures and move on.
type Notifier interface {
	SendPaymentReceipt(ctx context.Context, receipt models.ReceiptNotification) error
}

// SMSSender delivers a text message. The actual transport (operator SMS
// gateway, email bridge) lives outside this service.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}
