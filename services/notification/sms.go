package notification

import (
	"context"
	"fmt"

	studentRepo "campuspay/database/repository/student"
	"campuspay/models"

	"go.uber.org/zap"
)

// SMSNotifier formats payment receipts as text messages and hands them to
// the configured sender.
type SMSNotifier struct {
	Sender   SMSSender
	Students studentRepo.StudentRepository
	Logger   *zap.Logger
}

// SendPaymentReceipt texts the payer their receipt. When the transaction
// carried no phone number the student's registered number is used.
func (n *SMSNotifier) SendPaymentReceipt(ctx context.Context, receipt models.ReceiptNotification) error {
	phone := receipt.Phone
	if phone == "" {
		student, err := n.Students.GetByID(receipt.StudentID)
		if err != nil {
			return fmt.Errorf("failed to resolve payer phone: %w", err)
		}
		if student == nil || student.Phone == "" {
			return fmt.Errorf("no phone number on record for student %s", receipt.StudentID)
		}
		phone = student.Phone
	}

	message := fmt.Sprintf("Payment received: %s %.2f via %s. Receipt %s.",
		receipt.Currency, receipt.Amount, receipt.Method, receipt.ReceiptNo)
	if receipt.InvoiceID != "" {
		message += fmt.Sprintf(" Invoice %s.", receipt.InvoiceID)
	}

	if err := n.Sender.Send(ctx, phone, message); err != nil {
		return fmt.Errorf("failed to send receipt SMS: %w", err)
	}

	n.Logger.Info("receipt SMS sent",
		zap.String("student", receipt.StudentID),
		zap.String("receiptNo", receipt.ReceiptNo))
	return nil
}

// LogSMSSender is the development sender; it writes the message to the log
// instead of an operator gateway.
type LogSMSSender struct {
	Logger *zap.Logger
}

func (s *LogSMSSender) Send(ctx context.Context, phone, message string) error {
	s.Logger.Info("sms (log sender)", zap.String("phone", phone), zap.String("message", message))
	return nil
}
