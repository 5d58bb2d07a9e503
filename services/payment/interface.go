package payment

import (
	"context"
	"time"

	invoiceRepo "campuspay/database/repository/invoice"
	ledgerRepo "campuspay/database/repository/ledger"
	sessionRepo "campuspay/database/repository/session"
	studentRepo "campuspay/database/repository/student"
	transactionRepo "campuspay/database/repository/transaction"
	"campuspay/models"
	"campuspay/services/gateway"
	"campuspay/services/notification"

	"go.uber.org/zap"
)

// SessionDetail is a session with its transactions, newest first.
type SessionDetail struct {
	Session      *models.PaymentSession      `json:"session"`
	Transactions []models.PaymentTransaction `json:"transactions"`
}

// PaymentService owns the payment session/transaction lifecycle, webhook
// ingestion, status reconciliation and settlement.
type PaymentService interface {
	// CreateSession pins a student's intent to pay a fixed amount.
	CreateSession(ctx context.Context, studentID string, amount float64, currency, invoiceID string) (*models.PaymentSession, error)
	// GetSession returns a session with its transactions, newest first.
	GetSession(ctx context.Context, id string) (*SessionDetail, error)
	// CancelSession cancels a session and cascades to its open transactions.
	CancelSession(ctx context.Context, id string) (*models.PaymentSession, error)
	// InitiatePayment creates a transaction attempt under a session and
	// submits the charge to the provider.
	InitiatePayment(ctx context.Context, req models.InitiatePaymentRequest) (*models.InitiatePaymentResult, error)
	// CheckPaymentStatus is the poll entry point; terminal transactions are
	// answered without calling the provider.
	CheckPaymentStatus(ctx context.Context, transactionID string) (*models.PaymentTransaction, error)
	// HandleWebhook ingests an asynchronous provider confirmation.
	HandleWebhook(ctx context.Context, provider models.Provider, payload models.WebhookPayload) error
	// EnabledMethods lists the providers configured with credentials.
	EnabledMethods() []models.Provider
}

// DefaultPaymentService is the production implementation.
type DefaultPaymentService struct {
	Sessions      sessionRepo.SessionRepository
	Transactions  transactionRepo.TransactionRepository
	Ledger        ledgerRepo.LedgerRepository
	Invoices      invoiceRepo.InvoiceRepository
	Students      studentRepo.StudentRepository
	Gateways      *gateway.Registry
	Receipts      ReceiptGenerator
	Notifier      notification.Notifier
	Logger        *zap.Logger
	SessionTTL    time.Duration
	WebhookSecret string
	Currency      string
}

// EnabledMethods lists the providers configured with credentials.
func (s *DefaultPaymentService) EnabledMethods() []models.Provider {
	return s.Gateways.Enabled()
}
