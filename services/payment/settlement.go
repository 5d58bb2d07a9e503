package payment

import (
	"context"
	"errors"
	"time"

	ledgerRepo "campuspay/database/repository/ledger"
	"campuspay/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// settle commits the financial effect of a completed transaction: the ledger
// entry, the session completion, the invoice recompute and a best-effort
// payer notification. The unique transactionId index on the ledger is the
// exactly-once guard, so settle is safe to re-run until it converges.
func (s *DefaultPaymentService) settle(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	entry, err := s.Ledger.GetByTransactionID(txn.ID)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		receiptNo, err := s.Receipts.Next()
		if err != nil {
			return nil, err
		}

		paidAt := time.Now()
		if txn.CompletedAt != nil {
			paidAt = *txn.CompletedAt
		}

		entry = &models.Payment{
			ID:            uuid.New().String(),
			ReceiptNo:     receiptNo,
			TransactionID: txn.ID,
			InvoiceID:     txn.InvoiceID,
			StudentID:     txn.StudentID,
			Amount:        txn.Amount,
			Method:        txn.Provider,
			ProviderRef:   txn.ProviderRef,
			PaidAt:        paidAt,
		}
		if err := s.Ledger.Create(entry); err != nil {
			if !errors.Is(err, ledgerRepo.ErrDuplicate) {
				return nil, err
			}
			// A concurrent observer settled first; adopt its entry.
			entry, err = s.Ledger.GetByTransactionID(txn.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	if txn.PaymentID != entry.ID {
		if err := s.Transactions.LinkPayment(txn.ID, entry.ID); err != nil {
			return nil, err
		}
		txn.PaymentID = entry.ID
	}

	if txn.SessionID != "" {
		if _, err := s.Sessions.UpdateStatusIf(txn.SessionID,
			[]models.SessionStatus{models.SessionPending, models.SessionProcessing},
			models.SessionCompleted, bson.M{"completedAt": entry.PaidAt}); err != nil {
			return nil, err
		}
	}

	if txn.InvoiceID != "" {
		if err := s.recomputeInvoice(txn.InvoiceID); err != nil {
			return nil, err
		}
	}

	s.Logger.Info("payment settled",
		zap.String("transaction", txn.ID),
		zap.String("receiptNo", entry.ReceiptNo),
		zap.Float64("amount", entry.Amount),
		zap.String("invoice", txn.InvoiceID))

	s.notifyReceipt(ctx, txn, entry)
	return txn, nil
}

// recomputeInvoice re-derives an invoice's totals and status from the full
// ledger sum. Setting rather than incrementing keeps reprocessing harmless.
func (s *DefaultPaymentService) recomputeInvoice(invoiceID string) error {
	invoice, err := s.Invoices.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		s.Logger.Warn("settled against missing invoice", zap.String("invoice", invoiceID))
		return nil
	}

	paid, err := s.Ledger.SumByInvoice(invoiceID)
	if err != nil {
		return err
	}

	balance := invoice.Amount - paid
	if balance < 0 {
		balance = 0
	}

	status := invoice.Status
	switch {
	case paid >= invoice.Amount:
		status = models.InvoicePaid
	case paid > 0:
		status = models.InvoicePartial
	}

	return s.Invoices.ApplyLedgerTotals(invoiceID, paid, balance, status)
}

// notifyReceipt dispatches the payer notification. Failures are logged and
// never roll back the settlement.
func (s *DefaultPaymentService) notifyReceipt(ctx context.Context, txn *models.PaymentTransaction, entry *models.Payment) {
	if s.Notifier == nil {
		return
	}

	receipt := models.ReceiptNotification{
		StudentID: txn.StudentID,
		Phone:     txn.Phone,
		ReceiptNo: entry.ReceiptNo,
		Amount:    entry.Amount,
		Currency:  txn.Currency,
		Method:    string(entry.Method),
		InvoiceID: entry.InvoiceID,
	}
	if err := s.Notifier.SendPaymentReceipt(ctx, receipt); err != nil {
		s.Logger.Warn("payment receipt notification failed",
			zap.String("transaction", txn.ID),
			zap.Error(err))
	}
}
