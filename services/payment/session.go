package payment

import (
	"context"
	"fmt"
	"time"

	"campuspay/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateSession validates the student (and invoice ownership, when given)
// and creates a PENDING session with a fixed expiry.
func (s *DefaultPaymentService) CreateSession(ctx context.Context, studentID string, amount float64, currency, invoiceID string) (*models.PaymentSession, error) {
	if amount <= 0 {
		return nil, InvalidArgumentError{Message: "amount must be greater than zero"}
	}

	student, err := s.Students.GetByID(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}
	if student == nil {
		return nil, NotFoundError{Resource: "student", ID: studentID}
	}

	if invoiceID != "" {
		invoice, err := s.Invoices.GetByID(invoiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up invoice: %w", err)
		}
		if invoice == nil {
			return nil, NotFoundError{Resource: "invoice", ID: invoiceID}
		}
		if invoice.StudentID != studentID {
			return nil, ForbiddenError{Message: "invoice does not belong to this student"}
		}
	}

	if currency == "" {
		currency = s.Currency
	}

	session := &models.PaymentSession{
		ID:        uuid.New().String(),
		StudentID: studentID,
		InvoiceID: invoiceID,
		Amount:    amount,
		Currency:  currency,
		Status:    models.SessionPending,
		ExpiresAt: time.Now().Add(s.SessionTTL),
	}
	if err := s.Sessions.Create(session); err != nil {
		return nil, err
	}

	s.Logger.Info("payment session created",
		zap.String("session", session.ID),
		zap.String("student", studentID),
		zap.Float64("amount", amount))
	return session, nil
}

// GetSession returns a session with its transactions, newest first. Sessions
// past their expiry are marked EXPIRED lazily, on access.
func (s *DefaultPaymentService) GetSession(ctx context.Context, id string) (*SessionDetail, error) {
	session, err := s.getFreshSession(id)
	if err != nil {
		return nil, err
	}

	txns, err := s.Transactions.ListBySession(id)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{Session: session, Transactions: txns}, nil
}

// CancelSession cancels a session and cascades CANCELLED to its still-open
// transactions. Cancelling a COMPLETED session is an invalid state; repeating
// a cancel is a no-op.
func (s *DefaultPaymentService) CancelSession(ctx context.Context, id string) (*models.PaymentSession, error) {
	session, err := s.getFreshSession(id)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case models.SessionCompleted:
		return nil, InvalidStateError{Message: "a completed session cannot be cancelled"}
	case models.SessionCancelled, models.SessionExpired:
		return session, nil
	}

	matched, err := s.Sessions.UpdateStatusIf(id,
		[]models.SessionStatus{models.SessionPending, models.SessionProcessing},
		models.SessionCancelled, nil)
	if err != nil {
		return nil, err
	}
	if matched {
		session.Status = models.SessionCancelled
	}

	cancelled, err := s.Transactions.CancelOpenBySession(id)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("payment session cancelled",
		zap.String("session", id),
		zap.Int64("transactionsCancelled", cancelled))
	return session, nil
}

// getFreshSession loads a session and applies the lazy expiry check.
func (s *DefaultPaymentService) getFreshSession(id string) (*models.PaymentSession, error) {
	session, err := s.Sessions.GetByID(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, NotFoundError{Resource: "payment session", ID: id}
	}

	// Only PENDING sessions expire lazily; a PROCESSING session has an
	// in-flight charge that may still confirm.
	if session.Status == models.SessionPending && session.Expired(time.Now()) {
		matched, err := s.Sessions.UpdateStatusIf(id,
			[]models.SessionStatus{models.SessionPending},
			models.SessionExpired, nil)
		if err != nil {
			return nil, err
		}
		if matched {
			session.Status = models.SessionExpired
		}
	}
	return session, nil
}
