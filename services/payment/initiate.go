package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campuspay/models"
	"campuspay/services/gateway"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// InitiatePayment creates a transaction attempt under a session (finding or
// creating one when none is supplied) and submits the charge to the provider.
// A synchronous provider rejection is returned as a structured result with
// the transaction FAILED and the session reopened for retry.
func (s *DefaultPaymentService) InitiatePayment(ctx context.Context, req models.InitiatePaymentRequest) (*models.InitiatePaymentResult, error) {
	gw, ok := s.Gateways.Get(req.Method)
	if !ok {
		return nil, InvalidArgumentError{Message: fmt.Sprintf("payment method %q is not enabled", req.Method)}
	}

	phone, err := gateway.NormalizePhone(req.Phone)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidPhone) {
			return nil, InvalidArgumentError{Message: err.Error()}
		}
		return nil, err
	}

	session, err := s.resolveSession(ctx, &req)
	if err != nil {
		return nil, err
	}

	// Claim the session before creating the attempt so two concurrent
	// initiations cannot both charge it.
	matched, err := s.Sessions.UpdateStatusIf(session.ID,
		[]models.SessionStatus{models.SessionPending}, models.SessionProcessing, nil)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, InvalidStateError{Message: "session is not available for a new payment attempt"}
	}
	session.Status = models.SessionProcessing

	txn := &models.PaymentTransaction{
		ID:        uuid.New().String(),
		SessionID: session.ID,
		StudentID: session.StudentID,
		InvoiceID: session.InvoiceID,
		Amount:    session.Amount,
		Currency:  session.Currency,
		Provider:  req.Method,
		Phone:     phone,
		Status:    models.TxnPending,
	}
	if err := s.Transactions.Create(txn); err != nil {
		return nil, err
	}

	result, err := gw.Charge(ctx, gateway.ChargeRequest{
		Phone:       phone,
		Amount:      txn.Amount,
		Currency:    txn.Currency,
		Reference:   txn.ID,
		Description: fmt.Sprintf("University fees payment %s", txn.ID),
	})
	if err != nil {
		// The call failed before a definitive answer; the charge may or may
		// not have reached the provider. Leave the attempt in flight.
		if _, casErr := s.Transactions.UpdateStatusIf(txn.ID,
			[]models.TransactionStatus{models.TxnPending}, models.TxnProcessing,
			bson.M{"errorMessage": "charge outcome unknown: " + err.Error()}); casErr != nil {
			s.Logger.Error("failed to record unknown charge outcome",
				zap.String("transaction", txn.ID), zap.Error(casErr))
		}
		return nil, ProviderError{Provider: req.Method, Err: err}
	}

	if !result.Accepted {
		// Synchronous rejection: fail the attempt, reopen the session.
		if _, casErr := s.Transactions.UpdateStatusIf(txn.ID,
			[]models.TransactionStatus{models.TxnPending}, models.TxnFailed,
			bson.M{"errorMessage": result.Message}); casErr != nil {
			return nil, casErr
		}
		txn.Status = models.TxnFailed
		txn.ErrorMessage = result.Message

		if _, casErr := s.Sessions.UpdateStatusIf(session.ID,
			[]models.SessionStatus{models.SessionProcessing}, models.SessionPending, nil); casErr != nil {
			return nil, casErr
		}
		session.Status = models.SessionPending

		s.Logger.Warn("charge rejected by provider",
			zap.String("transaction", txn.ID),
			zap.String("provider", string(req.Method)),
			zap.String("reason", result.Message))
		return &models.InitiatePaymentResult{
			Accepted:    false,
			Message:     result.Message,
			Session:     session,
			Transaction: txn,
		}, nil
	}

	if err := s.Transactions.SetProviderRef(txn.ID, result.ProviderRef); err != nil {
		return nil, err
	}
	txn.ProviderRef = result.ProviderRef

	if _, err := s.Transactions.UpdateStatusIf(txn.ID,
		[]models.TransactionStatus{models.TxnPending}, models.TxnProcessing, nil); err != nil {
		return nil, err
	}
	txn.Status = models.TxnProcessing

	s.Logger.Info("charge accepted by provider",
		zap.String("transaction", txn.ID),
		zap.String("provider", string(req.Method)),
		zap.String("providerRef", result.ProviderRef))
	return &models.InitiatePaymentResult{
		Accepted:    true,
		Message:     result.Message,
		Session:     session,
		Transaction: txn,
	}, nil
}

// resolveSession returns the PENDING session the attempt runs under,
// creating one for the (student, invoice, amount) triple when none is
// supplied. Expired sessions fail with ExpiredError and create no
// transaction.
func (s *DefaultPaymentService) resolveSession(ctx context.Context, req *models.InitiatePaymentRequest) (*models.PaymentSession, error) {
	if req.SessionID != "" {
		session, err := s.getFreshSession(req.SessionID)
		if err != nil {
			return nil, err
		}
		if req.StudentID != "" && session.StudentID != req.StudentID {
			return nil, ForbiddenError{Message: "session does not belong to this student"}
		}
		switch session.Status {
		case models.SessionExpired:
			return nil, ExpiredError{SessionID: session.ID}
		case models.SessionPending:
			return session, nil
		default:
			return nil, InvalidStateError{Message: fmt.Sprintf("session is %s and cannot accept payments", session.Status)}
		}
	}

	if req.Amount <= 0 {
		return nil, InvalidArgumentError{Message: "amount must be greater than zero"}
	}

	existing, err := s.Sessions.FindOpen(req.StudentID, req.InvoiceID, req.Amount)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Expired(time.Now()) {
		return existing, nil
	}

	return s.CreateSession(ctx, req.StudentID, req.Amount, req.Currency, req.InvoiceID)
}
