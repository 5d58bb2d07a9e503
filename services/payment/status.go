package payment

import (
	"context"
	"time"

	"campuspay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// applyStatus is the single transition function shared by webhook ingestion
// and the poll path. It is an idempotent, monotonic merge: a transaction
// already in a terminal state is never changed, so duplicate webhooks, a
// webhook racing a poll, and a poll repeated after a webhook are all safe.
// The write is a compare-and-set against the store, not an in-process lock.
func (s *DefaultPaymentService) applyStatus(ctx context.Context, txn *models.PaymentTransaction, newStatus models.TransactionStatus) (*models.PaymentTransaction, error) {
	if txn.Status.Terminal() {
		// Settlement converges here if a prior observation wrote COMPLETED
		// but crashed before finishing the financial effect.
		if txn.Status == models.TxnCompleted && txn.PaymentID == "" {
			return s.settle(ctx, txn)
		}
		return txn, nil
	}

	if !newStatus.Terminal() {
		if txn.Status == models.TxnPending && newStatus == models.TxnProcessing {
			matched, err := s.Transactions.UpdateStatusIf(txn.ID,
				[]models.TransactionStatus{models.TxnPending}, models.TxnProcessing, nil)
			if err != nil {
				return nil, err
			}
			if matched {
				txn.Status = models.TxnProcessing
			}
		}
		// PENDING reported for an already-PROCESSING attempt carries no news.
		return txn, nil
	}

	set := bson.M{}
	if newStatus == models.TxnCompleted {
		now := time.Now()
		set["completedAt"] = now
	}

	matched, err := s.Transactions.UpdateStatusIf(txn.ID,
		[]models.TransactionStatus{models.TxnPending, models.TxnProcessing}, newStatus, set)
	if err != nil {
		return nil, err
	}
	if !matched {
		// Lost the race: another writer already moved the transaction to a
		// terminal state. The stored state stands.
		stored, err := s.Transactions.GetByID(txn.ID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return txn, nil
		}
		if stored.Status == models.TxnCompleted && stored.PaymentID == "" {
			return s.settle(ctx, stored)
		}
		return stored, nil
	}

	txn.Status = newStatus
	if newStatus == models.TxnCompleted {
		now := time.Now()
		txn.CompletedAt = &now
	}

	s.Logger.Info("transaction status applied",
		zap.String("transaction", txn.ID),
		zap.String("status", string(newStatus)))

	switch newStatus {
	case models.TxnCompleted:
		return s.settle(ctx, txn)
	case models.TxnFailed, models.TxnCancelled:
		// The attempt is over; reopen the session so the student can retry.
		if txn.SessionID != "" {
			if _, err := s.Sessions.UpdateStatusIf(txn.SessionID,
				[]models.SessionStatus{models.SessionProcessing}, models.SessionPending, nil); err != nil {
				return nil, err
			}
		}
	}
	return txn, nil
}

// CheckPaymentStatus is the poll entry point. A transaction already in a
// terminal state is answered immediately without calling the provider; an
// unreachable provider leaves the transaction PROCESSING and the best-known
// status is returned.
func (s *DefaultPaymentService) CheckPaymentStatus(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	txn, err := s.Transactions.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, NotFoundError{Resource: "payment transaction", ID: transactionID}
	}

	if txn.Status.Terminal() {
		return s.applyStatus(ctx, txn, txn.Status)
	}

	if txn.ProviderRef == "" {
		// Never accepted by a provider; nothing to reconcile against.
		return txn, nil
	}

	gw, ok := s.Gateways.Get(txn.Provider)
	if !ok {
		s.Logger.Warn("no gateway configured for transaction provider",
			zap.String("transaction", txn.ID),
			zap.String("provider", string(txn.Provider)))
		return txn, nil
	}

	status, err := gw.CheckStatus(ctx, txn.ProviderRef)
	if err != nil {
		// Unknown outcome: do not guess a terminal state.
		s.Logger.Warn("provider status check failed",
			zap.String("transaction", txn.ID),
			zap.String("provider", string(txn.Provider)),
			zap.Error(err))
		return txn, nil
	}

	return s.applyStatus(ctx, txn, status)
}
