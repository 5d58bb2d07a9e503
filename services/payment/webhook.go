package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"campuspay/models"
	"campuspay/services/gateway"

	"go.uber.org/zap"
)

// ComputeWebhookSignature returns the hex HMAC-SHA256 over the canonical
// field subset transactionId|status|amount|timestamp.
func ComputeWebhookSignature(secret string, payload models.WebhookPayload) string {
	canonical := strings.Join([]string{
		payload.TransactionID,
		payload.Status,
		strconv.FormatFloat(payload.Amount, 'f', 2, 64),
		payload.Timestamp,
	}, "|")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// HandleWebhook ingests an asynchronous provider confirmation. The signature
// is verified first, in constant time; a transaction that cannot be located
// is logged and dropped (the provider may retry, or the event belongs to a
// different deployment) — acknowledged, not an error. Status is merged
// through the same transition function as the poll path.
func (s *DefaultPaymentService) HandleWebhook(ctx context.Context, provider models.Provider, payload models.WebhookPayload) error {
	expected := ComputeWebhookSignature(s.WebhookSecret, payload)
	provided := strings.ToLower(strings.TrimSpace(payload.Signature))
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		s.Logger.Warn("webhook signature verification failed",
			zap.String("provider", string(provider)),
			zap.String("transactionId", payload.TransactionID))
		return UnauthorizedError{Message: "invalid webhook signature"}
	}

	txn, err := s.Transactions.GetByProviderRef(provider, payload.TransactionID)
	if err != nil {
		return err
	}
	if txn == nil {
		// Some providers echo our transaction id instead of their reference.
		txn, err = s.Transactions.GetByID(payload.TransactionID)
		if err != nil {
			return err
		}
	}
	if txn == nil {
		s.Logger.Info("webhook for unknown transaction dropped",
			zap.String("provider", string(provider)),
			zap.String("transactionId", payload.TransactionID))
		return nil
	}

	status := gateway.MapStatus(provider, payload.Status)
	if _, err := s.applyStatus(ctx, txn, status); err != nil {
		return fmt.Errorf("failed to apply webhook status: %w", err)
	}

	s.Logger.Info("webhook processed",
		zap.String("provider", string(provider)),
		zap.String("transaction", txn.ID),
		zap.String("providerStatus", payload.Status),
		zap.String("status", string(status)))
	return nil
}
