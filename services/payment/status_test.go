package payment

import (
	"context"
	"errors"
	"testing"

	"campuspay/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPaymentStatusPollSettles(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	txn := initiateAccepted(t, env, "inv-1", 100, "WAAFI-001")

	env.gateway.statusResult = models.TxnCompleted

	polled, err := env.svc.CheckPaymentStatus(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnCompleted, polled.Status)
	assert.Equal(t, 1, env.gateway.statusCalls)
	assert.Equal(t, 1, env.ledger.count(), "the poll path settles exactly like the webhook path")

	session, err := env.sessions.GetByID(txn.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.Status)
}

func TestCheckPaymentStatusTerminalSkipsProvider(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	txn := initiateAccepted(t, env, "inv-1", 100, "WAAFI-001")

	require.NoError(t, env.svc.HandleWebhook(ctx, models.ProviderHormuud, signedPayload("WAAFI-001", "APPROVED", 100)))

	polled, err := env.svc.CheckPaymentStatus(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnCompleted, polled.Status)
	assert.Equal(t, 0, env.gateway.statusCalls, "a terminal transaction is answered from the store")
}

func TestCheckPaymentStatusProviderUnreachable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	txn := initiateAccepted(t, env, "inv-1", 100, "WAAFI-001")

	env.gateway.statusErr = errors.New("connection refused")

	polled, err := env.svc.CheckPaymentStatus(ctx, txn.ID)
	require.NoError(t, err, "an unreachable provider is not the caller's problem")
	assert.Equal(t, models.TxnProcessing, polled.Status, "the best-known status stands")
}

func TestCheckPaymentStatusStillPending(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	txn := initiateAccepted(t, env, "inv-1", 100, "WAAFI-001")

	env.gateway.statusResult = models.TxnProcessing

	polled, err := env.svc.CheckPaymentStatus(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnProcessing, polled.Status)
	assert.Equal(t, 0, env.ledger.count())
}

func TestCheckPaymentStatusNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CheckPaymentStatus(context.Background(), "no-such-txn")
	assert.ErrorAs(t, err, &NotFoundError{})
}

func TestWebhookThenPollSettlesOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	txn := initiateAccepted(t, env, "inv-1", 100, "WAAFI-001")

	require.NoError(t, env.svc.HandleWebhook(ctx, models.ProviderHormuud, signedPayload("WAAFI-001", "APPROVED", 100)))

	env.gateway.statusResult = models.TxnCompleted
	_, err := env.svc.CheckPaymentStatus(ctx, txn.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, env.ledger.count())
	assert.Equal(t, 1, env.notifier.count())
}

func TestPollThenWebhookSettlesOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	txn := initiateAccepted(t, env, "inv-1", 100, "WAAFI-001")

	env.gateway.statusResult = models.TxnCompleted
	_, err := env.svc.CheckPaymentStatus(ctx, txn.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.HandleWebhook(ctx, models.ProviderHormuud, signedPayload("WAAFI-001", "APPROVED", 100)))

	assert.Equal(t, 1, env.ledger.count())
	assert.Equal(t, 1, env.notifier.count())

	stored, err := env.txns.GetByID(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnCompleted, stored.Status)
}

func TestApplyStatusCompletedBeatsLateFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	txn := initiateAccepted(t, env, "inv-1", 100, "WAAFI-001")

	require.NoError(t, env.svc.HandleWebhook(ctx, models.ProviderHormuud, signedPayload("WAAFI-001", "APPROVED", 100)))

	// A stale FAILED observation after completion must not win.
	require.NoError(t, env.svc.HandleWebhook(ctx, models.ProviderHormuud, signedPayload("WAAFI-001", "DECLINED", 100)))

	stored, err := env.txns.GetByID(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnCompleted, stored.Status)
	assert.Equal(t, 1, env.ledger.count())
}

func TestSettlementConvergesAfterPartialFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	txn := initiateAccepted(t, env, "inv-1", 100, "WAAFI-001")

	// Simulate a crash between the status write and the settlement: the
	// transaction is COMPLETED in the store but carries no ledger link.
	matched, err := env.txns.UpdateStatusIf(txn.ID,
		[]models.TransactionStatus{models.TxnProcessing}, models.TxnCompleted, nil)
	require.NoError(t, err)
	require.True(t, matched)
	require.Equal(t, 0, env.ledger.count())

	// The next poll finishes the job.
	polled, err := env.svc.CheckPaymentStatus(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnCompleted, polled.Status)
	assert.NotEmpty(t, polled.PaymentID)
	assert.Equal(t, 1, env.ledger.count())

	invoice, err := env.invoices.GetByID("inv-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, invoice.AmountPaid)
}
