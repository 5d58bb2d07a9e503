package payment

import (
	"context"
	"errors"
	"testing"

	"campuspay/models"
	"campuspay/services/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiatePaymentAccepted(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		StudentID: "stu-1",
		InvoiceID: "inv-1",
		Amount:    100,
		Method:    models.ProviderHormuud,
		Phone:     "0615551234",
	})
	require.NoError(t, err)
	require.True(t, result.Accepted)

	assert.Equal(t, models.SessionProcessing, result.Session.Status)
	assert.Equal(t, models.TxnProcessing, result.Transaction.Status)
	assert.Equal(t, "WAAFI-001", result.Transaction.ProviderRef)
	assert.Equal(t, "+252615551234", result.Transaction.Phone,
		"local phone form must be normalized before it reaches the provider")
	assert.Equal(t, 1, env.gateway.chargeCalls)
}

func TestInitiatePaymentReusesOpenSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, "stu-1", 100, "USD", "inv-1")
	require.NoError(t, err)

	// No session id supplied: the open (student, invoice, amount) session is
	// found instead of a duplicate being created.
	result, err := env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		StudentID: "stu-1",
		InvoiceID: "inv-1",
		Amount:    100,
		Method:    models.ProviderHormuud,
		Phone:     "0615551234",
	})
	require.NoError(t, err)
	assert.Equal(t, session.ID, result.Session.ID)
	assert.Len(t, env.sessions.sessions, 1)
}

func TestInitiatePaymentExpiredSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, "stu-1", 100, "USD", "inv-1")
	require.NoError(t, err)
	env.expireSession(session.ID)

	_, err = env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		SessionID: session.ID,
		StudentID: "stu-1",
		Method:    models.ProviderHormuud,
		Phone:     "0615551234",
	})
	assert.ErrorAs(t, err, &ExpiredError{})
	assert.Empty(t, env.txns.txns, "an expired session must not produce a transaction")
	assert.Equal(t, 0, env.gateway.chargeCalls, "an expired session must not reach the provider")
}

func TestInitiatePaymentUnknownMethod(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.InitiatePayment(context.Background(), models.InitiatePaymentRequest{
		StudentID: "stu-1",
		Amount:    100,
		Method:    models.ProviderEdahab, // not registered in the test env
		Phone:     "0615551234",
	})
	assert.ErrorAs(t, err, &InvalidArgumentError{})
}

func TestInitiatePaymentInvalidPhone(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.InitiatePayment(context.Background(), models.InitiatePaymentRequest{
		StudentID: "stu-1",
		Amount:    100,
		Method:    models.ProviderHormuud,
		Phone:     "not-a-number",
	})
	assert.ErrorAs(t, err, &InvalidArgumentError{})
	assert.Empty(t, env.txns.txns)
}

func TestInitiatePaymentProviderRejection(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.gateway.chargeResult = &gateway.ChargeResult{Accepted: false, Message: "insufficient balance"}

	result, err := env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		StudentID: "stu-1",
		InvoiceID: "inv-1",
		Amount:    100,
		Method:    models.ProviderHormuud,
		Phone:     "0615551234",
	})
	require.NoError(t, err, "a synchronous rejection is a structured result, not an error")
	assert.False(t, result.Accepted)
	assert.Equal(t, "insufficient balance", result.Message)
	assert.Equal(t, models.TxnFailed, result.Transaction.Status)
	assert.Equal(t, models.SessionPending, result.Session.Status,
		"the session must reopen so the student can retry")
}

func TestInitiatePaymentProviderUnreachable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.gateway.chargeErr = errors.New("connection timed out")

	_, err := env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		StudentID: "stu-1",
		InvoiceID: "inv-1",
		Amount:    100,
		Method:    models.ProviderHormuud,
		Phone:     "0615551234",
	})
	require.Error(t, err)
	assert.ErrorAs(t, err, &ProviderError{})

	// The outcome is unknown, so the attempt stays in flight rather than
	// being failed outright.
	require.Len(t, env.txns.order, 1)
	txn, getErr := env.txns.GetByID(env.txns.order[0])
	require.NoError(t, getErr)
	assert.Equal(t, models.TxnProcessing, txn.Status)
	assert.Contains(t, txn.ErrorMessage, "charge outcome unknown")
}

func TestInitiatePaymentConcurrentClaim(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, "stu-1", 100, "USD", "inv-1")
	require.NoError(t, err)

	first, err := env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		SessionID: session.ID,
		StudentID: "stu-1",
		Method:    models.ProviderHormuud,
		Phone:     "0615551234",
	})
	require.NoError(t, err)
	require.True(t, first.Accepted)

	// A second attempt against the now-PROCESSING session must not create a
	// second charge.
	_, err = env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		SessionID: session.ID,
		StudentID: "stu-1",
		Method:    models.ProviderHormuud,
		Phone:     "0615551234",
	})
	assert.ErrorAs(t, err, &InvalidStateError{})
	assert.Equal(t, 1, env.gateway.chargeCalls)
}

func TestInitiatePaymentForeignSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, "stu-1", 100, "USD", "inv-1")
	require.NoError(t, err)

	env.students.students["stu-2"] = &models.Student{ID: "stu-2", Phone: "+252611111111"}
	_, err = env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		SessionID: session.ID,
		StudentID: "stu-2",
		Method:    models.ProviderHormuud,
		Phone:     "0611111111",
	})
	assert.ErrorAs(t, err, &ForbiddenError{})
}
