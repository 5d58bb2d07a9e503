package payment

import (
	"context"
	"testing"

	"campuspay/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, "stu-1", 100, "", "inv-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, models.SessionPending, session.Status)
	assert.Equal(t, "stu-1", session.StudentID)
	assert.Equal(t, 100.0, session.Amount)
	assert.Equal(t, "USD", session.Currency, "should fall back to the configured default currency")
	assert.False(t, session.ExpiresAt.IsZero())
}

func TestCreateSessionValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.CreateSession(ctx, "stu-1", 0, "USD", "")
	assert.ErrorAs(t, err, &InvalidArgumentError{}, "zero amount must be rejected")

	_, err = env.svc.CreateSession(ctx, "stu-1", -5, "USD", "")
	assert.ErrorAs(t, err, &InvalidArgumentError{}, "negative amount must be rejected")

	_, err = env.svc.CreateSession(ctx, "nobody", 100, "USD", "")
	assert.ErrorAs(t, err, &NotFoundError{}, "unknown student must be rejected")

	_, err = env.svc.CreateSession(ctx, "stu-1", 100, "USD", "inv-missing")
	assert.ErrorAs(t, err, &NotFoundError{}, "unknown invoice must be rejected")

	env.students.students["stu-2"] = &models.Student{ID: "stu-2", Phone: "+252611111111"}
	_, err = env.svc.CreateSession(ctx, "stu-2", 100, "USD", "inv-1")
	assert.ErrorAs(t, err, &ForbiddenError{}, "invoice owned by another student must be rejected")
}

func TestGetSessionExpiresLazily(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, "stu-1", 100, "USD", "")
	require.NoError(t, err)

	env.expireSession(session.ID)

	detail, err := env.svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionExpired, detail.Session.Status)

	// The expiry must have been written back, not just reported.
	stored, err := env.sessions.GetByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionExpired, stored.Status)
}

func TestGetSessionNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.GetSession(context.Background(), "no-such-session")
	assert.ErrorAs(t, err, &NotFoundError{})
}

func TestCancelSessionCascades(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, "stu-1", 100, "USD", "inv-1")
	require.NoError(t, err)

	result, err := env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		SessionID: session.ID,
		StudentID: "stu-1",
		Method:    models.ProviderHormuud,
		Phone:     "0615551234",
	})
	require.NoError(t, err)
	require.True(t, result.Accepted)

	cancelled, err := env.svc.CancelSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, cancelled.Status)

	txn, err := env.txns.GetByID(result.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnCancelled, txn.Status, "open transactions must be cancelled with the session")

	// Repeating the cancel is a harmless no-op.
	again, err := env.svc.CancelSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, again.Status)
}

func TestCancelCompletedSessionRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, "stu-1", 100, "USD", "inv-1")
	require.NoError(t, err)

	result, err := env.svc.InitiatePayment(ctx, models.InitiatePaymentRequest{
		SessionID: session.ID,
		StudentID: "stu-1",
		Method:    models.ProviderHormuud,
		Phone:     "0615551234",
	})
	require.NoError(t, err)

	_, err = env.svc.applyStatus(ctx, result.Transaction, models.TxnCompleted)
	require.NoError(t, err)

	_, err = env.svc.CancelSession(ctx, session.ID)
	assert.ErrorAs(t, err, &InvalidStateError{}, "a completed session must not be cancellable")
}
