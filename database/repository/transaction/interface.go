package transactionRepo

import (
	"campuspay/models"

	"go.mongodb.org/mongo-driver/bson"
)

// TransactionRepository defines methods for payment transaction data access.
type TransactionRepository interface {
	// Create inserts a new transaction record.
	Create(txn *models.PaymentTransaction) error
	// GetByID retrieves a transaction by its unique ID; returns nil when absent.
	GetByID(id string) (*models.PaymentTransaction, error)
	// GetByProviderRef retrieves a transaction by its provider reference.
	GetByProviderRef(provider models.Provider, ref string) (*models.PaymentTransaction, error)
	// ListBySession retrieves a session's transactions, newest first.
	ListBySession(sessionID string) ([]models.PaymentTransaction, error)
	// UpdateStatusIf transitions the transaction from one of the expected
	// statuses to the new status, applying extra fields from set. Returns false
	// when the transaction was not in an expected status.
	UpdateStatusIf(id string, from []models.TransactionStatus, to models.TransactionStatus, set bson.M) (bool, error)
	// SetProviderRef stores the provider-assigned reference once accepted.
	SetProviderRef(id, ref string) error
	// LinkPayment records the one-to-one link to the ledger entry.
	LinkPayment(id, paymentID string) error
	// CancelOpenBySession cascades CANCELLED to the session's PENDING and
	// PROCESSING transactions, leaving terminal ones untouched. Returns the
	// number of transactions cancelled.
	CancelOpenBySession(sessionID string) (int64, error)
}
