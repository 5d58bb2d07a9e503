package ledgerRepo

import (
	"errors"

	"campuspay/models"
)

// ErrDuplicate signals that a ledger entry already exists for the
// transaction (or receipt number). Settlement treats it as "already done".
var ErrDuplicate = errors.New("ledger entry already exists")

// LedgerRepository defines methods for the immutable payment ledger.
type LedgerRepository interface {
	// Create inserts a ledger entry. Returns ErrDuplicate when an entry for
	// the same transaction already exists.
	Create(payment *models.Payment) error
	// GetByTransactionID retrieves the ledger entry settled for a transaction,
	// or nil when the transaction has not settled.
	GetByTransactionID(txnID string) (*models.Payment, error)
	// SumByInvoice returns the total amount settled against an invoice.
	SumByInvoice(invoiceID string) (float64, error)
	// ListByStudent retrieves a student's ledger entries, newest first.
	ListByStudent(studentID string) ([]models.Payment, error)
	// CountByYear counts ledger entries created in the given year. Used as a
	// fallback source for receipt sequence numbers.
	CountByYear(year int) (int64, error)
}
