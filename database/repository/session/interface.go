package sessionRepo

import (
	"campuspay/models"

	"go.mongodb.org/mongo-driver/bson"
)

// SessionRepository defines methods for payment session data access.
type SessionRepository interface {
	// Create inserts a new session record.
	Create(session *models.PaymentSession) error
	// GetByID retrieves a session by its unique ID; returns nil when absent.
	GetByID(id string) (*models.PaymentSession, error)
	// FindOpen retrieves a PENDING session for the (student, invoice, amount)
	// triple, or nil when none exists.
	FindOpen(studentID, invoiceID string, amount float64) (*models.PaymentSession, error)
	// UpdateStatusIf transitions the session from one of the expected statuses
	// to the new status, applying extra fields from set. Returns false when the
	// session was not in an expected status (compare-and-set discipline).
	UpdateStatusIf(id string, from []models.SessionStatus, to models.SessionStatus, set bson.M) (bool, error)
}
