package studentRepo

import "campuspay/models"

// StudentRepository defines the payment subsystem's read-only view of
// students; the registry module owns the records.
type StudentRepository interface {
	// GetByID retrieves a student by its unique ID; returns nil when absent.
	GetByID(id string) (*models.Student, error)
	// GetByPhone retrieves a student by normalized phone number.
	GetByPhone(phone string) (*models.Student, error)
}
