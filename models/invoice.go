package models

import "time"

// InvoiceStatus is derived from sum(payments) vs amount, never incremented.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoicePartial   InvoiceStatus = "PARTIAL"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// Invoice is owned by the wider platform; the payment subsystem only
// recomputes AmountPaid, Balance and Status from the ledger.
type Invoice struct {
	ID          string        `bson:"id" json:"id"`
	StudentID   string        `bson:"studentId" json:"studentId"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	Amount      float64       `bson:"amount" json:"amount"`
	AmountPaid  float64       `bson:"amountPaid" json:"amountPaid"`
	Balance     float64       `bson:"balance" json:"balance"`
	Status      InvoiceStatus `bson:"status" json:"status"`
	DueDate     time.Time     `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}
