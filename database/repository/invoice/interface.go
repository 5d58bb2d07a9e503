package invoiceRepo

import "campuspay/models"

// InvoiceRepository defines the payment subsystem's view of invoices.
// Invoices are owned by the finance module; here they are read and have
// their ledger-derived totals rewritten.
type InvoiceRepository interface {
	// GetByID retrieves an invoice by its unique ID; returns nil when absent.
	GetByID(id string) (*models.Invoice, error)
	// ApplyLedgerTotals rewrites the invoice's accumulated totals and derived
	// status. Totals are set, never incremented, so reprocessing is safe.
	ApplyLedgerTotals(id string, amountPaid, balance float64, status models.InvoiceStatus) error
}
