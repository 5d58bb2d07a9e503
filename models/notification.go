package models

// ReceiptNotification is the payload queued for best-effort payer
// notification after settlement.
type ReceiptNotification struct {
	StudentID string  `json:"studentId"`
	Phone     string  `json:"phone,omitempty"`
	ReceiptNo string  `json:"receiptNo"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Method    string  `json:"method"`
	InvoiceID string  `json:"invoiceId,omitempty"`
}
