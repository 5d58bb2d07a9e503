package models

import "time"

// --- Status enums ---

// SessionStatus is the lifecycle status of a payment session.
type SessionStatus string

const (
	SessionPending    SessionStatus = "PENDING"
	SessionProcessing SessionStatus = "PROCESSING"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionCancelled  SessionStatus = "CANCELLED"
	SessionExpired    SessionStatus = "EXPIRED"
)

// Terminal reports whether the session can no longer change.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled || s == SessionExpired
}

// TransactionStatus is the canonical status of a payment transaction,
// distinct from each provider's native vocabulary.
type TransactionStatus string

const (
	TxnPending    TransactionStatus = "PENDING"
	TxnProcessing TransactionStatus = "PROCESSING"
	TxnCompleted  TransactionStatus = "COMPLETED"
	TxnFailed     TransactionStatus = "FAILED"
	TxnCancelled  TransactionStatus = "CANCELLED"
	TxnRefunded   TransactionStatus = "REFUNDED"
)

// Terminal reports whether the status admits no further transitions.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case TxnCompleted, TxnFailed, TxnCancelled, TxnRefunded:
		return true
	}
	return false
}

// Provider identifies a mobile-money or bank payment provider.
type Provider string

const (
	ProviderHormuud Provider = "hormuud" // EVC Plus
	ProviderZaad    Provider = "zaad"    // Telesom Zaad
	ProviderEdahab  Provider = "edahab"  // Somtel eDahab
	ProviderPremier Provider = "premier" // Premier Wallet
)

// --- PaymentSession ---

// PaymentSession pins a student's intent to pay a fixed amount, with expiry.
// Amount and currency are immutable after creation; at most one transaction
// under a session may ever reach COMPLETED.
type PaymentSession struct {
	ID          string        `bson:"id" json:"id"`
	StudentID   string        `bson:"studentId" json:"studentId"`
	InvoiceID   string        `bson:"invoiceId,omitempty" json:"invoiceId,omitempty"`
	Amount      float64       `bson:"amount" json:"amount"`
	Currency    string        `bson:"currency" json:"currency"`
	Status      SessionStatus `bson:"status" json:"status"`
	ExpiresAt   time.Time     `bson:"expiresAt" json:"expiresAt"`
	CompletedAt *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Expired reports whether the session is past its expiry instant.
func (s PaymentSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// --- PaymentTransaction ---

// PaymentTransaction is one attempt to collect a session's amount via a
// specific provider. ProviderRef is unique per provider once set and is the
// idempotency key matching webhook/poll results back to the transaction.
type PaymentTransaction struct {
	ID           string            `bson:"id" json:"id"`
	SessionID    string            `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	StudentID    string            `bson:"studentId" json:"studentId"`
	InvoiceID    string            `bson:"invoiceId,omitempty" json:"invoiceId,omitempty"`
	Amount       float64           `bson:"amount" json:"amount"`
	Currency     string            `bson:"currency" json:"currency"`
	Provider     Provider          `bson:"provider" json:"provider"`
	Phone        string            `bson:"phone,omitempty" json:"phone,omitempty"`
	ProviderRef  string            `bson:"providerRef,omitempty" json:"providerRef,omitempty"`
	Status       TransactionStatus `bson:"status" json:"status"`
	ErrorMessage string            `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	PaymentID    string            `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	CompletedAt  *time.Time        `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt    time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// --- Payment (ledger entry) ---

// Payment is the immutable ledger entry written exactly once per settled
// transaction; the unique TransactionID index is the one-to-one guard.
type Payment struct {
	ID            string    `bson:"id" json:"id"`
	ReceiptNo     string    `bson:"receiptNo" json:"receiptNo"`
	TransactionID string    `bson:"transactionId" json:"transactionId"`
	InvoiceID     string    `bson:"invoiceId,omitempty" json:"invoiceId,omitempty"`
	StudentID     string    `bson:"studentId" json:"studentId"`
	Amount        float64   `bson:"amount" json:"amount"`
	Method        Provider  `bson:"method" json:"method"`
	ProviderRef   string    `bson:"providerRef,omitempty" json:"providerRef,omitempty"`
	PaidAt        time.Time `bson:"paidAt" json:"paidAt"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// --- Requests & results ---

// InitiatePaymentRequest carries a payment attempt from the HTTP surface.
type InitiatePaymentRequest struct {
	SessionID string   `json:"sessionId"`
	StudentID string   `json:"studentId"`
	InvoiceID string   `json:"invoiceId"`
	Amount    float64  `json:"amount"`
	Currency  string   `json:"currency"`
	Method    Provider `json:"method"`
	Phone     string   `json:"phone"`
}

// InitiatePaymentResult is the structured outcome of an initiation attempt.
// A synchronous provider rejection is reported here, not as an error.
type InitiatePaymentResult struct {
	Accepted    bool                `json:"accepted"`
	Message     string              `json:"message,omitempty"`
	Session     *PaymentSession     `json:"session,omitempty"`
	Transaction *PaymentTransaction `json:"transaction"`
}
